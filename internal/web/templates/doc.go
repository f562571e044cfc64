// Package templates renders the HTML pages and partials of the web UI.
//
// The components are written in templ; run `templ generate` after editing a
// .templ file and commit the generated _templ.go next to it.
package templates
