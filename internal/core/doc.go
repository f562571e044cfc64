// Package core provides the CSV table logic behind the survey data front end.
//
// Nothing in this package knows about HTTP or terminals. The web server and
// the csvtool command both drive the same types.
//
// # Codec
//
// [Decode] and [Encode] convert between CSV text and a [Table]. The format is
// the minimal one produced by spreadsheet exports of survey data:
//
//   - lines are split on '\n', fields on ','; there is no quoting
//   - the first line is the header
//   - blank lines are skipped
//   - a line whose field count differs from the header is dropped silently
//
// [DecodeRecords] returns the same rows keyed by header name, which is the
// shape the processing server expects for coordinates and pipes.
//
// # Edit Session
//
// A [Session] owns one table at a time:
//
//	s := core.NewSession(renderer)
//	s.LoadFile(text)
//	s.EditCell(0, 2, "104.25")
//	s.AddColumn("COTA")
//	name, csv := s.Save()
//
// Display goes through the [Renderer] interface and user input through
// [Prompter], so the session can be exercised without any UI.
//
// The web layer keeps sessions in a [SessionStore], which serialises access
// to each session and sweeps idle ones.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Malformed CSV rows are not errors; they are dropped by the decoder.
package core
