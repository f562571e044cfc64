package core

// text.go turns uploaded file bytes into the text handed to Decode.
//
// Survey exports from Windows tooling often arrive with a UTF-8 BOM or in a
// single-byte code page, so the reader:
//
//   - decodes latin1 / windows-1252 input when the caller names the encoding
//   - strips a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - replaces invalid UTF-8 sequences with U+FFFD
//
// Line endings are left alone; see Decode for how they are treated.

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Supported encoding names for ReadText. The empty string means UTF-8.
const (
	EncodingUTF8        = "utf-8"
	EncodingLatin1      = "latin1"
	EncodingWindows1252 = "windows-1252"
)

// lookupEncoding maps a user-supplied encoding name to a decoder.
// A nil encoding means the input is already UTF-8.
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8", "utf-8-sig":
		return nil, nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// ReadText reads an uploaded file completely and returns its content as
// UTF-8 text. A read failure is returned wrapped so callers can keep their
// previous table untouched.
func ReadText(r io.Reader, enc string) (string, error) {
	decoder, err := lookupEncoding(enc)
	if err != nil {
		return "", err
	}

	if decoder != nil {
		r = transform.NewReader(r, decoder.NewDecoder())
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("file read failed: %w", err)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	return strings.ToValidUTF8(string(data), "�"), nil
}
