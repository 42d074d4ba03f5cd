package csvimport

import (
	"bufio"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// sniffSize is how much of the stream is inspected for encoding detection
const sniffSize = 64 * 1024

// Encoding identifies the character set a file was decoded from
type Encoding string

const (
	EncodingUTF8        Encoding = "utf-8"
	EncodingWindows1252 Encoding = "windows-1252"
)

// detectEncoding returns a UTF-8 reader over r. Spreadsheet exports that are not
// valid UTF-8 are decoded as Windows-1252.
func detectEncoding(r *bufio.Reader) (io.Reader, Encoding, error) {
	content, err := r.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("failed to read file for encoding detection: %w", err)
	}

	if validUTF8Prefix(content, err == io.EOF) {
		return r, EncodingUTF8, nil
	}
	return charmap.Windows1252.NewDecoder().Reader(r), EncodingWindows1252, nil
}

// validUTF8Prefix tolerates a multi-byte rune cut at the sniff boundary.
func validUTF8Prefix(b []byte, complete bool) bool {
	if complete {
		return utf8.Valid(b)
	}
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return true
		}
		b = b[:len(b)-1]
	}
	return utf8.Valid(b)
}
