package csvimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// CSVParser reads a CSV stream lazily. The first record is the header; every
// following record is mapped to header names. It cannot be rewound.
type CSVParser struct {
	headerMap map[string]int
	headers   []string
	totalRows int
	encoding  Encoding
	started   bool
	done      bool
	reader    *csv.Reader
	bufReader *bufio.Reader
}

// NewCSVParser creates a comma-separated parser over r
func NewCSVParser(r io.Reader) (*CSVParser, error) {
	parser := &CSVParser{
		headerMap: make(map[string]int),
	}

	parser.bufReader = bufio.NewReaderSize(r, sniffSize)

	// Detect and strip UTF-8 BOM
	content, err := parser.bufReader.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		_, _ = parser.bufReader.Discard(3)
	}

	src, enc, err := detectEncoding(parser.bufReader)
	if err != nil {
		return nil, err
	}
	parser.encoding = enc

	parser.reader = csv.NewReader(src)
	// strict quoting so broken framing surfaces as ErrMalformedCSV
	parser.reader.LazyQuotes = false
	parser.reader.TrimLeadingSpace = true
	parser.reader.FieldsPerRecord = -1 // Allow variable number of fields
	parser.reader.ReuseRecord = false

	return parser, nil
}

// Encoding returns the detected source encoding
func (p *CSVParser) Encoding() Encoding {
	return p.encoding
}

// ParseHeader reads and parses the header row
func (p *CSVParser) ParseHeader() error {
	p.started = true
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return malformed(err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		header := trimSpaces(h)
		p.headers[i] = header
		// first occurrence wins for duplicated header names
		if _, exists := p.headerMap[header]; !exists {
			p.headerMap[header] = i
		}
	}

	return nil
}

// Headers returns the parsed header names
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HasHeader checks if a header exists
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.headerMap[name]
	return ok
}

// Row represents a parsed CSV row
type Row struct {
	// Index is the 1-based position among produced data rows.
	Index int
	// LineNumber is the line in the file where the record starts.
	LineNumber int
	Data       map[string]string
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// GetOrDefault returns the value for a column, or default if not present
func (r *Row) GetOrDefault(header, defaultVal string) string {
	if val, ok := r.Data[header]; ok && val != "" {
		return val
	}
	return defaultVal
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// Next returns the next non-empty data row, or io.EOF once the stream is exhausted.
// The header is consumed on the first call. A file without a header yields no rows.
// Structural CSV errors are returned wrapped in ErrMalformedCSV and end the sequence.
func (p *CSVParser) Next() (*Row, error) {
	if p.done {
		return nil, io.EOF
	}
	if !p.started {
		if err := p.ParseHeader(); err != nil {
			p.done = true
			if errors.Is(err, ErrMissingHeader) {
				return nil, io.EOF
			}
			return nil, err
		}
	}

	for {
		row, err := p.readRow()
		if err != nil {
			p.done = true
			return nil, err
		}
		if row.IsEmpty() {
			continue
		}
		p.totalRows++
		row.Index = p.totalRows
		return row, nil
	}
}

// readRow reads the next record and maps it to the header
func (p *CSVParser) readRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, malformed(err)
	}

	line, _ := p.reader.FieldPos(0)
	row := &Row{
		LineNumber: line,
		Data:       make(map[string]string, len(p.headers)),
	}

	for i, header := range p.headers {
		if _, exists := row.Data[header]; exists {
			continue
		}
		value := ""
		if i < len(record) {
			value = trimSpaces(record[i])
		}
		row.Data[header] = value
	}

	return row, nil
}

// TotalRows returns the number of data rows produced so far
func (p *CSVParser) TotalRows() int {
	return p.totalRows
}

func malformed(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: line %d, column %d: %v", ErrMalformedCSV, pe.StartLine, pe.Column, pe.Err)
	}
	return fmt.Errorf("%w: %v", ErrMalformedCSV, err)
}

// trimSpaces trims whitespace from a string
func trimSpaces(s string) string {
	start := 0
	end := len(s)

	for start < end && isWhitespace(s[start]) {
		start++
	}
	for end > start && isWhitespace(s[end-1]) {
		end--
	}

	return s[start:end]
}

// isWhitespace checks if a byte is ASCII whitespace
func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
