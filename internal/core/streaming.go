package core

// streaming.go provides reader wrappers applied to every source table:
//
//   - BOMSkippingReader: Removes a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - StrictUTF8Reader: Fails with ErrInvalidUTF8 on undecodable input
//   - CountingReader: Tracks bytes read for the run log
//
// Use WrapSource to apply all of them in the correct order.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
// Spreadsheet exports on Windows commonly start with one.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader. On the first read, it checks for and skips the BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.br.Peek(len(utf8BOM))
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			if _, err := r.br.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return r.br.Read(p)
}

// StrictUTF8Reader passes bytes through unchanged but fails as soon as the
// stream is not valid UTF-8. Sequences split across reads are carried over
// and validated together with the next chunk.
type StrictUTF8Reader struct {
	reader io.Reader
	carry  []byte
	err    error
}

// NewStrictUTF8Reader creates a validating reader.
func NewStrictUTF8Reader(r io.Reader) *StrictUTF8Reader {
	return &StrictUTF8Reader{
		reader: r,
		carry:  make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader.
func (s *StrictUTF8Reader) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}

	n, err := s.reader.Read(p)
	if n > 0 {
		data := p[:n]
		if len(s.carry) > 0 {
			data = make([]byte, 0, len(s.carry)+n)
			data = append(data, s.carry...)
			data = append(data, p[:n]...)
		}

		tail := incompleteTail(data)
		if !utf8.Valid(data[:len(data)-tail]) {
			s.err = ErrInvalidUTF8
			return 0, s.err
		}
		s.carry = append(s.carry[:0], data[len(data)-tail:]...)
	}

	if err == io.EOF && len(s.carry) > 0 {
		s.err = ErrInvalidUTF8
		return n, s.err
	}
	return n, err
}

// incompleteTail returns the number of trailing bytes that start a multi-byte
// sequence not yet complete in b.
func incompleteTail(b []byte) int {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		c := b[len(b)-i]
		if c&0xC0 == 0x80 {
			continue
		}
		if c >= 0xC0 && !utf8.FullRune(b[len(b)-i:]) {
			return i
		}
		return 0
	}
	return 0
}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// WrapSource wraps a reader with byte counting, BOM skipping and UTF-8
// validation.
//
// The order matters:
// 1. Counting sees the raw bytes as they come off the file
// 2. BOM must be stripped before validation and parsing
// 3. Validation runs on what the CSV parser will see
func WrapSource(r io.Reader) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r)
	return NewStrictUTF8Reader(NewBOMSkippingReader(counter)), counter
}
