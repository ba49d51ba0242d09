package core

// csv.go reads and writes comma-separated records in the excel dialect with
// lenient quoting, the way the tables are produced and consumed elsewhere:
//
//   - Field bytes are kept exactly. Line breaks inside a quoted field (CR, LF
//     or CRLF) are returned and written unchanged.
//   - A quote inside an unquoted field, or text after a closing quote, is
//     literal data rather than a syntax error.
//   - An unterminated quoted field at end of input ends the record.
//   - Blank lines are skipped.
//   - On output, a field is quoted only when it contains a comma, a quote, CR
//     or LF. Embedded quotes are doubled and records end with CRLF.

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxFieldLength is the longest field accepted by the reader, in characters.
const MaxFieldLength = 131072

var (
	// ErrFieldTooLong is returned for a field longer than MaxFieldLength.
	ErrFieldTooLong = fmt.Errorf("field larger than field limit (%d)", MaxFieldLength)

	// ErrFieldCount is returned when a record does not have the expected width.
	ErrFieldCount = errors.New("wrong number of fields")
)

// CSVError reports a malformed record and the line it starts on.
type CSVError struct {
	Line int
	Err  error
}

func (e *CSVError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *CSVError) Unwrap() error {
	return e.Err
}

type parseState int

const (
	stateStartRecord parseState = iota
	stateStartField
	stateInField
	stateInQuoted
	stateQuoteInQuoted
)

// recordReader splits a byte stream into records.
type recordReader struct {
	br    *bufio.Reader
	line  int // line breaks consumed so far
	field []byte
	chars int
}

func newRecordReader(r io.Reader) *recordReader {
	return &recordReader{br: bufio.NewReader(r)}
}

// Read returns the next non-blank record and the 1-based line it starts on.
// It returns io.EOF once the input is exhausted.
func (r *recordReader) Read() ([]string, int, error) {
	var record []string
	state := stateStartRecord
	start := r.line + 1

	saveField := func() {
		record = append(record, string(r.field))
		r.field = r.field[:0]
		r.chars = 0
	}

	for {
		b, err := r.br.ReadByte()
		if err == io.EOF {
			if state == stateStartRecord {
				return nil, 0, io.EOF
			}
			saveField()
			return record, start, nil
		}
		if err != nil {
			return nil, 0, err
		}

		switch state {
		case stateStartRecord:
			if b == '\r' || b == '\n' {
				r.endLine(b)
				start = r.line + 1
				continue
			}
			state = stateStartField
			fallthrough

		case stateStartField:
			switch b {
			case '\r', '\n':
				r.endLine(b)
				saveField()
				return record, start, nil
			case '"':
				state = stateInQuoted
			case ',':
				saveField()
			default:
				if err := r.add(b, start); err != nil {
					return nil, 0, err
				}
				state = stateInField
			}

		case stateInField:
			switch b {
			case '\r', '\n':
				r.endLine(b)
				saveField()
				return record, start, nil
			case ',':
				saveField()
				state = stateStartField
			default:
				if err := r.add(b, start); err != nil {
					return nil, 0, err
				}
			}

		case stateInQuoted:
			switch b {
			case '"':
				state = stateQuoteInQuoted
			case '\r':
				if err := r.add(b, start); err != nil {
					return nil, 0, err
				}
				if next, err := r.br.Peek(1); err == nil && next[0] == '\n' {
					r.br.ReadByte()
					if err := r.add('\n', start); err != nil {
						return nil, 0, err
					}
				}
				r.line++
			case '\n':
				if err := r.add(b, start); err != nil {
					return nil, 0, err
				}
				r.line++
			default:
				if err := r.add(b, start); err != nil {
					return nil, 0, err
				}
			}

		case stateQuoteInQuoted:
			switch b {
			case '"':
				if err := r.add(b, start); err != nil {
					return nil, 0, err
				}
				state = stateInQuoted
			case ',':
				saveField()
				state = stateStartField
			case '\r', '\n':
				r.endLine(b)
				saveField()
				return record, start, nil
			default:
				if err := r.add(b, start); err != nil {
					return nil, 0, err
				}
				state = stateInField
			}
		}
	}
}

// add appends b to the current field, counting characters by their first byte.
func (r *recordReader) add(b byte, line int) error {
	if b&0xC0 != 0x80 {
		if r.chars >= MaxFieldLength {
			return &CSVError{Line: line, Err: ErrFieldTooLong}
		}
		r.chars++
	}
	r.field = append(r.field, b)
	return nil
}

// endLine consumes the LF of a CRLF pair and counts one line.
func (r *recordReader) endLine(b byte) {
	if b == '\r' {
		if next, err := r.br.Peek(1); err == nil && next[0] == '\n' {
			r.br.ReadByte()
		}
	}
	r.line++
}

// recordWriter writes records with minimal quoting and CRLF endings.
type recordWriter struct {
	bw *bufio.Writer
}

func newRecordWriter(w io.Writer) *recordWriter {
	return &recordWriter{bw: bufio.NewWriter(w)}
}

// Write buffers one record. Errors surface from Flush.
func (w *recordWriter) Write(fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.bw.WriteByte(',')
		}
		// A record made of one empty field would read back as a blank line
		if fieldNeedsQuotes(f) || (len(fields) == 1 && f == "") {
			w.bw.WriteByte('"')
			w.bw.WriteString(strings.ReplaceAll(f, `"`, `""`))
			w.bw.WriteByte('"')
			continue
		}
		w.bw.WriteString(f)
	}
	w.bw.WriteString("\r\n")
}

// Flush writes any buffered data and returns the first write error.
func (w *recordWriter) Flush() error {
	return w.bw.Flush()
}

func fieldNeedsQuotes(f string) bool {
	return strings.ContainsAny(f, ",\"\r\n")
}
