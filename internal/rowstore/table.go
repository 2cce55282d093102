package rowstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const utf8BOM = "\ufeff"

// Table is a header plus ordered rows.
type Table struct {
	Header []string
	Rows   []Row

	// CRLF is set when the source ended its first line with "\r\n".
	// WriteTable then terminates records and embedded newlines the same way.
	CRLF bool
}

// lineEndingReader records whether the first line break it passes through
// is "\r\n".
type lineEndingReader struct {
	r      io.Reader
	prev   byte
	seen   bool
	isCRLF bool
}

func (l *lineEndingReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)

	for i := 0; i < n && !l.seen; i++ {
		if p[i] == '\n' {
			l.seen = true
			l.isCRLF = l.prev == '\r'
		}

		l.prev = p[i]
	}

	return n, err
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Find returns the index of the first row whose key field equals value,
// or -1 if there is none.
func (t *Table) Find(key, value string) int {
	if t == nil {
		return -1
	}

	for i, row := range t.Rows {
		if v, ok := row.Lookup(key); ok && v == value {
			return i
		}
	}

	return -1
}

// Filter returns the rows whose key field equals value, in table order.
// The result is never nil.
func (t *Table) Filter(key, value string) []Row {
	out := []Row{}

	if t == nil {
		return out
	}

	for _, row := range t.Rows {
		if v, ok := row.Lookup(key); ok && v == value {
			out = append(out, row)
		}
	}

	return out
}

// Columns returns the header followed by any keys that rows carry but the
// header does not, in first-seen order.
func (t *Table) Columns() []string {
	seen := make(map[string]bool, len(t.Header))
	cols := make([]string, 0, len(t.Header))

	for _, h := range t.Header {
		if !seen[h] {
			seen[h] = true
			cols = append(cols, h)
		}
	}

	for _, row := range t.Rows {
		for _, k := range row.keys {
			if !seen[k] {
				seen[k] = true
				cols = append(cols, k)
			}
		}
	}

	return cols
}

// ReadTable parses CSV from reader. The first record is the header.
// Short records are padded with "", surplus cells are dropped.
func ReadTable(reader io.Reader) (*Table, error) {
	endings := &lineEndingReader{r: reader}
	csvReader := csv.NewReader(endings)
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	header, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return &Table{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := &Table{Header: header, CRLF: endings.isCRLF}

	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(table.Rows)+1, err)
		}

		var row Row

		for i, name := range header {
			value := ""
			if i < len(record) {
				value = record[i]
			}

			row.Set(name, value)
		}

		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// WriteTable writes the table as CSV using [Table.Columns] as the header.
func WriteTable(writer io.Writer, table *Table) error {
	cols := table.Columns()
	csvWriter := csv.NewWriter(writer)
	csvWriter.UseCRLF = table.CRLF

	err := csvWriter.Write(cols)
	if err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	record := make([]string, len(cols))

	for _, row := range table.Rows {
		for i, c := range cols {
			record[i] = row.Get(c)
		}

		err = csvWriter.Write(record)
		if err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	csvWriter.Flush()

	return csvWriter.Error()
}
