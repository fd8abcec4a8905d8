package catalog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// RawRow maps a trimmed column header to its raw cell text. headers keeps
// the column order of the payload and is shared by every row.
type RawRow struct {
	headers []string
	values  map[string]string
}

// cell returns the raw text under header.
func (row RawRow) cell(header string) string {
	return row.values[header]
}

// table is the parsed payload: headers plus rows in input order.
type table struct {
	headers []string
	rows    []RawRow
}

var errNoHeader = errors.New("missing header row")

// parseRows reads delimited text with a header row. Blank lines are skipped
// and stray quotes inside unquoted fields are kept literally; any other
// structural problem, such as a row whose field count differs from the
// header, fails the whole payload.
func parseRows(payload []byte, delimiter rune) (*table, error) {
	payload = bytes.TrimPrefix(payload, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(payload))
	r.Comma = delimiter
	r.FieldsPerRecord = 0
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Err: errNoHeader}
	}
	if err != nil {
		return nil, toParseError(err)
	}
	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	t := &table{headers: headers}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, toParseError(err)
		}
		row := RawRow{headers: headers, values: make(map[string]string, len(headers))}
		for i, h := range headers {
			if h == "" {
				continue
			}
			row.values[h] = record[i]
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

func toParseError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &ParseError{Line: perr.Line, Err: perr.Err}
	}
	return &ParseError{Err: err}
}

// lookup returns the first non-blank value among names, matching headers
// exactly and then case-insensitively in column order.
func (row RawRow) lookup(names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := row.values[name]; ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	for _, name := range names {
		for _, header := range row.headers {
			if v := row.values[header]; strings.EqualFold(header, name) && strings.TrimSpace(v) != "" {
				return v, true
			}
		}
	}
	return "", false
}

// text returns the trimmed value of the first present alias, or "".
func (row RawRow) text(names ...string) string {
	v, _ := row.lookup(names...)
	return strings.TrimSpace(v)
}

var imageColumnRe = regexp.MustCompile(`(?i)^image(\d*)$`)

// imageColumns returns the image headers in display order: bare "image"
// first, then ascending numeric suffix; suffixes that overflow sort last.
// Ties keep header order.
func imageColumns(headers []string) []string {
	type column struct {
		name string
		rank int64
	}
	var cols []column
	for _, h := range headers {
		m := imageColumnRe.FindStringSubmatch(h)
		if m == nil {
			continue
		}
		rank := int64(-1)
		if m[1] != "" {
			n, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				n = math.MaxInt64
			}
			rank = n
		}
		cols = append(cols, column{name: h, rank: rank})
	}
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].rank < cols[j].rank })

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.name
	}
	return names
}
