// Package csvio reads bronze CSV objects into records. Parsing is lenient:
// rows with a broken width or a parse error are skipped and counted rather
// than failing the batch, so one mangled line cannot sink a whole promotion.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"lakeetl/pkg/records"
)

// Options configures the reader. All fields are optional.
type Options struct {
	// Comma is the field delimiter; ',' when zero.
	Comma rune

	// HeaderMap renames source headers to canonical field names. Headers not
	// in the map are used as-is (trimmed).
	HeaderMap map[string]string
}

// Parser reads header-first CSV into records. Safe to reuse across inputs.
type Parser struct{ opt Options }

func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// skipLogLimit caps per-batch skip logging so a corrupt file cannot flood the
// log.
const skipLogLimit = 400

// Parse reads all rows from r. It returns the parsed records and the number
// of rows skipped for parse errors or width mismatches. Empty cells become
// nil so the coercion layer sees them as nulls.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1 // width enforced below, per row

	h, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers := p.normalizeHeaders(h)

	var out []records.Record
	var skipped int
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if skipped < skipLogLimit {
				log.Printf("csvio: skipping row %d: %v", line, err)
			}
			skipped++
			continue
		}
		if len(row) != len(headers) {
			if skipped < skipLogLimit {
				log.Printf("csvio: skipping row %d: want %d fields, got %d", line, len(headers), len(row))
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			val = strings.TrimSpace(val)
			if val == "" {
				rec[headers[i]] = nil
			} else {
				rec[headers[i]] = val
			}
		}
		out = append(out, rec)
	}
	return out, skipped, nil
}

func (p *Parser) normalizeHeaders(h []string) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if m, ok := p.opt.HeaderMap[c]; ok {
			c = m
		}
		res[i] = c
	}
	return res
}
