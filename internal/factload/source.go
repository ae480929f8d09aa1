package factload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"lakeetl/internal/csvio"
	"lakeetl/internal/objstore"
	"lakeetl/internal/period"
	"lakeetl/internal/schema"
	"lakeetl/pkg/records"
)

// BronzeSource reads a period's order lines from the monthly drop object. A
// missing object is an empty period, not an error: the controller turns it
// into SKIPPED_EMPTY.
type BronzeSource struct {
	Store  objstore.Store
	Source string // upstream system name in the bronze path, e.g. "github"
}

func (s BronzeSource) ReadPeriod(ctx context.Context, p period.Period) ([]records.Record, error) {
	key := KeyForPeriod(s.Source, p)
	body, err := s.Store.Get(ctx, key)
	if errors.Is(err, objstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}

	recs, skipped, err := csvio.NewParser(csvio.Options{}).Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	if skipped > 0 {
		log.Printf("factload: key=%s skipped_rows=%d", key, skipped)
	}
	return schema.Coercer{Contract: schema.Orders()}.Apply(recs), nil
}
