package classify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"lakeetl/pkg/records"
)

// TieBreak orders rows that share a primary key. Less reports whether a
// should outrank b (rank closer to 1). Ties on the tie-break value resolve by
// original input position, which Rank guarantees via a stable sort.
type TieBreak interface {
	Less(a, b records.Record) bool
}

// ByDateDesc ranks the most recent parsed date first; rows whose date failed
// to parse sort after every dated row. Used by the orders fact staging so the
// latest order-date parse survives dedup.
type ByDateDesc struct {
	Field string
}

func (t ByDateDesc) Less(a, b records.Record) bool {
	at, aok := a.Time(t.Field)
	bt, bok := b.Time(t.Field)
	if aok != bok {
		return aok // dated rows outrank undated ones
	}
	if !aok {
		return false
	}
	return at.After(bt)
}

// ByNameAsc ranks rows by a natural-language field in collation order,
// ascending; rows with a missing name sort last. Used by dimension refreshes.
type ByNameAsc struct {
	Field string
	col   *collate.Collator
}

// NewByNameAsc builds a collation-backed ascending tie-break on field.
func NewByNameAsc(field string) *ByNameAsc {
	return &ByNameAsc{Field: field, col: collate.New(language.English)}
}

func (t *ByNameAsc) Less(a, b records.Record) bool {
	as, aok := a.String(t.Field)
	bs, bok := b.String(t.Field)
	if aok != bok {
		return aok
	}
	if !aok {
		return false
	}
	return t.col.CompareString(as, bs) < 0
}

// Rank groups the batch by primary key and assigns each row its dedup rank:
// 1 for the tie-break winner (the dedup survivor), 2.. for the losers. Rows
// with any null primary-key column are not grouped; each gets rank 1 and is
// left for the PK_NULL rule to claim.
//
// Losing rows are never dropped here; they flow on with rank > 1 so the
// rule engine can mark them DUPLICATE_PK (or an earlier reason).
func Rank(in []records.Record, pk []string, tie TieBreak) []Row {
	rows := make([]Row, len(in))
	groups := make(map[xxh3.Uint128][]int, len(in))
	for i, rec := range in {
		rows[i] = Row{Rec: rec, Rank: 1, Index: i}
		key, ok := pkKey(rec, pk)
		if !ok {
			continue
		}
		groups[key] = append(groups[key], i)
	}

	for _, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		order := append([]int(nil), idxs...)
		if tie != nil {
			// Stable: equal tie-break values keep input order, making the
			// secondary key the original position.
			sort.SliceStable(order, func(x, y int) bool {
				return tie.Less(in[order[x]], in[order[y]])
			})
		}
		for rank, idx := range order {
			rows[idx].Rank = rank + 1
		}
	}
	return rows
}

// pkKey hashes the joint primary-key value. ok is false when any component is
// null, which exempts the row from grouping.
func pkKey(rec records.Record, pk []string) (xxh3.Uint128, bool) {
	var b strings.Builder
	for i, col := range pk {
		v, ok := rec[col]
		if !ok || v == nil {
			return xxh3.Uint128{}, false
		}
		if i > 0 {
			b.WriteByte(0x1f)
		}
		switch t := v.(type) {
		case string:
			b.WriteString(t)
		case int64:
			fmt.Fprintf(&b, "%d", t)
		case time.Time:
			b.WriteString(t.Format(time.RFC3339))
		default:
			fmt.Fprint(&b, t)
		}
	}
	return xxh3.HashString128(b.String()), true
}
