package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrColumnCollision is returned when two columns normalize to the same name.
var ErrColumnCollision = errors.New("column name collision")

// NormalizeColumnName maps a raw header to a lowercase identifier made of
// [a-z0-9_] that starts with a letter and never repeats an underscore.
// Names that normalize to nothing become "col". The mapping is idempotent.
func NormalizeColumnName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	s = b.String()

	// Strip leading non-letters.
	s = strings.TrimLeftFunc(s, func(r rune) bool { return r < 'a' || r > 'z' })

	// Collapse runs of underscores.
	b.Reset()
	prevUnderscore := false
	for _, r := range s {
		if r == '_' {
			if prevUnderscore {
				continue
			}
			prevUnderscore = true
		} else {
			prevUnderscore = false
		}
		b.WriteRune(r)
	}

	if b.Len() == 0 {
		return "col"
	}
	return b.String()
}

// ColumnRename is a single column rename.
type ColumnRename struct {
	From string
	To   string
}

// PlanRenames returns the renames needed to normalize columns, in input order.
// Columns that are already normalized are left out. When two columns would end
// up with the same name the whole plan is rejected with ErrColumnCollision.
func PlanRenames(columns []string) ([]ColumnRename, error) {
	owner := make(map[string]string, len(columns))
	var renames []ColumnRename
	for _, col := range columns {
		target := NormalizeColumnName(col)
		if prev, ok := owner[target]; ok {
			return nil, fmt.Errorf("%w: %q and %q both normalize to %q", ErrColumnCollision, prev, col, target)
		}
		owner[target] = col
		if target != col {
			renames = append(renames, ColumnRename{From: col, To: target})
		}
	}
	return renames, nil
}
