package strap

import (
	"sort"
)

// ColumnNames performs one full pass over the source and returns every
// field name ever observed, sorted and deduplicated. The columnar
// output needs a closed schema declared before any batch is written,
// but the input is schema-less and may introduce new keys at any row,
// so discovery cannot be combined with materialization.
func (t *Track) ColumnNames() ([]string, error) {
	seen := make(map[string]struct{})

	err := t.ForEachRow(func(rec Record) bool {
		for key := range rec {
			seen[key] = struct{}{}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(seen))
	for key := range seen {
		names = append(names, key)
	}
	sort.Strings(names)

	return names, nil
}
