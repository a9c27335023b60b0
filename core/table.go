package core

import "context"

type (
	// Row maps a dataset-specific column name to its raw cell value
	// (string, float64 or nil). Rows are produced once per dataset load
	// and never mutated.
	Row map[string]interface{}

	// Table is an in-memory tabular extract as retrieved from the store.
	Table struct {
		Headers []string `json:"headers"`
		Rows    []Row    `json:"rows"`
	}

	// Store is the read-only boundary to the external key-value cache
	// holding the raw extracts. Implementations must return an empty
	// table, not an error, when none of the keys holds data.
	Store interface {
		// Get returns the first non-empty table found under any of the
		// given keys, tried in order.
		Get(ctx context.Context, keys ...string) (Table, error)
	}
)

func (t Table) Empty() bool { return len(t.Rows) == 0 }
