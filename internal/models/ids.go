package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UUIDSlice stores an ordered set of record ids in a Postgres text[] column.
type UUIDSlice []uuid.UUID

// Value implements driver.Valuer.
func (s UUIDSlice) Value() (driver.Value, error) {
	strs := make(pq.StringArray, len(s))
	for i, id := range s {
		strs[i] = id.String()
	}
	return strs.Value()
}

// Scan implements sql.Scanner.
func (s *UUIDSlice) Scan(src interface{}) error {
	var strs pq.StringArray
	if err := strs.Scan(src); err != nil {
		return fmt.Errorf("scan uuid slice: %w", err)
	}
	out := make(UUIDSlice, 0, len(strs))
	for _, str := range strs {
		id, err := uuid.Parse(str)
		if err != nil {
			return fmt.Errorf("scan uuid slice element %q: %w", str, err)
		}
		out = append(out, id)
	}
	*s = out
	return nil
}

// Contains reports whether id is present in the slice.
func (s UUIDSlice) Contains(id uuid.UUID) bool {
	for _, existing := range s {
		if existing == id {
			return true
		}
	}
	return false
}

// Without returns a copy of the slice with id removed.
func (s UUIDSlice) Without(id uuid.UUID) UUIDSlice {
	out := make(UUIDSlice, 0, len(s))
	for _, existing := range s {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
