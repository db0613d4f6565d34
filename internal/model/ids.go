package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Contains reports whether id is present in ids.
func Contains(ids pq.StringArray, id uuid.UUID) bool {
	s := id.String()
	for _, v := range ids {
		if v == s {
			return true
		}
	}
	return false
}

// AddID appends id when absent and reports whether ids changed.
func AddID(ids *pq.StringArray, id uuid.UUID) bool {
	if Contains(*ids, id) {
		return false
	}
	*ids = append(*ids, id.String())
	return true
}

// RemoveID removes every occurrence of id and reports whether ids changed.
func RemoveID(ids *pq.StringArray, id uuid.UUID) bool {
	s := id.String()
	out := make(pq.StringArray, 0, len(*ids))
	removed := false
	for _, v := range *ids {
		if v == s {
			removed = true
			continue
		}
		out = append(out, v)
	}
	*ids = out
	return removed
}

// ParseIDs converts stored ids to UUIDs, skipping malformed entries.
func ParseIDs(ids pq.StringArray) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, v := range ids {
		id, err := uuid.Parse(v)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}
