package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ParseID parses a surrogate id from a query value. Absent, non-numeric and
// non-positive values all yield 0, which callers treat as "no id".
func ParseID(s string) uint {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return uint(n)
}

func parseFlexibleID(raw json.RawMessage) (uint, error) {
	var n uint64
	if err := json.Unmarshal(raw, &n); err == nil {
		return uint(n), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("project_id must be a number")
	}
	if s == "" {
		return 0, nil
	}
	id := ParseID(s)
	if id == 0 {
		return 0, fmt.Errorf("project_id must be a number")
	}
	return id, nil
}
