package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/bfi/internal/ir"
)

// timeLayout is how created_at is stored. Fixed width keeps it sortable as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// marshalValues converts cell values to canonical JSON TEXT for storage.
func marshalValues(values []int) (string, error) {
	if values == nil {
		values = []int{}
	}
	data, err := ir.MarshalCanonical(values)
	if err != nil {
		return "", fmt.Errorf("marshal values: %w", err)
	}
	return string(data), nil
}

// unmarshalValues parses a JSON array of integers.
// Never returns nil for a valid array.
func unmarshalValues(data string) ([]int, error) {
	values := []int{}
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("unmarshal values: %w", err)
	}
	return values, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", s, err)
	}
	return t, nil
}
