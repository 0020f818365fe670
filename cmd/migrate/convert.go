package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
)

func nullStr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	return &n.String
}

// parseStrings decodes a JSON array of strings. NULL and empty become an empty list.
func parseStrings(raw []byte) ([]string, error) {
	out := []string{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// parseIDs decodes a JSON array of ids. The legacy API stored whatever the
// client sent, so numeric strings are accepted too.
func parseIDs(raw []byte) ([]int64, error) {
	out := []int64{}
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	for _, item := range items {
		var n json.Number
		if err := json.Unmarshal(item, &n); err != nil {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				return nil, fmt.Errorf("id %s: %w", item, err)
			}
			n = json.Number(s)
		}
		id, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("id %s: %w", item, err)
		}
		out = append(out, id)
	}
	return out, nil
}
