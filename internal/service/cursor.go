package service

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

// DecodeCursor decodes a base64-encoded cursor string to an index
// position. Returns 0 for the empty cursor.
func DecodeCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, err
	}
	idx, err := strconv.Atoi(string(decoded))
	if err != nil {
		return 0, err
	}
	if idx < 0 {
		return 0, fmt.Errorf("cursor index cannot be negative")
	}
	return idx, nil
}

// EncodeCursor encodes an index position to a base64-encoded cursor
// string. After fetching a page of N items starting at index X, the next
// cursor is EncodeCursor(X + N).
func EncodeCursor(index int) string {
	return base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(index)))
}
