package pagination

import (
	"fmt"
	"strings"
)

// ListCursor records how far a reveal-style listing has progressed and for
// which collection and sort order. A cursor only applies to the listing it
// was issued for.
type ListCursor struct {
	Collection string `json:"c"`
	Sort       string `json:"s"`
	Displayed  int    `json:"d"`
}

// Matches reports whether the cursor was issued for this collection and sort.
func (c ListCursor) Matches(collection, sort string) bool {
	return strings.EqualFold(c.Collection, collection) && strings.EqualFold(c.Sort, sort)
}

func EncodeListCursor(cursor ListCursor) string {
	return encodeOpaque(cursor)
}

// ParseListCursor returns nil for an empty value.
func ParseListCursor(value string) (*ListCursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	var cursor ListCursor
	if err := decodeOpaque(value, &cursor); err != nil {
		return nil, err
	}
	if cursor.Displayed < 0 {
		return nil, fmt.Errorf("invalid cursor position %d", cursor.Displayed)
	}
	return &cursor, nil
}

// ResumeFrom returns the position a listing should restart from: the
// cursor's count when it matches, otherwise zero (sort or collection changed).
func ResumeFrom(cursor *ListCursor, collection, sort string) int {
	if cursor == nil || !cursor.Matches(collection, sort) {
		return 0
	}
	return cursor.Displayed
}
