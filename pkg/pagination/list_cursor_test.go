package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestListCursorRoundTripAndResume(t *testing.T) {
	encoded := EncodeListCursor(ListCursor{Collection: "shirts", Sort: "price-low", Displayed: 12})
	cursor, err := ParseListCursor(encoded)
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if got := ResumeFrom(cursor, "shirts", "price-low"); got != 12 {
		t.Fatalf("expected resume at 12, got %d", got)
	}
	if got := ResumeFrom(cursor, "shirts", "rating"); got != 0 {
		t.Fatalf("sort change should reset, got %d", got)
	}
	if got := ResumeFrom(cursor, "polos", "price-low"); got != 0 {
		t.Fatalf("collection change should reset, got %d", got)
	}
	if got := ResumeFrom(nil, "shirts", "price-low"); got != 0 {
		t.Fatalf("missing cursor should start at 0, got %d", got)
	}
}

func TestParseListCursorRejectsGarbage(t *testing.T) {
	if cursor, err := ParseListCursor(""); err != nil || cursor != nil {
		t.Fatalf("empty cursor should be nil, got %v %v", cursor, err)
	}
	if _, err := ParseListCursor("%%%"); err == nil {
		t.Fatal("expected decode failure")
	}
	bad := EncodeListCursor(ListCursor{Collection: "shirts", Displayed: -1})
	if _, err := ParseListCursor(bad); err == nil {
		t.Fatal("expected negative position to fail")
	}
}

func TestKeysetCursorRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	id := uuid.New()
	cursor, err := ParseCursor(EncodeCursor(Cursor{CreatedAt: now, ID: id}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !cursor.CreatedAt.Equal(now) || cursor.ID != id {
		t.Fatalf("unexpected cursor %+v", cursor)
	}
	if NormalizeLimit(0) != DefaultLimit || NormalizeLimit(1000) != MaxLimit {
		t.Fatal("unexpected limit normalization")
	}
	if FetchLimit(5) != 6 {
		t.Fatal("expected buffered limit")
	}
}
