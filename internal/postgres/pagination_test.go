package postgres

import (
	"errors"
	"testing"
	"time"
)

func TestCursor_RoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC), ID: 42}

	s, err := EncodeCursor(in)
	if err != nil {
		t.Fatalf("EncodeCursor: %v", err)
	}

	out, err := DecodeCursor(s)
	if err != nil {
		t.Fatalf("DecodeCursor: %v", err)
	}
	if out == nil {
		t.Fatal("decoded cursor is nil")
	}
	if !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Fatalf("round trip mismatch: %+v != %+v", out, in)
	}
}

func TestDecodeCursor_Empty(t *testing.T) {
	c, err := DecodeCursor("")
	if err != nil {
		t.Fatalf("DecodeCursor(\"\"): %v", err)
	}
	if c != nil {
		t.Fatalf("empty cursor should decode to nil, got %+v", c)
	}
}

func TestDecodeCursor_Invalid(t *testing.T) {
	for _, s := range []string{"!!!", "bm90IGpzb24"} {
		_, err := DecodeCursor(s)
		if !errors.Is(err, ErrInvalidCursor) {
			t.Fatalf("DecodeCursor(%q) err = %v, want ErrInvalidCursor", s, err)
		}
	}
}
