package loader

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateCapsLongText(t *testing.T) {
	long := strings.Repeat("a", MaxTextLength+1000)

	got := Truncate(long)

	if len(got) != MaxTextLength {
		t.Errorf("expected length %d, got %d", MaxTextLength, len(got))
	}
	if !strings.HasPrefix(long, got) {
		t.Error("truncated text should be a prefix of the original")
	}
}

func TestTruncateIdempotent(t *testing.T) {
	short := strings.Repeat("b", 100)

	if got := Truncate(short); got != short {
		t.Errorf("short text should be unchanged, got %q", got)
	}

	exact := strings.Repeat("c", MaxTextLength)
	if got := Truncate(exact); got != exact {
		t.Error("text of exactly MaxTextLength should be unchanged")
	}

	twice := Truncate(Truncate(strings.Repeat("d", MaxTextLength*2)))
	if len(twice) != MaxTextLength {
		t.Errorf("double truncation changed length: %d", len(twice))
	}
}

func TestTruncateCountsCharactersNotBytes(t *testing.T) {
	// Cyrillic runes are two bytes each; the cap must still leave
	// MaxTextLength characters and never split a rune.
	long := strings.Repeat("д", MaxTextLength+1000)

	got := Truncate(long)

	if n := utf8.RuneCountInString(got); n != MaxTextLength {
		t.Errorf("expected %d characters after truncation, got %d", MaxTextLength, n)
	}
	if !utf8.ValidString(got) {
		t.Error("truncation produced invalid UTF-8")
	}
	if !strings.HasPrefix(long, got) {
		t.Error("truncated text should be a prefix of the original")
	}
}
