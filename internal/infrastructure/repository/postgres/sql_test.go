package postgres

import (
	"database/sql"
	"fmt"
	"testing"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("select alias: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(fmt.Errorf("pq: relation team_aliases does not exist")) {
		t.Fatalf("expected unrelated error to be ignored")
	}
}

func TestOptionalString(t *testing.T) {
	t.Run("blank is null", func(t *testing.T) {
		blank := "  "
		if got := optionalString(&blank); got.Valid {
			t.Fatalf("expected null for blank string, got %+v", got)
		}
		if got := optionalString(nil); got.Valid {
			t.Fatalf("expected null for nil, got %+v", got)
		}
	})

	t.Run("round trips value", func(t *testing.T) {
		value := "sportmonks:19134"
		got := nullStringToPtr(optionalString(&value))
		if got == nil || *got != value {
			t.Fatalf("unexpected round trip: got=%v want=%s", got, value)
		}
	})
}

func TestOptionalInt(t *testing.T) {
	minute := 38
	got := nullInt64ToIntPtr(optionalInt(&minute))
	if got == nil || *got != minute {
		t.Fatalf("unexpected round trip: got=%v want=%d", got, minute)
	}
	if nullInt64ToIntPtr(optionalInt(nil)) != nil {
		t.Fatalf("expected nil for null int")
	}
}

func TestLogEntriesCodec(t *testing.T) {
	encoded, err := encodeLogEntries([]string{"a", `quote "b"`})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if encoded != `["a","quote \"b\""]` {
		t.Fatalf("unexpected encoding: %s", encoded)
	}

	decoded := decodeLogEntries([]byte(encoded))
	if len(decoded) != 2 || decoded[1] != `quote "b"` {
		t.Fatalf("unexpected decoded entries: %+v", decoded)
	}

	empty, _ := encodeLogEntries(nil)
	if empty != "[]" {
		t.Fatalf("unexpected empty encoding: %s", empty)
	}
	if decodeLogEntries([]byte("not json")) != nil {
		t.Fatalf("expected nil on malformed log")
	}
}
