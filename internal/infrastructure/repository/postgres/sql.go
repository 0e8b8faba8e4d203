package postgres

import (
	"database/sql"
	"errors"
	"strings"

	sonic "github.com/bytedance/sonic"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func optionalString(value *string) sql.NullString {
	if value == nil || strings.TrimSpace(*value) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullStringToPtr(value sql.NullString) *string {
	if !value.Valid || value.String == "" {
		return nil
	}
	out := value.String
	return &out
}

func optionalInt(value *int) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*value), Valid: true}
}

func nullInt64ToIntPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	out := int(value.Int64)
	return &out
}

// encodeLogEntries renders entries as a JSON array for jsonb columns.
func encodeLogEntries(entries []string) (string, error) {
	if len(entries) == 0 {
		return "[]", nil
	}
	raw, err := sonic.Marshal(entries)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeLogEntries(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
