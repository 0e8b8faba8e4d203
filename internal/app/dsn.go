package app

import (
	"net/url"
	"strings"

	"github.com/riskibarqy/prediction-settlement/internal/config"
)

const maxTracedQueryLength = 512

// DatabaseURL returns the Postgres connection string with driver flags applied.
func DatabaseURL(cfg config.Config) string {
	if !cfg.DBDisablePreparedBinary {
		return cfg.DBURL
	}
	return withBinaryResultsDisabled(cfg.DBURL)
}

// withBinaryResultsDisabled sets lib/pq's disable_prepared_binary_result
// unless the URL already carries a value for it.
func withBinaryResultsDisabled(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return raw
	}
	query := parsed.Query()
	if query.Has("disable_prepared_binary_result") {
		return raw
	}
	query.Set("disable_prepared_binary_result", "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// databaseName extracts the db name from a URL or key=value DSN.
func databaseName(raw string) string {
	raw = strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		return strings.Trim(parsed.Path, "/ ")
	}

	for _, field := range strings.Fields(raw) {
		if name, ok := strings.CutPrefix(field, "dbname="); ok {
			return strings.Trim(name, `"'`)
		}
	}
	return ""
}

// traceQuery collapses whitespace and caps the length of SQL attached to spans.
func traceQuery(query string) string {
	collapsed := strings.Join(strings.Fields(query), " ")
	if len(collapsed) <= maxTracedQueryLength {
		return collapsed
	}
	return collapsed[:maxTracedQueryLength] + "..."
}
