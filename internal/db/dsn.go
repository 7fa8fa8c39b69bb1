package db

import (
	"os"
	"regexp"
	"strings"
)

var kvPairRegex = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)

// NormalizeDSN accepts either a URL style DSN (postgres://...), a lib/pq
// key=value list, or a sqlite path/URI. It trims quotes and whitespace and, if
// given postgres key=value form, returns it cleaned with sslmode defaulted.
func NormalizeDSN(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "\"'")
	if s == "" {
		return s
	}
	if IsPostgresDSN(s) && !strings.Contains(strings.ToLower(s), "://") {
		// key=value list: collapse spacing, ensure sslmode present
		fields := strings.Fields(s)
		cleaned := strings.Join(fields, " ")
		if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
			cleaned += " sslmode=disable"
		}
		return cleaned
	}
	return s
}

// IsPostgresDSN reports whether the DSN targets postgres (URL or key=value
// form). Anything else is treated as a sqlite path/URI.
func IsPostgresDSN(dsn string) bool {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return true
	}
	return kvPairRegex.MatchString(lower)
}

// GetNormalizedDSN fetches DATABASE_DSN env var and normalizes it.
func GetNormalizedDSN() string { return NormalizeDSN(os.Getenv("DATABASE_DSN")) }
