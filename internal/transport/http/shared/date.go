package shared

import (
	"net/http"
	"strings"
	"time"

	"kudos/internal/domain/period"
)

const dateLayout = "2006-01-02"

// ParseDate accepts RFC3339 or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(dateLayout, value)
}

// ParseDateEnd is ParseDate for inclusive upper bounds: a bare date covers
// the whole day.
func ParseDateEnd(value string) (time.Time, error) {
	parsed, err := ParseDate(value)
	if err != nil || parsed.IsZero() {
		return parsed, err
	}
	if len(strings.TrimSpace(value)) == len(dateLayout) {
		return parsed.Add(24*time.Hour - time.Second), nil
	}
	return parsed, nil
}

// ParseSince reads the lower bound of a feedback listing. An explicit since
// parameter wins; otherwise period is resolved against now. The zero time
// means no bound.
func ParseSince(r *http.Request, now time.Time) (time.Time, error) {
	query := r.URL.Query()
	if raw := strings.TrimSpace(query.Get("since")); raw != "" {
		since, err := ParseDate(raw)
		if err != nil {
			return time.Time{}, err
		}
		return since.UTC(), nil
	}
	since, ok := period.ResolveSince(ParsePeriod(r), now)
	if !ok {
		return time.Time{}, nil
	}
	return since, nil
}

func ParsePeriod(r *http.Request) period.Period {
	return period.Parse(r.URL.Query().Get("period"))
}
