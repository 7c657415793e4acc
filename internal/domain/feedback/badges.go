package feedback

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Badges lists the distinct kudos a person received in the window ending at
// now. Only peer red events count; labels are deduplicated on the raw comment
// and returned in the order first seen.
func Badges(events []Event, now time.Time, window time.Duration) []Badge {
	if window <= 0 {
		window = DefaultBadgeWindow
	}
	cutoff := now.Add(-window)

	out := make([]Badge, 0)
	seen := map[string]struct{}{}
	for i := range events {
		ev := &events[i]
		if ev.PointType != PointRed || ev.IsManagerFeedback || ev.Timestamp.Before(cutoff) {
			continue
		}
		if _, ok := seen[ev.Comment]; ok {
			continue
		}
		seen[ev.Comment] = struct{}{}
		if badge, ok := parseBadge(ev.Comment); ok {
			out = append(out, badge)
		}
	}
	return out
}

func parseBadge(comment string) (Badge, bool) {
	trimmed := strings.TrimSpace(comment)
	if trimmed == "" {
		return Badge{}, false
	}
	parts := strings.Fields(trimmed)
	if isIcon(parts[0]) {
		label := strings.Join(parts[1:], " ")
		if label == "" {
			label = trimmed
		}
		return Badge{Icon: parts[0], Label: label}, true
	}
	return Badge{Icon: DefaultBadgeIcon, Label: trimmed}, true
}

func isIcon(token string) bool {
	r, _ := utf8.DecodeRuneInString(token)
	if r == utf8.RuneError {
		return false
	}
	return unicode.Is(unicode.So, r) || (r >= 0x2600 && r <= 0x27BF) || r >= 0x1F000
}

// BadgeFromComment renders a catalogue entry the way Badges renders a
// received kudos.
func BadgeFromComment(comment string) Badge {
	badge, ok := parseBadge(comment)
	if !ok {
		return Badge{Icon: DefaultBadgeIcon}
	}
	return badge
}
