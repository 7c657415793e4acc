package feedback

import (
	"strings"
	"time"
)

type PointType string

const (
	PointRed   PointType = "rosu"
	PointBlack PointType = "negru"
)

const (
	CategoryKindOfficial = "official"
	CategoryKindKudos    = "kudos"

	DefaultCategory = "General"
)

const (
	DefaultBadgeIcon   = "✨"
	DefaultBadgeWindow = 180 * 24 * time.Hour
	AdminStatsWindow   = 30 * 24 * time.Hour
	TopGrantorsLimit   = 5
)

func (p PointType) Valid() bool {
	return p == PointRed || p == PointBlack
}

// ParsePointType accepts the stored values and their English aliases.
func ParsePointType(raw string) (PointType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "rosu", "red":
		return PointRed, true
	case "negru", "black":
		return PointBlack, true
	}
	return "", false
}
