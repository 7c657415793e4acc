package shared

import (
	"errors"
	"strings"
	"testing"
	"time"

	"kudos/internal/domain/feedback"
)

const legacyExport = `[
  {"employee_id": 7, "manager_id": 3, "type": "rosu", "is_manager_feedback": 1, "comment": "bravo", "category": "Comunicare", "timestamp": "2024-05-01T10:20:30.123456"},
  {"employee_id": "7", "manager_id": null, "point_type": "negru", "is_manager_feedback": "0", "comment": "întârziere", "category": "", "timestamp": "2024-05-02 08:00:00"},
  {"employee_id": "7", "type": "RED", "is_manager_feedback": false, "comment": "🚀 Rapid", "timestamp": "2024-05-03T09:00:00Z"}
]`

func TestDecodeLegacy(t *testing.T) {
	rows, err := DecodeLegacy(strings.NewReader(legacyExport))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].EmployeeID != "7" || rows[0].ManagerID != "3" || !bool(rows[0].IsManagerFeedback) {
		t.Fatalf("unexpected first row %+v", rows[0])
	}

	first, err := rows[0].NewEvent()
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want := time.Date(2024, time.May, 1, 10, 20, 30, 123456000, time.UTC)
	if first.PointType != feedback.PointRed || !first.Timestamp.Equal(want) {
		t.Fatalf("unexpected event %+v", first)
	}

	events := make([]feedback.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, row.Event())
	}
	stats := feedback.DefaultEngine().Compute(events)
	if stats.RedManager != 1 || stats.RedPeer != 1 || stats.Black != 1 || stats.PercentageRed != 50 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if events[1].Category != feedback.DefaultCategory {
		t.Fatalf("expected default category, got %q", events[1].Category)
	}
}

func TestDecodeLegacyEnvelope(t *testing.T) {
	rows, err := DecodeLegacy(strings.NewReader(`{"success":true,"data":[{"employee_id":"a","point_type":"rosu","timestamp":"2024-01-01"}]}`))
	if err != nil || len(rows) != 1 || rows[0].EmployeeID != "a" {
		t.Fatalf("unexpected rows %+v (%v)", rows, err)
	}
}

func TestLegacyRowRejectsUnknownType(t *testing.T) {
	row := LegacyRow{EmployeeID: "a", Type: "verde", Timestamp: "2024-01-01"}
	if _, err := row.NewEvent(); !errors.Is(err, feedback.ErrInvalidPointType) {
		t.Fatalf("expected invalid point type, got %v", err)
	}
	ev := row.Event()
	if stats := feedback.DefaultEngine().Compute([]feedback.Event{ev}); stats.Total != 0 {
		t.Fatalf("unknown point type must not be counted, got %+v", stats)
	}
}
