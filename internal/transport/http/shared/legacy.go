package shared

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"kudos/internal/domain/feedback"
)

// FlexString accepts JSON strings and numbers. Older exports used integer
// ids.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		*s = FlexString(value)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("invalid id %s", string(data))
	}
	*s = FlexString(number.String())
	return nil
}

// LegacyRow is one feedback record as found in exports, old and new. The
// point type may come as type or point_type, the official flag as a bool or
// 0/1.
type LegacyRow struct {
	EmployeeID        FlexString `json:"employee_id"`
	EmployeeName      string     `json:"employee_name"`
	ManagerID         FlexString `json:"manager_id"`
	ManagerName       string     `json:"manager_name"`
	Type              string     `json:"type"`
	PointType         string     `json:"point_type"`
	IsManagerFeedback FlexBool   `json:"is_manager_feedback"`
	Comment           string     `json:"comment"`
	Category          string     `json:"category"`
	Timestamp         string     `json:"timestamp"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	dateLayout,
}

// ParseTimestamp reads the timestamp formats seen in exports. Values without
// a zone are taken as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", raw)
}

func (r LegacyRow) pointType() string {
	if r.PointType != "" {
		return r.PointType
	}
	return r.Type
}

// NewEvent converts the row for storage.
func (r LegacyRow) NewEvent() (feedback.NewEvent, error) {
	pt, ok := feedback.ParsePointType(r.pointType())
	if !ok {
		return feedback.NewEvent{}, feedback.ErrInvalidPointType
	}
	ts, err := ParseTimestamp(r.Timestamp)
	if err != nil {
		return feedback.NewEvent{}, err
	}
	return feedback.NewEvent{
		EmployeeID:        strings.TrimSpace(string(r.EmployeeID)),
		ManagerID:         strings.TrimSpace(string(r.ManagerID)),
		PointType:         pt,
		IsManagerFeedback: bool(r.IsManagerFeedback),
		Category:          strings.TrimSpace(r.Category),
		Comment:           r.Comment,
		Timestamp:         ts,
	}, nil
}

// Event converts the row for in-memory aggregation. Rows that cannot be
// classified keep their raw point type and simply match nothing.
func (r LegacyRow) Event() feedback.Event {
	ts, _ := ParseTimestamp(r.Timestamp)
	pt, ok := feedback.ParsePointType(r.pointType())
	if !ok {
		pt = feedback.PointType(r.pointType())
	}
	category := strings.TrimSpace(r.Category)
	if category == "" {
		category = feedback.DefaultCategory
	}
	return feedback.Event{
		EmployeeID:        strings.TrimSpace(string(r.EmployeeID)),
		EmployeeName:      r.EmployeeName,
		ManagerID:         strings.TrimSpace(string(r.ManagerID)),
		ManagerName:       r.ManagerName,
		PointType:         pt,
		IsManagerFeedback: bool(r.IsManagerFeedback),
		Category:          category,
		Comment:           r.Comment,
		Timestamp:         ts,
	}
}

// DecodeLegacy reads a JSON array of rows, or an API envelope whose data
// field holds one.
func DecodeLegacy(reader io.Reader) ([]LegacyRow, error) {
	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decode export: %w", err)
		}
		raw = env.Data
	}
	var rows []LegacyRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	return rows, nil
}
