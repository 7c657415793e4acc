package reports

import (
	"time"

	"kudos/internal/domain/feedback"
	"kudos/internal/domain/users"
)

const RecentLimit = 10

type EmployeeDashboard struct {
	Since      string                  `json:"since,omitempty"`
	Stats      feedback.Stats          `json:"stats"`
	Categories []feedback.CategoryStat `json:"categories"`
	Badges     []feedback.Badge        `json:"badges"`
	Recent     []feedback.Event        `json:"recent"`
}

type ManagerDashboard struct {
	EmployeeDashboard
	Team feedback.TeamStats `json:"team"`
}

type AdminStats struct {
	feedback.Overview
	Users []users.RoleCount `json:"users"`
}

// FeedbackReport is everything the PDF report prints for one employee.
type FeedbackReport struct {
	Employee    feedback.Contact
	PeriodLabel string
	GeneratedAt time.Time
	Stats       feedback.Stats
	Categories  []feedback.CategoryStat
	Recent      []feedback.Event
}
