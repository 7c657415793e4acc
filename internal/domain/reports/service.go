package reports

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"kudos/internal/domain/feedback"
	"kudos/internal/domain/period"
	"kudos/internal/domain/users"
)

type FeedbackReader interface {
	Engine() feedback.Engine
	Employee(ctx context.Context, actor feedback.Actor, employeeID string) (feedback.Contact, error)
	EmployeeFeedback(ctx context.Context, actor feedback.Actor, employeeID string, since time.Time) ([]feedback.Event, error)
	TeamFeedback(ctx context.Context, actor feedback.Actor, since time.Time) ([]feedback.Member, []feedback.Event, error)
	OrderedCategories(ctx context.Context, events []feedback.Event) ([]feedback.CategoryStat, error)
	Badges(ctx context.Context, actor feedback.Actor, userID string) ([]feedback.Badge, error)
	Overview(ctx context.Context) (feedback.Overview, error)
}

type RoleCounter interface {
	RoleCounts(ctx context.Context) ([]users.RoleCount, error)
}

type Service struct {
	feedback FeedbackReader
	users    RoleCounter
	Now      func() time.Time
}

func NewService(fb FeedbackReader, counter RoleCounter) *Service {
	return &Service{feedback: fb, users: counter, Now: time.Now}
}

func (s *Service) EmployeeDashboard(ctx context.Context, actor feedback.Actor, p period.Period) (EmployeeDashboard, error) {
	since, bounded := period.ResolveSince(p, s.Now())
	return s.employeeDashboard(ctx, actor, actor.ID, since, bounded)
}

func (s *Service) employeeDashboard(ctx context.Context, actor feedback.Actor, employeeID string, since time.Time, bounded bool) (EmployeeDashboard, error) {
	var (
		events []feedback.Event
		badges []feedback.Badge
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.feedback.EmployeeFeedback(gctx, actor, employeeID, since)
		return err
	})
	g.Go(func() error {
		var err error
		badges, err = s.feedback.Badges(gctx, actor, employeeID)
		return err
	})
	if err := g.Wait(); err != nil {
		return EmployeeDashboard{}, err
	}

	categories, err := s.feedback.OrderedCategories(ctx, events)
	if err != nil {
		return EmployeeDashboard{}, err
	}
	return EmployeeDashboard{
		Since:      period.FormatSince(since, bounded),
		Stats:      s.feedback.Engine().Compute(events),
		Categories: categories,
		Badges:     badges,
		Recent:     recent(events),
	}, nil
}

func (s *Service) ManagerDashboard(ctx context.Context, actor feedback.Actor, p period.Period) (ManagerDashboard, error) {
	since, bounded := period.ResolveSince(p, s.Now())

	var (
		own     EmployeeDashboard
		members []feedback.Member
		events  []feedback.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		own, err = s.employeeDashboard(gctx, actor, actor.ID, since, bounded)
		return err
	})
	g.Go(func() error {
		var err error
		members, events, err = s.feedback.TeamFeedback(gctx, actor, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return ManagerDashboard{}, err
	}
	return ManagerDashboard{
		EmployeeDashboard: own,
		Team:              s.feedback.Engine().Team(members, events),
	}, nil
}

func (s *Service) AdminStats(ctx context.Context) (AdminStats, error) {
	var out AdminStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		overview, err := s.feedback.Overview(gctx)
		out.Overview = overview
		return err
	})
	g.Go(func() error {
		counts, err := s.users.RoleCounts(gctx)
		out.Users = counts
		return err
	})
	if err := g.Wait(); err != nil {
		return AdminStats{}, err
	}
	return out, nil
}

// EmployeeReport collects the data printed in the PDF report.
func (s *Service) EmployeeReport(ctx context.Context, actor feedback.Actor, employeeID string, p period.Period) (FeedbackReport, error) {
	now := s.Now()
	since, _ := period.ResolveSince(p, now)

	var (
		contact feedback.Contact
		events  []feedback.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contact, err = s.feedback.Employee(gctx, actor, employeeID)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.feedback.EmployeeFeedback(gctx, actor, employeeID, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return FeedbackReport{}, err
	}

	categories, err := s.feedback.OrderedCategories(ctx, events)
	if err != nil {
		return FeedbackReport{}, err
	}
	return FeedbackReport{
		Employee:    contact,
		PeriodLabel: periodLabel(p),
		GeneratedAt: now.UTC(),
		Stats:       s.feedback.Engine().Compute(events),
		Categories:  categories,
		Recent:      recent(events),
	}, nil
}

func periodLabel(p period.Period) string {
	for _, opt := range period.Options() {
		if opt.Value == p {
			return opt.Label
		}
	}
	return string(p)
}

// recent keeps the newest events; the store already returns them newest
// first.
func recent(events []feedback.Event) []feedback.Event {
	if len(events) > RecentLimit {
		events = events[:RecentLimit]
	}
	out := make([]feedback.Event, len(events))
	copy(out, events)
	return out
}
