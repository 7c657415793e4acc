package feedback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Actor is the authenticated caller as seen by the feedback service.
type Actor struct {
	ID    string
	Admin bool
}

type SubmitInput struct {
	EmployeeID string
	PointType  PointType
	Comment    string
	Category   string
	// Kudos marks a red point from a manager as peer recognition so it does
	// not count toward the official rating.
	Kudos bool
}

type Service struct {
	store     StoreAPI
	hierarchy Hierarchy
	engine    Engine
	notifier  Notifier

	BadgeWindow time.Duration
	Now         func() time.Time
}

func NewService(store StoreAPI, hierarchy Hierarchy, engine Engine, notifier Notifier) *Service {
	return &Service{
		store:       store,
		hierarchy:   hierarchy,
		engine:      engine,
		notifier:    notifier,
		BadgeWindow: DefaultBadgeWindow,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Engine() Engine {
	return s.engine
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// CanView reports whether actor may read the feedback of employeeID: admins,
// the employee themself and any manager above them in the hierarchy.
func (s *Service) CanView(ctx context.Context, actor Actor, employeeID string) (bool, error) {
	if actor.Admin || actor.ID == employeeID {
		return true, nil
	}
	return s.hierarchy.IsSubordinate(ctx, actor.ID, employeeID)
}

// Employee returns the contact card of employeeID if actor may see them.
func (s *Service) Employee(ctx context.Context, actor Actor, employeeID string) (Contact, error) {
	allowed, err := s.CanView(ctx, actor, employeeID)
	if err != nil {
		return Contact{}, fmt.Errorf("check hierarchy: %w", err)
	}
	if !allowed {
		return Contact{}, ErrForbidden
	}
	return s.hierarchy.Contact(ctx, employeeID)
}

func (s *Service) MyFeedback(ctx context.Context, actor Actor, since time.Time) ([]Event, error) {
	return s.store.ListForEmployees(ctx, []string{actor.ID}, since)
}

func (s *Service) EmployeeFeedback(ctx context.Context, actor Actor, employeeID string, since time.Time) ([]Event, error) {
	allowed, err := s.CanView(ctx, actor, employeeID)
	if err != nil {
		return nil, fmt.Errorf("check hierarchy: %w", err)
	}
	if !allowed {
		return nil, ErrForbidden
	}
	return s.store.ListForEmployees(ctx, []string{employeeID}, since)
}

// TeamFeedback returns the members below actor (all levels) and every event
// they received since the bound.
func (s *Service) TeamFeedback(ctx context.Context, actor Actor, since time.Time) ([]Member, []Event, error) {
	members, err := s.hierarchy.Subordinates(ctx, actor.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load subordinates: %w", err)
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	events, err := s.store.ListForEmployees(ctx, ids, since)
	if err != nil {
		return nil, nil, err
	}
	return members, events, nil
}

func (s *Service) MyStats(ctx context.Context, actor Actor, since time.Time) (Stats, error) {
	events, err := s.MyFeedback(ctx, actor, since)
	if err != nil {
		return Stats{}, err
	}
	return s.engine.Compute(events), nil
}

func (s *Service) EmployeeStats(ctx context.Context, actor Actor, employeeID string, since time.Time) (Stats, error) {
	events, err := s.EmployeeFeedback(ctx, actor, employeeID, since)
	if err != nil {
		return Stats{}, err
	}
	return s.engine.Compute(events), nil
}

func (s *Service) TeamStats(ctx context.Context, actor Actor, since time.Time) (TeamStats, error) {
	members, events, err := s.TeamFeedback(ctx, actor, since)
	if err != nil {
		return TeamStats{}, err
	}
	return s.engine.Team(members, events), nil
}

// CategoryStats groups the feedback of userID by category, official
// categories first in catalogue order.
func (s *Service) CategoryStats(ctx context.Context, actor Actor, userID string, since time.Time) ([]CategoryStat, error) {
	events, err := s.EmployeeFeedback(ctx, actor, userID, since)
	if err != nil {
		return nil, err
	}
	return s.OrderedCategories(ctx, events)
}

// OrderedCategories aggregates events and sorts the rows by the catalogue.
func (s *Service) OrderedCategories(ctx context.Context, events []Event) ([]CategoryStat, error) {
	catalogue, err := s.store.ListCategories(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	order := make([]string, 0, len(catalogue))
	for _, c := range catalogue {
		order = append(order, c.Name)
	}
	return OrderCategories(s.engine.Categories(events), order), nil
}

// Badges lists the kudos badges userID collected in the badge window.
func (s *Service) Badges(ctx context.Context, actor Actor, userID string) ([]Badge, error) {
	now := s.now()
	events, err := s.EmployeeFeedback(ctx, actor, userID, now.Add(-s.badgeWindow()))
	if err != nil {
		return nil, err
	}
	return Badges(events, now, s.badgeWindow()), nil
}

func (s *Service) badgeWindow() time.Duration {
	if s.BadgeWindow <= 0 {
		return DefaultBadgeWindow
	}
	return s.BadgeWindow
}

func (s *Service) Categories(ctx context.Context, kind string) ([]Category, error) {
	return s.store.ListCategories(ctx, kind)
}

// Submit records a new feedback event from actor.
func (s *Service) Submit(ctx context.Context, actor Actor, in SubmitInput) (Event, error) {
	employeeID := strings.TrimSpace(in.EmployeeID)
	comment := strings.TrimSpace(in.Comment)
	if employeeID == "" {
		return Event{}, ErrNotFound
	}
	if !in.PointType.Valid() {
		return Event{}, ErrInvalidPointType
	}
	if comment == "" {
		return Event{}, ErrCommentRequired
	}
	if employeeID == actor.ID {
		return Event{}, ErrSelfFeedback
	}

	recipient, err := s.hierarchy.Contact(ctx, employeeID)
	if err != nil {
		return Event{}, err
	}

	isManager := actor.Admin
	if !isManager {
		isManager, err = s.hierarchy.IsSubordinate(ctx, actor.ID, employeeID)
		if err != nil {
			return Event{}, fmt.Errorf("check hierarchy: %w", err)
		}
	}
	if in.PointType == PointBlack && !isManager {
		return Event{}, ErrBlackRequiresManager
	}

	category, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return Event{}, err
	}

	ev, err := s.store.Create(ctx, NewEvent{
		EmployeeID:        employeeID,
		ManagerID:         actor.ID,
		PointType:         in.PointType,
		IsManagerFeedback: isManager && !(in.Kudos && in.PointType == PointRed),
		Category:          category,
		Comment:           comment,
		Timestamp:         s.now(),
	})
	if err != nil {
		return Event{}, fmt.Errorf("create feedback: %w", err)
	}

	if s.notifier != nil {
		grantor, err := s.hierarchy.Contact(ctx, actor.ID)
		if err != nil {
			slog.Warn("feedback grantor lookup failed", "err", err, "grantorId", actor.ID)
			grantor = Contact{ID: actor.ID, Name: ev.ManagerName}
		}
		s.notifier.FeedbackReceived(ctx, recipient, grantor, ev)
	}
	return ev, nil
}

func (s *Service) resolveCategory(ctx context.Context, raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return DefaultCategory, nil
	}
	catalogue, err := s.store.ListCategories(ctx, "")
	if err != nil {
		return "", fmt.Errorf("load categories: %w", err)
	}
	for _, c := range catalogue {
		if c.Name == name {
			return name, nil
		}
	}
	return "", ErrUnknownCategory
}

// Export lists every event between from and to (inclusive). A zero to means
// no upper bound.
func (s *Service) Export(ctx context.Context, from, to time.Time) ([]Event, error) {
	if !to.IsZero() && to.Before(from) {
		return nil, ErrInvalidRange
	}
	return s.store.ListBetween(ctx, from, to)
}

// ImportError points at the first rejected row of an import.
type ImportError struct {
	Row int
	Err error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Import stores legacy events in one transaction. Rows are normalised first:
// missing categories become the default one and black points are official.
func (s *Service) Import(ctx context.Context, rows []NewEvent) (int, error) {
	clean := make([]NewEvent, 0, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row.EmployeeID) == "" {
			return 0, &ImportError{Row: i + 1, Err: ErrNotFound}
		}
		if !row.PointType.Valid() {
			return 0, &ImportError{Row: i + 1, Err: ErrInvalidPointType}
		}
		row.EmployeeID = strings.TrimSpace(row.EmployeeID)
		row.ManagerID = strings.TrimSpace(row.ManagerID)
		row.Category = strings.TrimSpace(row.Category)
		if row.Category == "" {
			row.Category = DefaultCategory
		}
		if row.PointType == PointBlack {
			row.IsManagerFeedback = true
		}
		clean = append(clean, row)
	}
	return s.store.CreateBatch(ctx, clean)
}

// Overview is the feedback part of the admin statistics page.
type Overview struct {
	TotalFeedback int            `json:"totalFeedback"`
	RecentRed     int            `json:"recentRed"`
	RecentBlack   int            `json:"recentBlack"`
	TopManagers   []GrantorCount `json:"topManagers"`
}

func (s *Service) Overview(ctx context.Context) (Overview, error) {
	total, err := s.store.Count(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("count feedback: %w", err)
	}
	recent, err := s.store.ListBetween(ctx, s.now().Add(-AdminStatsWindow), time.Time{})
	if err != nil {
		return Overview{}, fmt.Errorf("load recent feedback: %w", err)
	}
	top, err := s.store.TopGrantors(ctx, TopGrantorsLimit)
	if err != nil {
		return Overview{}, fmt.Errorf("load top grantors: %w", err)
	}
	stats := s.engine.Compute(recent)
	return Overview{
		TotalFeedback: total,
		RecentRed:     stats.Red,
		RecentBlack:   stats.Black,
		TopManagers:   top,
	}, nil
}

// IsNotFound reports whether err means a missing employee or event.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
