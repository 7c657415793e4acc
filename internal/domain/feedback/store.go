package feedback

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const eventSelect = `
    SELECT f.id::text, f.employee_id::text, COALESCE(e.name, ''), COALESCE(f.manager_id::text, ''), COALESCE(m.name, ''),
           f.point_type, f.is_manager_feedback, f.category, f.comment, f.created_at
    FROM feedback f
    LEFT JOIN users e ON e.id = f.employee_id
    LEFT JOIN users m ON m.id = f.manager_id
  `

func (s *Store) ListForEmployees(ctx context.Context, employeeIDs []string, since time.Time) ([]Event, error) {
	if len(employeeIDs) == 0 {
		return []Event{}, nil
	}
	query := eventSelect + " WHERE f.employee_id = ANY($1::uuid[])"
	args := []any{employeeIDs}
	if !since.IsZero() {
		query += " AND f.created_at >= $2"
		args = append(args, since)
	}
	query += " ORDER BY f.created_at DESC"
	return s.queryEvents(ctx, query, args...)
}

func (s *Store) ListBetween(ctx context.Context, from, to time.Time) ([]Event, error) {
	query := eventSelect + " WHERE f.created_at >= $1"
	args := []any{from}
	if !to.IsZero() {
		query += " AND f.created_at <= $2"
		args = append(args, to)
	}
	query += " ORDER BY f.created_at DESC"
	return s.queryEvents(ctx, query, args...)
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var ev Event
		var pointType string
		if err := rows.Scan(&ev.ID, &ev.EmployeeID, &ev.EmployeeName, &ev.ManagerID, &ev.ManagerName, &pointType, &ev.IsManagerFeedback, &ev.Category, &ev.Comment, &ev.Timestamp); err != nil {
			return nil, err
		}
		ev.PointType = PointType(pointType)
		ev.Timestamp = ev.Timestamp.UTC()
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *Store) Create(ctx context.Context, in NewEvent) (Event, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO feedback (employee_id, manager_id, point_type, is_manager_feedback, category, comment, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id::text
  `, in.EmployeeID, nullIfEmpty(in.ManagerID), string(in.PointType), in.IsManagerFeedback, in.Category, in.Comment, timestampOrNow(in.Timestamp)).Scan(&id); err != nil {
		return Event{}, err
	}

	events, err := s.queryEvents(ctx, eventSelect+" WHERE f.id = $1", id)
	if err != nil {
		return Event{}, err
	}
	if len(events) == 0 {
		return Event{}, ErrNotFound
	}
	return events[0], nil
}

func (s *Store) CreateBatch(ctx context.Context, in []NewEvent) (int, error) {
	if len(in) == 0 {
		return 0, nil
	}
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, ev := range in {
		batch.Queue(`
      INSERT INTO feedback (employee_id, manager_id, point_type, is_manager_feedback, category, comment, created_at)
      VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, ev.EmployeeID, nullIfEmpty(ev.ManagerID), string(ev.PointType), ev.IsManagerFeedback, ev.Category, ev.Comment, timestampOrNow(ev.Timestamp))
	}
	results := tx.SendBatch(ctx, batch)
	for i := range in {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("import row %d: %w", i+1, err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(in), nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM feedback").Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) TopGrantors(ctx context.Context, limit int) ([]GrantorCount, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT m.name, COUNT(1)
    FROM feedback f
    JOIN users m ON m.id = f.manager_id
    GROUP BY m.id, m.name
    ORDER BY COUNT(1) DESC, m.name
    LIMIT $1
  `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GrantorCount{}
	for rows.Next() {
		var row GrantorCount
		if err := rows.Scan(&row.Name, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) ListCategories(ctx context.Context, kind string) ([]Category, error) {
	query := "SELECT name, kind, sort_order FROM categories"
	args := []any{}
	if kind != "" {
		query += " WHERE kind = $1"
		args = append(args, kind)
	}
	query += " ORDER BY sort_order, name"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Name, &c.Kind, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func timestampOrNow(ts time.Time) time.Time {
	if ts.IsZero() {
		return time.Now().UTC()
	}
	return ts.UTC()
}
