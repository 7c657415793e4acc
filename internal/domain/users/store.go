package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"kudos/internal/domain/feedback"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const userSelect = `
    SELECT u.id::text, u.email, u.name, u.role, u.department, u.job_title,
           COALESCE(h.manager_id::text, ''), COALESCE(m.name, ''), u.created_at
    FROM users u
    LEFT JOIN hierarchy h ON h.user_id = u.id
    LEFT JOIN users m ON m.id = h.manager_id
  `

// subtreeCTE expands every user below $1. UNION drops duplicates, which also
// stops the recursion on a cyclic mapping.
const subtreeCTE = `
    WITH RECURSIVE tree AS (
      SELECT user_id FROM hierarchy WHERE manager_id = $1
      UNION
      SELECT h.user_id FROM hierarchy h JOIN tree t ON h.manager_id = t.user_id
    )
  `

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Department, &u.Function, &u.ManagerID, &u.ManagerName, &u.CreatedAt)
	return u, err
}

func (s *Store) List(ctx context.Context) ([]User, error) {
	rows, err := s.DB.Query(ctx, userSelect+" ORDER BY u.name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (User, error) {
	u, err := scanUser(s.DB.QueryRow(ctx, userSelect+" WHERE u.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *Store) Create(ctx context.Context, in CreateInput, passwordHash string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (email, name, password_hash, role, department, job_title)
    VALUES ($1, $2, $3, $4, $5, $6)
    RETURNING id::text
  `, in.Email, in.Name, passwordHash, in.Role, in.Department, in.Function).Scan(&id)
	if isUniqueViolation(err) {
		return "", ErrEmailTaken
	}
	return id, err
}

func (s *Store) Update(ctx context.Context, id string, in UpdateInput) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE users
    SET email = $1, name = $2, role = $3, department = $4, job_title = $5, updated_at = now()
    WHERE id = $6
  `, in.Email, in.Name, in.Role, in.Department, in.Function, id)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user. Hierarchy rows and received feedback go with it
// through the foreign keys; feedback they granted keeps an empty grantor.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetManager replaces the manager of userID. An empty managerID clears it.
func (s *Store) SetManager(ctx context.Context, userID, managerID string) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if managerID == "" {
		if _, err := tx.Exec(ctx, "DELETE FROM hierarchy WHERE user_id = $1", userID); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}

	var cycle bool
	if err := tx.QueryRow(ctx, subtreeCTE+"SELECT EXISTS (SELECT 1 FROM tree WHERE user_id = $2)", userID, managerID).Scan(&cycle); err != nil {
		return err
	}
	if cycle {
		return ErrManagerCycle
	}

	_, err = tx.Exec(ctx, `
    INSERT INTO hierarchy (user_id, manager_id) VALUES ($1, $2)
    ON CONFLICT (user_id) DO UPDATE SET manager_id = EXCLUDED.manager_id
  `, userID, managerID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) PasswordHash(ctx context.Context, id string) (string, error) {
	var hash string
	err := s.DB.QueryRow(ctx, "SELECT password_hash FROM users WHERE id = $1", id).Scan(&hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	return hash, err
}

func (s *Store) UpdatePassword(ctx context.Context, id, hash string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2", hash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) RoleCounts(ctx context.Context) ([]RoleCount, error) {
	rows, err := s.DB.Query(ctx, "SELECT role, COUNT(1) FROM users GROUP BY role ORDER BY role")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []RoleCount{}
	for rows.Next() {
		var rc RoleCount
		if err := rows.Scan(&rc.Role, &rc.Count); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

func (s *Store) Contact(ctx context.Context, userID string) (feedback.Contact, error) {
	var c feedback.Contact
	err := s.DB.QueryRow(ctx, "SELECT id::text, name, email FROM users WHERE id = $1", userID).Scan(&c.ID, &c.Name, &c.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return feedback.Contact{}, feedback.ErrNotFound
	}
	return c, err
}

func (s *Store) IsSubordinate(ctx context.Context, managerID, userID string) (bool, error) {
	var ok bool
	err := s.DB.QueryRow(ctx, subtreeCTE+"SELECT EXISTS (SELECT 1 FROM tree WHERE user_id = $2)", managerID, userID).Scan(&ok)
	return ok, err
}

func (s *Store) Subordinates(ctx context.Context, managerID string) ([]feedback.Member, error) {
	rows, err := s.DB.Query(ctx, subtreeCTE+`
    SELECT u.id::text, u.name, u.department, u.job_title
    FROM users u
    JOIN tree t ON t.user_id = u.id
    ORDER BY u.name
  `, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []feedback.Member{}
	for rows.Next() {
		var m feedback.Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Department, &m.Function); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
