package feedback

import (
	"context"
	"time"
)

type StoreAPI interface {
	ListForEmployees(ctx context.Context, employeeIDs []string, since time.Time) ([]Event, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]Event, error)
	Create(ctx context.Context, in NewEvent) (Event, error)
	CreateBatch(ctx context.Context, in []NewEvent) (int, error)
	Count(ctx context.Context) (int, error)
	TopGrantors(ctx context.Context, limit int) ([]GrantorCount, error)
	ListCategories(ctx context.Context, kind string) ([]Category, error)
}

// Hierarchy answers who reports to whom. It is implemented by the users store.
type Hierarchy interface {
	Contact(ctx context.Context, userID string) (Contact, error)
	IsSubordinate(ctx context.Context, managerID, userID string) (bool, error)
	Subordinates(ctx context.Context, managerID string) ([]Member, error)
}

// Notifier is told about every newly created event.
type Notifier interface {
	FeedbackReceived(ctx context.Context, recipient, grantor Contact, ev Event)
}
