package storage

import (
	"context"
	"errors"

	"github.com/milkbook/milkbook/internal/domain/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// Store captures the persistence operations the services need. Every
// entity operation is scoped by an explicit ownerID: one operator account
// never sees another's customers or records.
type Store interface {
	// User registry.
	CreateUser(ctx context.Context, user models.User) error
	FindUserByUsername(ctx context.Context, username string) (models.User, error)
	FindUserByID(ctx context.Context, id string) (models.User, error)

	// Current-session identity. A single persisted entry records which
	// operator is logged in; SetCurrentUser with an empty id clears it.
	SetCurrentUser(ctx context.Context, userID string) error
	CurrentUser(ctx context.Context) (string, error)

	// Customers.
	AddCustomer(ctx context.Context, customer models.Customer) error
	ListCustomers(ctx context.Context, ownerID string) ([]models.Customer, error)
	FindCustomer(ctx context.Context, ownerID, id string) (models.Customer, error)
	// DeleteCustomer removes the customer and every milk record that
	// references it.
	DeleteCustomer(ctx context.Context, ownerID, id string) error

	// Milk records. InsertMilkRecord prepends so the natural order of the
	// collection favors recency.
	InsertMilkRecord(ctx context.Context, record models.MilkRecord) error
	ListMilkRecords(ctx context.Context, ownerID string) ([]models.MilkRecord, error)
	DeleteMilkRecord(ctx context.Context, ownerID, id string) error
	SetPaymentStatus(ctx context.Context, ownerID, id string, status models.PaymentStatus) error

	Close(ctx context.Context) error
}
