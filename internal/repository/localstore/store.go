package localstore

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/milkbook/milkbook/internal/domain/models"
	"github.com/milkbook/milkbook/internal/repository/storage"
)

// Storage key layout. Entity collections are namespaced per owner so one
// operator account never reads another's data.
const (
	usersKey       = "users"
	currentUserKey = "auth::current"
)

func customersKey(ownerID string) string {
	return fmt.Sprintf("customers::%s", ownerID)
}

func milkRecordsKey(ownerID string) string {
	return fmt.Sprintf("milk_records::%s", ownerID)
}

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store is the default storage driver: whole collections serialized as JSON
// through a file-backed KV adapter. The mutex covers read-modify-write
// sequences that span multiple KV operations.
type Store struct {
	kv *KV
	mu sync.Mutex
}

// New builds a file-backed store persisting to path.
func New(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: NewKV(path, logger)}
}

// CreateUser appends a user to the registry, rejecting duplicate usernames.
func (s *Store) CreateUser(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := Read(s.kv, usersKey, []models.User{})
	for _, u := range users {
		if u.Username == user.Username {
			return storage.ErrAlreadyExists
		}
	}
	Write(s.kv, usersKey, append(users, user))
	return nil
}

// FindUserByUsername looks a user up by exact username.
func (s *Store) FindUserByUsername(_ context.Context, username string) (models.User, error) {
	for _, u := range Read(s.kv, usersKey, []models.User{}) {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// FindUserByID looks a user up by id.
func (s *Store) FindUserByID(_ context.Context, id string) (models.User, error) {
	for _, u := range Read(s.kv, usersKey, []models.User{}) {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

// SetCurrentUser persists the logged-in operator id. An empty id clears the
// session entry.
func (s *Store) SetCurrentUser(_ context.Context, userID string) error {
	Write(s.kv, currentUserKey, userID)
	return nil
}

// CurrentUser returns the logged-in operator id, or "" when nobody is.
func (s *Store) CurrentUser(_ context.Context) (string, error) {
	return Read(s.kv, currentUserKey, ""), nil
}

// AddCustomer appends to the owner's customer collection.
func (s *Store) AddCustomer(_ context.Context, customer models.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := customersKey(customer.OwnerID)
	Write(s.kv, key, append(Read(s.kv, key, []models.Customer{}), customer))
	return nil
}

// ListCustomers returns the owner's customers in insertion order.
func (s *Store) ListCustomers(_ context.Context, ownerID string) ([]models.Customer, error) {
	return Read(s.kv, customersKey(ownerID), []models.Customer{}), nil
}

// FindCustomer returns one customer by id.
func (s *Store) FindCustomer(_ context.Context, ownerID, id string) (models.Customer, error) {
	for _, c := range Read(s.kv, customersKey(ownerID), []models.Customer{}) {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Customer{}, storage.ErrNotFound
}

// DeleteCustomer removes the customer and cascades to every milk record
// referencing it, so no record can outlive its customer.
func (s *Store) DeleteCustomer(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	customers := Read(s.kv, customersKey(ownerID), []models.Customer{})
	kept := customers[:0:0]
	found := false
	for _, c := range customers {
		if c.ID == id {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return storage.ErrNotFound
	}
	Write(s.kv, customersKey(ownerID), kept)

	records := Read(s.kv, milkRecordsKey(ownerID), []models.MilkRecord{})
	keptRecords := records[:0:0]
	for _, r := range records {
		if r.CustomerID != id {
			keptRecords = append(keptRecords, r)
		}
	}
	Write(s.kv, milkRecordsKey(ownerID), keptRecords)
	return nil
}

// InsertMilkRecord prepends the record so the stored order favors recency.
func (s *Store) InsertMilkRecord(_ context.Context, record models.MilkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := milkRecordsKey(record.OwnerID)
	records := Read(s.kv, key, []models.MilkRecord{})
	Write(s.kv, key, append([]models.MilkRecord{record}, records...))
	return nil
}

// ListMilkRecords returns every record for the owner, most recent first.
func (s *Store) ListMilkRecords(_ context.Context, ownerID string) ([]models.MilkRecord, error) {
	return Read(s.kv, milkRecordsKey(ownerID), []models.MilkRecord{}), nil
}

// DeleteMilkRecord removes a record by id.
func (s *Store) DeleteMilkRecord(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := milkRecordsKey(ownerID)
	records := Read(s.kv, key, []models.MilkRecord{})
	kept := records[:0:0]
	found := false
	for _, r := range records {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return storage.ErrNotFound
	}
	Write(s.kv, key, kept)
	return nil
}

// SetPaymentStatus flips the settlement state of one record in place. No
// other field mutates.
func (s *Store) SetPaymentStatus(_ context.Context, ownerID, id string, status models.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := milkRecordsKey(ownerID)
	records := Read(s.kv, key, []models.MilkRecord{})
	for i := range records {
		if records[i].ID == id {
			records[i].PaymentStatus = status
			Write(s.kv, key, records)
			return nil
		}
	}
	return storage.ErrNotFound
}

// Close is a no-op: every write already flushed to disk.
func (s *Store) Close(context.Context) error {
	return nil
}
