package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/milkbook/milkbook/internal/domain/models"
	"github.com/milkbook/milkbook/internal/repository/storage"
)

const (
	usersColl       = "users"
	customersColl   = "customers"
	milkRecordsColl = "milk_records"
	sessionColl     = "session"

	// The session collection holds a single document tracking the
	// logged-in operator.
	sessionDocID = "current"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store backed by MongoDB.
type Store struct {
	client *mongo.Client
	dbName string
}

// New connects to MongoDB and verifies the connection with a ping.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, dbName: dbName}, nil
}

func (s *Store) coll(name string) *mongo.Collection {
	return s.client.Database(s.dbName).Collection(name)
}

// CreateUser inserts a user, rejecting duplicate usernames.
func (s *Store) CreateUser(ctx context.Context, user models.User) error {
	err := s.coll(usersColl).FindOne(ctx, bson.M{"username": user.Username}).Err()
	if err == nil {
		return storage.ErrAlreadyExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("check username uniqueness: %w", err)
	}

	if _, err := s.coll(usersColl).InsertOne(ctx, user); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindUserByUsername fetches a user by exact username.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (models.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

// FindUserByID fetches a user by id.
func (s *Store) FindUserByID(ctx context.Context, id string) (models.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (models.User, error) {
	var user models.User
	if err := s.coll(usersColl).FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// SetCurrentUser upserts the single session document. An empty id clears it.
func (s *Store) SetCurrentUser(ctx context.Context, userID string) error {
	_, err := s.coll(sessionColl).UpdateOne(ctx,
		bson.M{"_id": sessionDocID},
		bson.M{"$set": bson.M{"user_id": userID}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set current user: %w", err)
	}
	return nil
}

// CurrentUser returns the logged-in operator id, or "" when nobody is.
func (s *Store) CurrentUser(ctx context.Context) (string, error) {
	var doc struct {
		UserID string `bson:"user_id"`
	}
	err := s.coll(sessionColl).FindOne(ctx, bson.M{"_id": sessionDocID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", nil
		}
		return "", fmt.Errorf("read current user: %w", err)
	}
	return doc.UserID, nil
}

// AddCustomer inserts a customer document.
func (s *Store) AddCustomer(ctx context.Context, customer models.Customer) error {
	if _, err := s.coll(customersColl).InsertOne(ctx, customer); err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// ListCustomers returns all of the owner's customers.
func (s *Store) ListCustomers(ctx context.Context, ownerID string) ([]models.Customer, error) {
	cursor, err := s.coll(customersColl).Find(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	customers := []models.Customer{}
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}
	return customers, nil
}

// FindCustomer fetches one customer scoped to the owner.
func (s *Store) FindCustomer(ctx context.Context, ownerID, id string) (models.Customer, error) {
	var customer models.Customer
	err := s.coll(customersColl).FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&customer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Customer{}, storage.ErrNotFound
		}
		return models.Customer{}, fmt.Errorf("find customer: %w", err)
	}
	return customer, nil
}

// DeleteCustomer removes the customer and cascades to its milk records.
func (s *Store) DeleteCustomer(ctx context.Context, ownerID, id string) error {
	res, err := s.coll(customersColl).DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}

	if _, err := s.coll(milkRecordsColl).DeleteMany(ctx, bson.M{"customer_id": id, "owner_id": ownerID}); err != nil {
		return fmt.Errorf("cascade delete milk records: %w", err)
	}
	return nil
}

// InsertMilkRecord inserts a record document. Recency ordering is resolved
// at query time through the timestamp sort.
func (s *Store) InsertMilkRecord(ctx context.Context, record models.MilkRecord) error {
	if _, err := s.coll(milkRecordsColl).InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert milk record: %w", err)
	}
	return nil
}

// ListMilkRecords returns every record for the owner, newest first.
func (s *Store) ListMilkRecords(ctx context.Context, ownerID string) ([]models.MilkRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := s.coll(milkRecordsColl).Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list milk records: %w", err)
	}
	records := []models.MilkRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode milk records: %w", err)
	}
	return records, nil
}

// DeleteMilkRecord removes a record by id.
func (s *Store) DeleteMilkRecord(ctx context.Context, ownerID, id string) error {
	res, err := s.coll(milkRecordsColl).DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return fmt.Errorf("delete milk record: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetPaymentStatus updates only the payment_status field of one record.
func (s *Store) SetPaymentStatus(ctx context.Context, ownerID, id string, status models.PaymentStatus) error {
	res, err := s.coll(milkRecordsColl).UpdateOne(ctx,
		bson.M{"_id": id, "owner_id": ownerID},
		bson.M{"$set": bson.M{"payment_status": status}})
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
