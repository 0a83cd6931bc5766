package dairy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/milkbook/milkbook/internal/domain/models"
	"github.com/milkbook/milkbook/internal/repository/storage"
)

// ErrValidation indicates input rejected before it reached the store.
var ErrValidation = errors.New("validation failed")

// MilkRecordInput carries the operator-entered fields of a new record.
// PricePerLiter may be nil, in which case the configured default applies.
type MilkRecordInput struct {
	Quantity      float64
	Fat           float64
	SNF           float64
	Degree        float64
	PricePerLiter *float64
	Session       models.MilkSession
}

// Service owns the customer and milk record collections. Every operation
// takes the owning operator's id explicitly; there is no ambient session
// state at this layer.
type Service struct {
	store        storage.Store
	defaultPrice float64
	loc          *time.Location
	now          func() time.Time
	logger       *zap.Logger
}

// NewService wires a new dairy service instance.
func NewService(store storage.Store, defaultPrice float64, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:        store,
		defaultPrice: defaultPrice,
		loc:          loc,
		now:          time.Now,
		logger:       logger,
	}
}

// AddCustomer registers a customer under the operator's namespace.
func (s *Service) AddCustomer(ctx context.Context, ownerID, name, contactNumber string) (models.Customer, error) {
	name = strings.TrimSpace(name)
	contactNumber = strings.TrimSpace(contactNumber)
	if name == "" {
		return models.Customer{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if !validContactNumber(contactNumber) {
		return models.Customer{}, fmt.Errorf("%w: contact number must be 7-15 digits", ErrValidation)
	}

	customer := models.Customer{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		Name:          name,
		ContactNumber: contactNumber,
	}
	if err := s.store.AddCustomer(ctx, customer); err != nil {
		return models.Customer{}, fmt.Errorf("add customer: %w", err)
	}

	s.logger.Info("customer added", zap.String("customer_id", customer.ID))
	return customer, nil
}

// GetCustomer fetches one customer.
func (s *Service) GetCustomer(ctx context.Context, ownerID, id string) (models.Customer, error) {
	return s.store.FindCustomer(ctx, ownerID, id)
}

// ListCustomers returns the operator's customers.
func (s *Service) ListCustomers(ctx context.Context, ownerID string) ([]models.Customer, error) {
	return s.store.ListCustomers(ctx, ownerID)
}

// DeleteCustomer removes the customer and all of its milk records.
func (s *Service) DeleteCustomer(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteCustomer(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info("customer deleted with records", zap.String("customer_id", id))
	return nil
}

// AddMilkRecord validates the input, derives the total price once, stamps
// the current time and stores the record with payment pending.
func (s *Service) AddMilkRecord(ctx context.Context, ownerID, customerID string, input MilkRecordInput) (models.MilkRecord, error) {
	if err := s.validateRecordInput(input); err != nil {
		return models.MilkRecord{}, err
	}

	// The customer must exist; records never reference a missing customer.
	if _, err := s.store.FindCustomer(ctx, ownerID, customerID); err != nil {
		return models.MilkRecord{}, err
	}

	price := s.defaultPrice
	if input.PricePerLiter != nil {
		price = *input.PricePerLiter
	}

	record := models.MilkRecord{
		ID:            uuid.NewString(),
		OwnerID:       ownerID,
		CustomerID:    customerID,
		Quantity:      input.Quantity,
		Fat:           input.Fat,
		SNF:           input.SNF,
		Degree:        input.Degree,
		PricePerLiter: price,
		TotalPrice:    input.Quantity * price,
		Timestamp:     s.now().In(s.loc),
		Session:       input.Session,
		PaymentStatus: models.PaymentPending,
	}

	if err := s.store.InsertMilkRecord(ctx, record); err != nil {
		return models.MilkRecord{}, fmt.Errorf("insert milk record: %w", err)
	}

	s.logger.Info("milk record added",
		zap.String("customer_id", customerID),
		zap.Float64("quantity", record.Quantity),
		zap.String("session", string(record.Session)))
	return record, nil
}

// DeleteMilkRecord removes a record by id.
func (s *Service) DeleteMilkRecord(ctx context.Context, ownerID, id string) error {
	return s.store.DeleteMilkRecord(ctx, ownerID, id)
}

// SetPaymentStatus flips a record's settlement state. Nothing else mutates.
func (s *Service) SetPaymentStatus(ctx context.Context, ownerID, id string, status models.PaymentStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown payment status %q", ErrValidation, status)
	}
	return s.store.SetPaymentStatus(ctx, ownerID, id, status)
}

// RecordsByCustomer returns the customer's records sorted newest first.
func (s *Service) RecordsByCustomer(ctx context.Context, ownerID, customerID string) ([]models.MilkRecord, error) {
	records, err := s.store.ListMilkRecords(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.MilkRecord, 0, len(records))
	for _, r := range records {
		if r.CustomerID == customerID {
			filtered = append(filtered, r)
		}
	}
	sortByTimestampDesc(filtered)
	return filtered, nil
}

// LastNRecordsByCustomer returns the most recent n of the customer's records.
func (s *Service) LastNRecordsByCustomer(ctx context.Context, ownerID, customerID string, n int) ([]models.MilkRecord, error) {
	records, err := s.RecordsByCustomer(ctx, ownerID, customerID)
	if err != nil {
		return nil, err
	}
	if n < len(records) {
		records = records[:n]
	}
	return records, nil
}

// RecordsByDate returns every record stamped on the same calendar day as
// date in the service timezone, newest first.
func (s *Service) RecordsByDate(ctx context.Context, ownerID string, date time.Time) ([]models.MilkRecord, error) {
	records, err := s.store.ListMilkRecords(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	y, m, d := date.In(s.loc).Date()
	filtered := make([]models.MilkRecord, 0, len(records))
	for _, r := range records {
		ry, rm, rd := r.Timestamp.In(s.loc).Date()
		if ry == y && rm == m && rd == d {
			filtered = append(filtered, r)
		}
	}
	sortByTimestampDesc(filtered)
	return filtered, nil
}

func (s *Service) validateRecordInput(input MilkRecordInput) error {
	switch {
	case input.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", ErrValidation)
	case input.Fat < 0 || input.Fat > 100:
		return fmt.Errorf("%w: fat must be between 0 and 100", ErrValidation)
	case input.SNF < 0:
		return fmt.Errorf("%w: snf must not be negative", ErrValidation)
	case input.PricePerLiter != nil && *input.PricePerLiter < 0:
		return fmt.Errorf("%w: price per liter must not be negative", ErrValidation)
	case !input.Session.Valid():
		return fmt.Errorf("%w: session must be morning or evening", ErrValidation)
	}
	return nil
}

func sortByTimestampDesc(records []models.MilkRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
}

func validContactNumber(number string) bool {
	if len(number) < 7 || len(number) > 15 {
		return false
	}
	for i, r := range number {
		if i == 0 && r == '+' {
			continue
		}
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// IsNotFound reports whether err is the storage miss sentinel. Handlers use
// it to map lookups to 404s without importing the storage package.
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
