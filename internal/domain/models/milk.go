package models

import "time"

// MilkSession identifies the twice-daily collection window.
type MilkSession string

const (
	SessionMorning MilkSession = "morning"
	SessionEvening MilkSession = "evening"
)

// Valid reports whether the session is one of the two known windows.
func (s MilkSession) Valid() bool {
	return s == SessionMorning || s == SessionEvening
}

// PaymentStatus tracks whether a record has been settled.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Valid reports whether the status is a known settlement state.
func (p PaymentStatus) Valid() bool {
	return p == PaymentPending || p == PaymentPaid
}

// MilkRecord captures a single per-visit milk intake.
//
// TotalPrice is derived once at creation (Quantity * PricePerLiter) and is
// never recomputed; PaymentStatus is the only field that mutates afterwards.
type MilkRecord struct {
	ID            string        `bson:"_id" json:"id"`
	OwnerID       string        `bson:"owner_id" json:"-"`
	CustomerID    string        `bson:"customer_id" json:"customerId"`
	Quantity      float64       `bson:"quantity" json:"quantity"` // liters
	Fat           float64       `bson:"fat" json:"fat"`           // percent
	SNF           float64       `bson:"snf" json:"snf"`           // solids-not-fat
	Degree        float64       `bson:"degree" json:"degree"`     // quality metric
	PricePerLiter float64       `bson:"price_per_liter" json:"pricePerLiter"`
	TotalPrice    float64       `bson:"total_price" json:"totalPrice"`
	Timestamp     time.Time     `bson:"timestamp" json:"timestamp"`
	Session       MilkSession   `bson:"session" json:"session"`
	PaymentStatus PaymentStatus `bson:"payment_status" json:"paymentStatus"`
}
