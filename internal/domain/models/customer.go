package models

// Customer is a dairy farmer the operator collects milk from.
type Customer struct {
	ID            string `bson:"_id" json:"id"`
	OwnerID       string `bson:"owner_id" json:"-"`
	Name          string `bson:"name" json:"name"`
	ContactNumber string `bson:"contact_number" json:"contactNumber"`
}
