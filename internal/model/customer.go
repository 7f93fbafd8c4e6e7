package model

import "time"

// Customer represents a guest record as stored in the `customers`
// table.  Customers are created either by public self-service booking
// or inline by staff during manual booking creation.  The email
// address is the immutable identity key; repeated bookings with the
// same email reuse the existing record.
//
// Fields:
//  ID        – primary key identifier.
//  FirstName – given name.
//  LastName  – family name.
//  Email     – unique, lower-cased email address.
//  Phone     – contact phone number.
//  Address   – optional postal address.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Customer struct {
	ID        uint64    // customers.id
	FirstName string    // customers.first_name
	LastName  string    // customers.last_name
	Email     string    // customers.email
	Phone     string    // customers.phone
	Address   *string   // customers.address (nullable)
	CreatedAt time.Time // customers.created_at
	UpdatedAt time.Time // customers.updated_at
}
