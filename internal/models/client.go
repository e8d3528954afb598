package models

import "time"

// FIClient is the identity and deal-context snapshot a financing request
// refers to. Vehicle pricing fields are optional until a deal takes shape.
type FIClient struct {
	ID           string     `db:"id" json:"id"`
	TenantID     string     `db:"tenant_id" json:"tenant_id"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Email        string     `db:"email" json:"email"`
	Phone        string     `db:"phone" json:"phone,omitempty"`
	VehiclePrice *float64   `db:"vehicle_price" json:"vehicle_price,omitempty"`
	DownPayment  *float64   `db:"down_payment" json:"down_payment,omitempty"`
	TradeInValue *float64   `db:"trade_in_value" json:"trade_in_value,omitempty"`
	CreatedBy    string     `db:"created_by" json:"created_by"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// FIClientFilter constrains client listing.
type FIClientFilter struct {
	Search   string
	Page     int
	PageSize int
}
