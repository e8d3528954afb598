package dto

// CreateFIClientRequest registers a client with optional deal context.
type CreateFIClientRequest struct {
	FirstName    string   `json:"first_name" validate:"required"`
	LastName     string   `json:"last_name" validate:"required"`
	Email        string   `json:"email" validate:"required,email"`
	Phone        string   `json:"phone,omitempty"`
	VehiclePrice *float64 `json:"vehicle_price,omitempty" validate:"omitempty,gt=0"`
	DownPayment  *float64 `json:"down_payment,omitempty" validate:"omitempty,gte=0"`
	TradeInValue *float64 `json:"trade_in_value,omitempty" validate:"omitempty,gte=0"`
}

// UpdateFIClientRequest applies an explicit client update.
type UpdateFIClientRequest struct {
	FirstName    *string  `json:"first_name,omitempty"`
	LastName     *string  `json:"last_name,omitempty"`
	Email        *string  `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string  `json:"phone,omitempty"`
	VehiclePrice *float64 `json:"vehicle_price,omitempty" validate:"omitempty,gt=0"`
	DownPayment  *float64 `json:"down_payment,omitempty" validate:"omitempty,gte=0"`
	TradeInValue *float64 `json:"trade_in_value,omitempty" validate:"omitempty,gte=0"`
}
