package application

import "time"

// UserAddressDto mirrors entity.Address on the wire
type UserAddressDto struct {
	AddressLine       string `json:"address_line"`
	AddressSupplement string `json:"address_supplement"`
	City              string `json:"city"`
	StateProvince     string `json:"state_province"`
	ZipCode           string `json:"zip_code"`
	Country           string `json:"country"`
}

// UserDto mirrors entity.User without the password hash.
// Birthday uses entity.DateLayout.
type UserDto struct {
	ID           string         `json:"id"`
	EmailAddress string         `json:"email_address"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	Birthday     string         `json:"birthday"`
	Gender       string         `json:"gender"`
	Role         string         `json:"role"`
	Phone        string         `json:"phone"`
	Address      UserAddressDto `json:"address"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// HashedLoginRequest is a login attempt whose password was hashed by the caller.
type HashedLoginRequest struct {
	EmailAddress   string
	HashedPassword string
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// UserEvent is published on user lifecycle changes.
type UserEvent struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	EventUserRegistered = "user.registered"
	EventUserUpdated    = "user.updated"
	EventUserDeleted    = "user.deleted"
)
