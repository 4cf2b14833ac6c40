package entity

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire and storage format of a birthday
const DateLayout = "2006-01-02"

// User is the aggregate root for user domain
// HashedPassword is hashed upstream; the plaintext never reaches this type.
type User struct {
	ID             string
	EmailAddress   string
	HashedPassword string
	FirstName      string
	LastName       string
	Birthday       time.Time
	Gender         Gender
	Role           Role
	Phone          string
	Address        Address
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Address is owned by User and has no identity of its own
type Address struct {
	AddressLine       string
	AddressSupplement string
	City              string
	StateProvince     string
	ZipCode           string
	Country           string
}

// NewAddress builds an Address and checks its required fields.
func NewAddress(line, city, state, zip, country string) (Address, error) {
	a := Address{
		AddressLine:   line,
		City:          city,
		StateProvince: state,
		ZipCode:       zip,
		Country:       country,
	}
	return a, a.Validate()
}

func (a Address) Validate() error {
	switch {
	case strings.TrimSpace(a.AddressLine) == "":
		return invalid("address line is required")
	case strings.TrimSpace(a.City) == "":
		return invalid("city is required")
	case strings.TrimSpace(a.ZipCode) == "":
		return invalid("zip code is required")
	case strings.TrimSpace(a.Country) == "":
		return invalid("country is required")
	}
	return nil
}

// NewUser builds a User and enforces the aggregate invariants.
func NewUser(id, email, hashedPassword, firstName, lastName string, birthday time.Time,
	gender Gender, role Role, phone string, address Address) (*User, error) {
	u := &User{
		ID:             id,
		EmailAddress:   email,
		HashedPassword: hashedPassword,
		FirstName:      firstName,
		LastName:       lastName,
		Birthday:       DateOf(birthday),
		Gender:         gender,
		Role:           role,
		Phone:          phone,
		Address:        address,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks every invariant NewUser enforces. Repositories call it
// before writing so an update cannot bypass construction rules.
func (u *User) Validate() error {
	if _, err := uuid.Parse(u.ID); err != nil {
		return invalid("id must be a uuid")
	}
	// bare addresses only; "Name <a@b.io>" parses but can never log in
	if addr, err := mail.ParseAddress(u.EmailAddress); err != nil || addr.Address != u.EmailAddress {
		return invalid("email address is invalid")
	}
	if u.HashedPassword == "" {
		return invalid("hashed password is required")
	}
	if strings.TrimSpace(u.FirstName) == "" || strings.TrimSpace(u.LastName) == "" {
		return invalid("first and last name are required")
	}
	if !u.Gender.Valid() {
		return invalid(fmt.Sprintf("unknown gender %q", u.Gender))
	}
	if !u.Role.Valid() {
		return invalid(fmt.Sprintf("unknown role %q", u.Role))
	}
	return u.Address.Validate()
}

// DateOf drops the clock part of t, keeping the calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidUser, msg)
}
