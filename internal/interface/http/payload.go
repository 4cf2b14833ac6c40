package handlers

import "github.com/oksasatya/starter-webapi/internal/application"

type addressPayload struct {
	AddressLine       string `json:"address_line" binding:"required"`
	AddressSupplement string `json:"address_supplement"`
	City              string `json:"city" binding:"required"`
	StateProvince     string `json:"state_province"`
	ZipCode           string `json:"zip_code" binding:"required"`
	Country           string `json:"country" binding:"required"`
}

func (a addressPayload) dto() application.UserAddressDto {
	return application.UserAddressDto{
		AddressLine:       a.AddressLine,
		AddressSupplement: a.AddressSupplement,
		City:              a.City,
		StateProvince:     a.StateProvince,
		ZipCode:           a.ZipCode,
		Country:           a.Country,
	}
}

type registerRequest struct {
	EmailAddress string         `json:"email_address" binding:"required,email"`
	Password     string         `json:"password" binding:"required,pwd"`
	FirstName    string         `json:"first_name" binding:"required"`
	LastName     string         `json:"last_name" binding:"required"`
	Birthday     string         `json:"birthday" binding:"required,datetime=2006-01-02"`
	Gender       string         `json:"gender" binding:"required,oneof=Male Female Other"`
	Phone        string         `json:"phone" binding:"omitempty,phone"`
	Address      addressPayload `json:"address"`
}

func (r registerRequest) input() application.RegisterInput {
	return application.RegisterInput{
		Password: r.Password,
		User: application.UserDto{
			EmailAddress: r.EmailAddress,
			FirstName:    r.FirstName,
			LastName:     r.LastName,
			Birthday:     r.Birthday,
			Gender:       r.Gender,
			Phone:        r.Phone,
			Address:      r.Address.dto(),
		},
	}
}

// updateUserRequest replaces every mutable field. Password and role are optional.
type updateUserRequest struct {
	EmailAddress string         `json:"email_address" binding:"required,email"`
	Password     string         `json:"password" binding:"omitempty,pwd"`
	FirstName    string         `json:"first_name" binding:"required"`
	LastName     string         `json:"last_name" binding:"required"`
	Birthday     string         `json:"birthday" binding:"required,datetime=2006-01-02"`
	Gender       string         `json:"gender" binding:"required,oneof=Male Female Other"`
	Role         string         `json:"role" binding:"omitempty,oneof=User Admin"`
	Phone        string         `json:"phone" binding:"omitempty,phone"`
	Address      addressPayload `json:"address"`
}

func (r updateUserRequest) input(allowRoleChange bool) application.UpdateInput {
	return application.UpdateInput{
		Password:        r.Password,
		AllowRoleChange: allowRoleChange,
		User: application.UserDto{
			EmailAddress: r.EmailAddress,
			FirstName:    r.FirstName,
			LastName:     r.LastName,
			Birthday:     r.Birthday,
			Gender:       r.Gender,
			Role:         r.Role,
			Phone:        r.Phone,
			Address:      r.Address.dto(),
		},
	}
}

type loginRequest struct {
	EmailAddress string `json:"email_address" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
}
