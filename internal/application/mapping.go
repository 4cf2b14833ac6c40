package application

import (
	"fmt"
	"time"

	"github.com/oksasatya/starter-webapi/internal/domain/entity"
)

func ToUserDto(u *entity.User) UserDto {
	return UserDto{
		ID:           u.ID,
		EmailAddress: u.EmailAddress,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Birthday:     u.Birthday.Format(entity.DateLayout),
		Gender:       string(u.Gender),
		Role:         string(u.Role),
		Phone:        u.Phone,
		Address:      ToUserAddressDto(u.Address),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func ToUserAddressDto(a entity.Address) UserAddressDto {
	return UserAddressDto{
		AddressLine:       a.AddressLine,
		AddressSupplement: a.AddressSupplement,
		City:              a.City,
		StateProvince:     a.StateProvince,
		ZipCode:           a.ZipCode,
		Country:           a.Country,
	}
}

// ToUser copies d into a new entity.User. HashedPassword is left empty;
// the DTO never carries it.
func ToUser(d UserDto) (*entity.User, error) {
	bday, err := time.Parse(entity.DateLayout, d.Birthday)
	if err != nil {
		return nil, fmt.Errorf("%w: birthday must be %s", entity.ErrInvalidUser, entity.DateLayout)
	}
	return &entity.User{
		ID:           d.ID,
		EmailAddress: d.EmailAddress,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Birthday:     bday,
		Gender:       entity.Gender(d.Gender),
		Role:         entity.Role(d.Role),
		Phone:        d.Phone,
		Address:      ToAddress(d.Address),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

func ToAddress(d UserAddressDto) entity.Address {
	return entity.Address{
		AddressLine:       d.AddressLine,
		AddressSupplement: d.AddressSupplement,
		City:              d.City,
		StateProvince:     d.StateProvince,
		ZipCode:           d.ZipCode,
		Country:           d.Country,
	}
}
