package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/starter-webapi/internal/domain/entity"
	"github.com/oksasatya/starter-webapi/internal/domain/repository"
)

// Timestamps are stored as text so reads do not depend on driver time parsing.
const timeLayout = time.RFC3339Nano

const selectUser = `
	SELECT u.id, u.email_address, u.hashed_password, u.first_name, u.last_name,
	       u.birthday, u.gender, u.role, u.phone, u.created_at, u.updated_at,
	       a.address_line, a.address_supplement, a.city, a.state_province, a.zip_code, a.country
	FROM users u
	JOIN user_addresses a ON a.user_id = u.id
`

// UserRepository implements repository.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, u *entity.User) (*entity.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC().Format(timeLayout)
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, email_address, hashed_password, first_name, last_name,
			                   birthday, gender, role, phone, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.EmailAddress, u.HashedPassword, u.FirstName, u.LastName,
			entity.DateOf(u.Birthday).Format(entity.DateLayout), string(u.Gender), string(u.Role), u.Phone, now, now,
		); err != nil {
			return err
		}
		a := u.Address
		_, err := tx.ExecContext(ctx, `
			INSERT INTO user_addresses (user_id, address_line, address_supplement, city,
			                            state_province, zip_code, country)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			u.ID, a.AddressLine, a.AddressSupplement, a.City, a.StateProvince, a.ZipCode, a.Country)
		return err
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, entity.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return r.ReadUser(ctx, u.ID)
}

func (r *UserRepository) ReadUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, selectUser+` WHERE u.id = ?`, id))
	if err != nil {
		return nil, wrapRead(err, "query user by id")
	}
	return u, nil
}

func (r *UserRepository) ReadUserByCredentials(ctx context.Context, email, hashedPassword string) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		selectUser+` WHERE u.email_address = ? AND u.hashed_password = ?`, email, hashedPassword))
	if err != nil {
		return nil, wrapRead(err, "query user by credentials")
	}
	return u, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, id string, u *entity.User) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, entity.ErrUserNotFound
	}
	next := *u
	next.ID = id
	if err := next.Validate(); err != nil {
		return nil, err
	}
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE users
			SET email_address = ?, hashed_password = ?, first_name = ?, last_name = ?,
			    birthday = ?, gender = ?, role = ?, phone = ?, updated_at = ?
			WHERE id = ?`,
			next.EmailAddress, next.HashedPassword, next.FirstName, next.LastName,
			entity.DateOf(next.Birthday).Format(entity.DateLayout), string(next.Gender), string(next.Role), next.Phone,
			time.Now().UTC().Format(timeLayout), id)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return entity.ErrUserNotFound
		}
		a := next.Address
		_, err = tx.ExecContext(ctx, `
			UPDATE user_addresses
			SET address_line = ?, address_supplement = ?, city = ?, state_province = ?,
			    zip_code = ?, country = ?
			WHERE user_id = ?`,
			a.AddressLine, a.AddressSupplement, a.City, a.StateProvince, a.ZipCode, a.Country, id)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrUserNotFound):
			return nil, err
		case isUniqueConstraintError(err):
			return nil, entity.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return r.ReadUser(ctx, id)
}

func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_addresses WHERE user_id = ?`, id); err != nil {
			return fmt.Errorf("delete address: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return entity.ErrUserNotFound
		}
		return nil
	})
}

func (r *UserRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func scanUser(row *sql.Row) (*entity.User, error) {
	u := &entity.User{}
	var birthday, gender, role, createdAt, updatedAt string
	a := &u.Address
	if err := row.Scan(&u.ID, &u.EmailAddress, &u.HashedPassword, &u.FirstName, &u.LastName,
		&birthday, &gender, &role, &u.Phone, &createdAt, &updatedAt,
		&a.AddressLine, &a.AddressSupplement, &a.City, &a.StateProvince, &a.ZipCode, &a.Country); err != nil {
		return nil, err
	}
	var err error
	if u.Birthday, err = time.Parse(entity.DateLayout, birthday); err != nil {
		return nil, fmt.Errorf("parse birthday: %w", err)
	}
	if u.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if u.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	u.Gender = entity.Gender(gender)
	u.Role = entity.Role(role)
	return u, nil
}

func wrapRead(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrUserNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isUniqueConstraintError checks if the error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

var _ repository.UserRepository = (*UserRepository)(nil)
