package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/starter-webapi/internal/domain/entity"
	"github.com/oksasatya/starter-webapi/internal/domain/repository"
)

const uniqueViolation = "23505"

const selectUser = `
	SELECT u.id, u.email_address, u.hashed_password, u.first_name, u.last_name,
	       u.birthday, u.gender, u.role, u.phone, u.created_at, u.updated_at,
	       a.address_line, a.address_supplement, a.city, a.state_province, a.zip_code, a.country
	FROM users u
	JOIN user_addresses a ON a.user_id = u.id
`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) CreateUser(ctx context.Context, u *entity.User) (*entity.User, error) {
	if err := u.Validate(); err != nil {
		return nil, err
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (id, email_address, hashed_password, first_name, last_name,
			                   birthday, gender, role, phone)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, u.ID, u.EmailAddress, u.HashedPassword, u.FirstName, u.LastName,
			entity.DateOf(u.Birthday), string(u.Gender), string(u.Role), u.Phone,
		)
		if err != nil {
			return err
		}
		a := u.Address
		_, err = tx.Exec(ctx, `
			INSERT INTO user_addresses (user_id, address_line, address_supplement, city,
			                            state_province, zip_code, country)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, u.ID, a.AddressLine, a.AddressSupplement, a.City, a.StateProvince, a.ZipCode, a.Country)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return r.ReadUser(ctx, u.ID)
}

func (r *UserRepository) ReadUser(ctx context.Context, id string) (*entity.User, error) {
	if !validID(id) {
		return nil, entity.ErrUserNotFound
	}
	u, err := scanUser(r.pool.QueryRow(ctx, selectUser+` WHERE u.id = $1`, id))
	if err != nil {
		return nil, wrapRead(err, "query user by id")
	}
	return u, nil
}

func (r *UserRepository) ReadUserByCredentials(ctx context.Context, email, hashedPassword string) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx,
		selectUser+` WHERE u.email_address = $1 AND u.hashed_password = $2`, email, hashedPassword))
	if err != nil {
		return nil, wrapRead(err, "query user by credentials")
	}
	return u, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, id string, u *entity.User) (*entity.User, error) {
	if !validID(id) {
		return nil, entity.ErrUserNotFound
	}
	next := *u
	next.ID = id
	if err := next.Validate(); err != nil {
		return nil, err
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		res, err := tx.Exec(ctx, `
			UPDATE users
			SET email_address = $1, hashed_password = $2, first_name = $3, last_name = $4,
			    birthday = $5, gender = $6, role = $7, phone = $8, updated_at = $9
			WHERE id = $10
		`, next.EmailAddress, next.HashedPassword, next.FirstName, next.LastName,
			entity.DateOf(next.Birthday), string(next.Gender), string(next.Role), next.Phone,
			time.Now().UTC(), id)
		if err != nil {
			return err
		}
		if res.RowsAffected() == 0 {
			return entity.ErrUserNotFound
		}
		a := next.Address
		_, err = tx.Exec(ctx, `
			UPDATE user_addresses
			SET address_line = $1, address_supplement = $2, city = $3, state_province = $4,
			    zip_code = $5, country = $6
			WHERE user_id = $7
		`, a.AddressLine, a.AddressSupplement, a.City, a.StateProvince, a.ZipCode, a.Country, id)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrUserNotFound):
			return nil, err
		case isUniqueViolation(err):
			return nil, entity.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return r.ReadUser(ctx, id)
}

func (r *UserRepository) DeleteUser(ctx context.Context, id string) error {
	if !validID(id) {
		return entity.ErrUserNotFound
	}
	res, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.RowsAffected() == 0 {
		return entity.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var gender, role string
	a := &u.Address
	if err := row.Scan(&u.ID, &u.EmailAddress, &u.HashedPassword, &u.FirstName, &u.LastName,
		&u.Birthday, &gender, &role, &u.Phone, &u.CreatedAt, &u.UpdatedAt,
		&a.AddressLine, &a.AddressSupplement, &a.City, &a.StateProvince, &a.ZipCode, &a.Country); err != nil {
		return nil, err
	}
	u.Gender = entity.Gender(gender)
	u.Role = entity.Role(role)
	u.Birthday = entity.DateOf(u.Birthday)
	return u, nil
}

func wrapRead(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return entity.ErrUserNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// validID reports whether id can exist in a uuid column at all.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var _ repository.UserRepository = (*UserRepository)(nil)
