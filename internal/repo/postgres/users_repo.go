package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/usersvc/internal/domain/user"
	"github.com/geocoder89/usersvc/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, password, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User

	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt)

	return u, err
}

// Create checks the email first so the common duplicate case surfaces as
// ErrEmailExists without touching the unique index. The check-then-insert
// pair is not transactional; a concurrent create slipping through is caught
// by the constraint and mapped back to ErrEmailExists.
func (r *UsersRepo) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	_, err := r.GetByEmail(ctx, req.Email)

	if err == nil {
		return user.User{}, user.ErrEmailExists
	}

	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	var u user.User

	err = r.observe("users.create", func() error {
		var scanErr error
		u, scanErr = scanUser(r.pool.QueryRow(
			ctx,
			`INSERT INTO users (name, email, password)
			 VALUES ($1, $2, $3)
			 RETURNING `+userColumns,
			req.Name,
			req.Email,
			req.Password,
		))
		return scanErr
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) FindAll(ctx context.Context) ([]user.User, error) {
	var output []user.User

	err := r.observe("users.find_all", func() error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT `+userColumns+`
			 FROM users
			 ORDER BY created_at DESC`,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		output = make([]user.User, 0)

		for rows.Next() {
			var u user.User

			err = rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.CreatedAt, &u.UpdatedAt)

			if err != nil {
				return err
			}

			output = append(output, u)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_id", func() error {
		var scanErr error
		u, scanErr = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`,
			id,
		))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		var scanErr error
		u, scanErr = scanUser(r.pool.QueryRow(
			ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`,
			email,
		))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

// Update resolves the patch against the stored row: nil fields keep their
// current value. updated_at is refreshed by the table trigger, not here.
func (r *UsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error) {
	existing, err := r.GetByID(ctx, id)

	if err != nil {
		return user.User{}, err
	}

	name := existing.Name
	email := existing.Email
	password := existing.Password

	if req.Name != nil {
		name = *req.Name
	}

	if req.Email != nil {
		email = *req.Email
	}

	if req.Password != nil {
		password = *req.Password
	}

	// only re-check uniqueness when the email actually changes
	if email != existing.Email {
		_, err = r.GetByEmail(ctx, email)

		if err == nil {
			return user.User{}, user.ErrEmailExists
		}

		if !errors.Is(err, user.ErrNotFound) {
			return user.User{}, err
		}
	}

	var u user.User

	err = r.observe("users.update", func() error {
		var scanErr error
		u, scanErr = scanUser(r.pool.QueryRow(
			ctx,
			`UPDATE users
			 SET name = $2,
			     email = $3,
			     password = $4
			 WHERE id = $1
			 RETURNING `+userColumns,
			id,
			name,
			email,
			password,
		))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}

		if IsUniqueViolation(err) {
			return user.User{}, user.ErrEmailExists
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	var affected int64

	err := r.observe("users.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)

		if err != nil {
			return err
		}

		affected = tag.RowsAffected()

		return nil
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return user.ErrNotFound
	}

	return nil
}
