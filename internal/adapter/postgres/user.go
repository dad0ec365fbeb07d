package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hamza-safwan/mini-ride-booking/internal/domain/models"
	"github.com/hamza-safwan/mini-ride-booking/internal/domain/types"
	"github.com/hamza-safwan/mini-ride-booking/pkg/postgres"
)

type UserRepo struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepo {
	return &UserRepo{
		db: db,
	}
}

const userColumns = `id, name, COALESCE(email, ''), phone, role, COALESCE(availability, ''), vehicle, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var (
		u            models.User
		role         string
		availability string
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &role, &availability, &u.Vehicle, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = types.UserRole(role)
	u.Availability = types.Availability(availability)
	return &u, nil
}

func (r *UserRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "UserRepo.GetUser"

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1;`

	u, err := scanUser(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// Upsert inserts user or replaces its profile. Passengers never carry an availability.
func (r *UserRepo) Upsert(ctx context.Context, user *models.User) error {
	const op = "UserRepo.Upsert"

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == types.RolePassenger {
		user.Availability = ""
	}

	query := `
		INSERT INTO users (id, name, email, phone, role, availability, vehicle)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    email = EXCLUDED.email,
		    phone = EXCLUDED.phone,
		    role = EXCLUDED.role,
		    availability = EXCLUDED.availability,
		    vehicle = EXCLUDED.vehicle,
		    updated_at = now()
		RETURNING created_at, updated_at;`

	err := conn(ctx, r.db).QueryRow(ctx, query,
		user.ID, user.Name, user.Email, user.Phone, user.Role.String(), string(user.Availability), user.Vehicle,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("%s: %w: email already used", op, types.ErrConflict)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *UserRepo) SetAvailability(ctx context.Context, id uuid.UUID, availability types.Availability) (*models.User, error) {
	const op = "UserRepo.SetAvailability"

	query := `
		UPDATE users SET availability = $2, updated_at = now()
		WHERE id = $1 AND role = 'driver'
		RETURNING ` + userColumns + `;`

	u, err := scanUser(conn(ctx, r.db).QueryRow(ctx, query, id, string(availability)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
