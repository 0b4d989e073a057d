package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iwa-store/user-service/internal/domain/entity"
	"github.com/iwa-store/user-service/internal/domain/repository"
)

const uniqueViolation = "23505"

// UserRepository stores each user as a single row: identity columns plus
// JSONB columns holding the owned sub-collections. There are no partial
// updates; Save rewrites the full document guarded by the version column.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Version = 1

	addresses, wishlist, cart, orders, err := marshalCollections(u)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, salt, phone, addresses, wishlist, cart, orders, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, u.ID, u.Email, u.PasswordHash, u.Salt, u.Phone, addresses, wishlist, cart, orders, u.Version, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail matches case-insensitively, mirroring the unique index.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "lower(email)", strings.ToLower(email))
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*entity.User, error) {
	u := &entity.User{}
	var addresses, wishlist, cart, orders []byte

	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, salt, phone, addresses, wishlist, cart, orders, version, created_at, updated_at
		FROM users
		WHERE `+column+` = $1
	`, value)

	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Salt, &u.Phone,
		&addresses, &wishlist, &cart, &orders, &u.Version, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	if err := unmarshalCollections(u, addresses, wishlist, cart, orders); err != nil {
		return nil, err
	}
	return u, nil
}

// Save re-writes the whole document. The version predicate rejects saves of a
// stale snapshot; callers reload and retry on ErrVersionConflict.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	addresses, wishlist, cart, orders, err := marshalCollections(u)
	if err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, salt = $3, phone = $4,
		    addresses = $5, wishlist = $6, cart = $7, orders = $8,
		    version = version + 1, updated_at = $9
		WHERE id = $10 AND version = $11
	`, u.Email, u.PasswordHash, u.Salt, u.Phone, addresses, wishlist, cart, orders, u.UpdatedAt, u.ID, u.Version)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	if res.RowsAffected() == 0 {
		// Distinguish a missing row from a lost race.
		var exists bool
		if qErr := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, u.ID).Scan(&exists); qErr != nil {
			return fmt.Errorf("save user: %w", qErr)
		}
		if !exists {
			return repository.ErrNotFound
		}
		return repository.ErrVersionConflict
	}

	u.Version++
	return nil
}

func marshalCollections(u *entity.User) (addresses, wishlist, cart, orders []byte, err error) {
	if addresses, err = json.Marshal(emptyIfNil(u.Addresses)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal addresses: %w", err)
	}
	if wishlist, err = json.Marshal(emptyIfNil(u.Wishlist)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal wishlist: %w", err)
	}
	if cart, err = json.Marshal(emptyIfNil(u.Cart)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal cart: %w", err)
	}
	if orders, err = json.Marshal(emptyIfNil(u.Orders)); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal orders: %w", err)
	}
	return addresses, wishlist, cart, orders, nil
}

func unmarshalCollections(u *entity.User, addresses, wishlist, cart, orders []byte) error {
	if err := json.Unmarshal(addresses, &u.Addresses); err != nil {
		return fmt.Errorf("unmarshal addresses: %w", err)
	}
	if err := json.Unmarshal(wishlist, &u.Wishlist); err != nil {
		return fmt.Errorf("unmarshal wishlist: %w", err)
	}
	if err := json.Unmarshal(cart, &u.Cart); err != nil {
		return fmt.Errorf("unmarshal cart: %w", err)
	}
	if err := json.Unmarshal(orders, &u.Orders); err != nil {
		return fmt.Errorf("unmarshal orders: %w", err)
	}
	return nil
}

func emptyIfNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

var _ repository.UserRepository = (*UserRepository)(nil)
