package postgres

import (
	"context"
	"errors"

	"github.com/bkbimal250/chat-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository is a read-only view over the user store. The chat
// service only resolves identities; account management lives elsewhere.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Get(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.QueryRow(ctx, `
		SELECT id, email, COALESCE(first_name, ''), COALESCE(last_name, ''),
		       COALESCE(user_type, ''), is_active
		FROM users WHERE id=$1
	`, id).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.UserType, &u.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
