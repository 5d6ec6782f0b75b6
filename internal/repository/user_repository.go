package repository

import (
	"context"
	"errors"
	"fmt"

	"civicdesk/internal/model"
	"civicdesk/internal/repository/base"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateEmail is returned when a registration collides with an
// existing account.
var ErrDuplicateEmail = errors.New("email already registered")

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (public_id, full_name, email, password_hash, role, office_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		user.PublicID,
		user.FullName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.OfficeID,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	query := `
		SELECT id, public_id, full_name, email, password_hash, role, office_id, telegram_chat_id, created_at
		FROM users ` + where

	var user model.User
	err := r.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.PublicID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.OfficeID,
		&user.TelegramChatID,
		&user.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// LinkTelegram attaches a chat id so decision notifications reach the user.
func (r *UserRepository) LinkTelegram(ctx context.Context, userID, chatID int64) error {
	affected, err := r.ExecAffected(ctx, `UPDATE users SET telegram_chat_id = $1 WHERE id = $2`, chatID, userID)
	if err != nil {
		return fmt.Errorf("link telegram: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}
