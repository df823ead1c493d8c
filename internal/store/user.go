package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fitdesert/fitdesert/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Email, &u.Name, &u.Picture, &u.Role, &u.Phone,
		&u.PasswordHash, &u.MustChangePassword, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, email, name, picture, role, phone, password_hash, must_change_password, created_at`

// NewUser holds the fields for creating a user account. PasswordHash is
// empty for externally authenticated accounts.
type NewUser struct {
	Email              string
	Name               string
	Role               model.Role
	Phone              *string
	Picture            *string
	PasswordHash       string
	MustChangePassword bool
}

func (s *UserStore) Create(ctx context.Context, n NewUser) (*model.User, error) {
	id := newID("user")
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, picture, role, phone, password_hash, must_change_password)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, n.Email, n.Name, n.Picture, n.Role, n.Phone, n.PasswordHash, n.MustChangePassword,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// UpdatePassword replaces the stored hash and clears the
// must-change-password flag.
func (s *UserStore) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, must_change_password = 0 WHERE id = ?`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
