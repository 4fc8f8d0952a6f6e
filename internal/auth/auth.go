package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"stockroom/m/domain"
	"stockroom/m/internal/database"
	"stockroom/m/internal/session"
)

var (
	ErrIncorrectUsername = errors.New("incorrect username")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrUsernameTaken     = errors.New("username already exists")
)

// Verify checks username and password against the users table. The username
// is looked up first, then the password is compared with its bcrypt hash.
// On success sess is cleared and set to the matched user; on failure sess is
// left untouched. Store errors are returned as-is, never as a credential
// failure.
func Verify(ctx context.Context, q database.Queryer, sess *session.Session, username, password string) (*domain.User, error) {
	var user domain.User
	err := q.GetContext(ctx, &user, q.Rebind(`SELECT id, username, password FROM users WHERE username = ?`), username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIncorrectUsername
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrIncorrectPassword
	}

	sess.Set(user)
	user.Password = ""
	return &user, nil
}

// HashPassword returns the bcrypt hash stored for a password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CreateUser provisions a user with a hashed password.
func CreateUser(ctx context.Context, q database.Queryer, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}
	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	var id int64
	err = q.QueryRowxContext(ctx, q.Rebind(`INSERT INTO users (username, password) VALUES (?, ?) RETURNING id`), username, hashed).Scan(&id)
	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key") {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return &domain.User{ID: id, Username: username}, nil
}
