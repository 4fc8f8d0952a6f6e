package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"stockroom/m/domain"
)

// CookieName is the name of the cookie carrying the signed session.
const CookieName = "stockroom_session"

// Session is the caller's identity for the current request. The zero value
// is an anonymous session.
type Session struct {
	UserID   int64
	Username string
	// ID identifies the signed token last issued for or read from this
	// session. Empty until the session is saved.
	ID string
}

// Authenticated reports whether a user is logged in.
func (s *Session) Authenticated() bool {
	return s != nil && s.UserID != 0
}

// Clear drops every value held by the session.
func (s *Session) Clear() {
	*s = Session{}
}

// Set replaces the session with the given user's identity.
func (s *Session) Set(u domain.User) {
	s.Clear()
	s.UserID = u.ID
	s.Username = u.Username
}

type claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager reads and writes sessions as HS256-signed cookies.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager returns a Manager signing with secret. Sessions expire after ttl.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Load returns the session carried by r. Missing, tampered or expired
// cookies, and tokens without a well-formed id, yield an anonymous session.
func (m *Manager) Load(r *http.Request) *Session {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return &Session{}
	}
	sess, err := m.decode(c.Value)
	if err != nil {
		return &Session{}
	}
	return sess
}

// Save writes s back to the client under a fresh token id, recorded in s.ID.
// An anonymous session expires the cookie.
func (m *Manager) Save(w http.ResponseWriter, s *Session) error {
	if !s.Authenticated() {
		http.SetCookie(w, m.cookie("", -1, time.Unix(0, 0)))
		return nil
	}
	id := uuid.NewString()
	token, expires, err := m.encode(s, id)
	if err != nil {
		return err
	}
	http.SetCookie(w, m.cookie(token, int(m.ttl/time.Second), expires))
	s.ID = id
	return nil
}

func (m *Manager) cookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (m *Manager) encode(s *Session, id string) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	c := claims{
		UserID:   s.UserID,
		Username: s.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

func (m *Manager) decode(raw string) (*Session, error) {
	token, err := jwt.ParseWithClaims(raw, &claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}
	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.UserID == 0 {
		return nil, errors.New("invalid session claims")
	}
	if _, err := uuid.Parse(c.ID); err != nil {
		return nil, fmt.Errorf("invalid session id: %w", err)
	}
	return &Session{UserID: c.UserID, Username: c.Username, ID: c.ID}, nil
}
