package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

const SessionCookie = "writer_session"

type SessionConfig struct {
	HMACSecret   []byte
	CookieName   string
	SecureCookie bool
	TTL          time.Duration
}

// SessionManager issues the signed cookie that names a client's session.
// The token subject is the session id, a ULID.
type SessionManager struct{ cfg SessionConfig }

func NewSessionManager(secret []byte, secure bool, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionManager{cfg: SessionConfig{
		HMACSecret:   secret,
		CookieName:   SessionCookie,
		SecureCookie: secure,
		TTL:          ttl,
	}}
}

// Resolve returns the session id carried by r, minting a new session and
// cookie when the request has none or an invalid one.
func (m *SessionManager) Resolve(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(m.cfg.CookieName); err == nil {
		if id, err := m.parse(c.Value); err == nil {
			return id, nil
		}
	}
	id := ulid.Make().String()
	if err := m.mint(w, id); err != nil {
		return "", err
	}
	return id, nil
}

// Lookup is Resolve without minting: it reports an existing session only.
func (m *SessionManager) Lookup(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.cfg.CookieName)
	if err != nil {
		return "", false
	}
	id, err := m.parse(c.Value)
	return id, err == nil
}

func (m *SessionManager) mint(w http.ResponseWriter, id string) error {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TTL)),
		Subject:   id,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.HMACSecret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cfg.CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *SessionManager) parse(tok string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return m.cfg.HMACSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid {
		return "", errors.New("invalid session token")
	}
	if _, err := ulid.ParseStrict(claims.Subject); err != nil {
		return "", errors.New("invalid session id")
	}
	return claims.Subject, nil
}
