// Package admintoken emite y valida los tokens HS256 que protegen la API de
// administración del bloque.
package admintoken

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin es el rol requerido por los endpoints /admin.
const RoleAdmin = "multilogin:admin"

var (
	ErrMissingSecret = errors.New("admintoken: secret is required")
	ErrInvalidToken  = errors.New("admintoken: invalid token")
)

// Claims son los claims del token de admin.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// IsAdmin reporta si el token trae el rol de admin.
func (c *Claims) IsAdmin() bool {
	return slices.Contains(c.Roles, RoleAdmin)
}

// Issuer firma y verifica tokens con un secreto compartido.
type Issuer struct {
	secret []byte
	iss    string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer crea un Issuer. ttl <= 0 usa 1h.
func NewIssuer(secret, iss string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{secret: []byte(secret), iss: iss, ttl: ttl, now: time.Now}, nil
}

// Issue firma un token para sub con roles.
func (i *Issuer) Issue(sub string, roles ...string) (string, time.Time, error) {
	now := i.now()
	exp := now.Add(i.ttl)
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    i.iss,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("admintoken: sign: %w", err)
	}
	return signed, exp, nil
}

// Verify valida firma, algoritmo, issuer y vencimiento.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	}
	if i.iss != "" {
		opts = append(opts, jwt.WithIssuer(i.iss))
	}

	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
