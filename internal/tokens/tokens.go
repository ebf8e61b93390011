package tokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/marketpulse/marketpulse/backend/go-services/internal/models"
	"github.com/marketpulse/marketpulse/backend/go-services/pkg/middleware"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the access-token payload the web client reads.
type Claims struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	FullName   string `json:"full_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	Picture    string `json:"picture,omitempty"`
	Username   string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// ClaimsFor builds the token payload for a user.
func ClaimsFor(u *models.User) Claims {
	return Claims{
		ID:         u.ID.Hex(),
		Email:      u.Email,
		Name:       u.DisplayName(),
		FullName:   u.Name,
		FamilyName: u.FamilyName,
		Picture:    u.Picture,
		Username:   u.Username,
	}
}

// Issuer signs and verifies HS256 access tokens.
type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret), now: time.Now}
}

// GenerateAccessToken creates a signed JWT access token for the user
func (i *Issuer) GenerateAccessToken(u *models.User, ttl time.Duration) (string, error) {
	c := ClaimsFor(u)
	now := i.now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   c.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
}

// Parse validates signature, algorithm and expiry.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	var c Claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return &c, nil
}

// Remaining returns how long the token stays valid, zero if it has no expiry.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}

// Verify satisfies middleware.Verifier.
func (i *Issuer) Verify(_ context.Context, raw string) (middleware.Token, error) {
	c, err := i.Parse(raw)
	if err != nil {
		return nil, err
	}
	return verified{c}, nil
}

type verified struct{ c *Claims }

// Claims copies the verified payload into v (a *Claims or any JSON target).
func (v verified) Claims(dst interface{}) error {
	if p, ok := dst.(*Claims); ok {
		*p = *v.c
		return nil
	}
	b, err := json.Marshal(v.c)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
