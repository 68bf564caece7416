package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shef088/Hospital-Management-System-sub001/internal/models"
)

var errTokenExpired = errors.New("token expired")

// claims is the subset of the server-issued JWT the client relies on.
// The signature belongs to the server; the client parses without verifying
// and only trusts the server's live 401s for revocation.
type claims struct {
	UserID    string `json:"uid"`
	UserType  string `json:"userType"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	RoleID    string `json:"roleId"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

func parseClaims(token string) (*claims, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if c.ExpiresAt != nil && time.Now().After(c.ExpiresAt.Time) {
		return nil, errTokenExpired
	}
	return &c, nil
}

func (c *claims) user() *models.SessionUser {
	u := &models.SessionUser{
		ID:        c.UserID,
		UserType:  models.UserType(c.UserType),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
	}
	if c.Role != "" {
		u.Role = &models.RoleRef{ID: c.RoleID, Name: c.Role}
	}
	return u
}

func (c *claims) expiresIn() (time.Duration, bool) {
	if c.ExpiresAt == nil {
		return 0, false
	}
	return time.Until(c.ExpiresAt.Time), true
}
