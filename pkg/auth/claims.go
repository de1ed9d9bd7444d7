package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Ramchandran06/E-commerce-backend/pkg/enums"
)

var errMissingUserID = errors.New("token missing user id")

// AccessTokenClaims is the JWT body the storefront and admin console send.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"userId"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Validate runs after the registered claims checks during parsing.
func (c AccessTokenClaims) Validate() error {
	if c.UserID == uuid.Nil {
		return errMissingUserID
	}
	if !c.Role.IsValid() {
		return fmt.Errorf("token carries invalid role %q", c.Role)
	}
	return nil
}

// IsAdmin reports whether the token grants the admin console.
func (c *AccessTokenClaims) IsAdmin() bool {
	return c != nil && c.Role == enums.UserRoleAdmin
}
