package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims represents the payload of a staff bearer token.
type JWTClaims struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Actor returns the identity recorded on audit entries.
func (c *JWTClaims) Actor() string {
	if c == nil {
		return DefaultActor
	}
	if c.Name != "" {
		return c.Name
	}
	if c.Subject != "" {
		return c.Subject
	}
	if c.Email != "" {
		return c.Email
	}
	return DefaultActor
}
