package models

import "github.com/golang-jwt/jwt/v5"

// Role constants for actors of the F&I subsystem.
const (
	RoleAdmin          = "ADMIN"
	RoleFinanceManager = "FINANCE_MANAGER"
	RoleSeller         = "SELLER"
)

// JWTClaims carries the authenticated actor identity. The F&I core only
// requires an opaque actor id plus the tenant scope; role gates a few
// reviewer-only endpoints.
type JWTClaims struct {
	UserID   string `json:"uid"`
	TenantID string `json:"tid"`
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// CanReview reports whether the actor may move requests through review states.
func (c *JWTClaims) CanReview() bool {
	return c != nil && (c.Role == RoleAdmin || c.Role == RoleFinanceManager)
}
