package httpkit

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenType marks access tokens so a refresh token can never be
// replayed as one.
const AccessTokenType = "access"

const identityKey = "httpkit.identity"

// AccessClaims is the payload of an admin access token. The auth service
// signs it and AuthRequired verifies it.
type AccessClaims struct {
	Type  string   `json:"type"`
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// NewAccessClaims builds claims for userID valid from issuedAt for ttl.
func NewAccessClaims(userID uuid.UUID, roles []string, issuedAt time.Time, ttl time.Duration) AccessClaims {
	return AccessClaims{
		Type:  AccessTokenType,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
}

// Identity is the authenticated admin behind a request.
type Identity struct {
	UserID uuid.UUID
	Roles  []string
}

func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

func setIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// GetIdentity returns the identity set by AuthRequired. ok is false on
// routes that are not behind it.
func GetIdentity(c *gin.Context) (Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// MustGetIdentity aborts with 401 when the request is anonymous. Callers
// return immediately when ok is false.
func MustGetIdentity(c *gin.Context) (Identity, bool) {
	id, ok := GetIdentity(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
	return id, ok
}
