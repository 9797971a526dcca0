package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"knowledgehub-backend/internal/domains/account"
	"knowledgehub-backend/internal/infrastructure/database"
	"knowledgehub-backend/internal/shared/response"
	"knowledgehub-backend/pkg/jwt"
)

// Context keys set by Auth for downstream handlers.
const (
	ContextAccountID = "accountID"
	ContextAccount   = "account"
)

// Auth verifies the bearer token and enforces the single-active-session
// policy: a token that no longer matches the account's stored active
// token is rejected as stale, even when its signature and expiry are
// still valid.
func Auth(tokens *jwt.Manager, sessions account.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract token from "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}
		token := parts[1]

		// 2. Verify signature and expiry
		claims, err := tokens.ValidateToken(token)
		if err != nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		accountID, err := uuid.Parse(claims.AccountID)
		if err != nil {
			response.Unauthorized(c, "invalid account id in token")
			c.Abort()
			return
		}

		// 3. Session guard: exact match against the stored active token
		acct, err := sessions.ValidateSession(c.Request.Context(), accountID, token)
		if err != nil {
			switch {
			case errors.Is(err, account.ErrStaleSession):
				response.StaleSession(c)
			case errors.Is(err, account.ErrUnauthenticated):
				response.Unauthorized(c, "account no longer exists")
			case errors.Is(err, database.ErrStoreUnavailable):
				response.StoreUnavailable(c)
			default:
				response.InternalServerError(c, "session validation failed")
			}
			c.Abort()
			return
		}

		c.Set(ContextAccountID, accountID)
		c.Set(ContextAccount, acct)

		c.Next()
	}
}

// AccountID returns the authenticated account id set by Auth.
func AccountID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextAccountID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
