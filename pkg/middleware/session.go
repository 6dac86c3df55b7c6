package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"beet-chat/backend/internal/models"
)

const (
	sessionCookieName = "beet_session"
	sessionCookieAge  = 30 * 24 * 60 * 60 // 30 days, seconds

	// Set by the authentication collaborator in front of this service.
	// This core does not verify credentials itself.
	userHeader    = "X-User-ID"
	premiumHeader = "X-Premium-User"
)

// OwnerIdentity resolves who a request's conversations belong to: a durable
// user id when the upstream auth layer vouches for one, otherwise an
// anonymous session id from a cookie (minted on first contact).
//
// It stores "ownerKey" (string) and "premiumUser" (bool) in the gin context.
func OwnerIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		var owner models.OwnerKey

		if userID := c.GetHeader(userHeader); userID != "" {
			owner = models.UserOwner(userID)
		} else {
			sessionID, err := c.Cookie(sessionCookieName)
			if err != nil || sessionID == "" {
				sessionID = uuid.New().String()
				c.SetCookie(sessionCookieName, sessionID, sessionCookieAge, "/", "", false, true)
			}
			owner = models.SessionOwner(sessionID)
		}

		c.Set("ownerKey", owner.String())
		c.Set("premiumUser", c.GetHeader(premiumHeader) == "true")

		c.Next()
	}
}

// OwnerFrom returns the owner key resolved by OwnerIdentity.
func OwnerFrom(c *gin.Context) models.OwnerKey {
	return models.OwnerKey(c.GetString("ownerKey"))
}

// IsPremium reports whether the request carries a premium entitlement.
func IsPremium(c *gin.Context) bool {
	return c.GetBool("premiumUser")
}
