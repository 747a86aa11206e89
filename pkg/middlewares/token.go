package middlewares

import (
	"strings"

	t_token "chat_backend_service/pkg/token"

	"github.com/gofiber/fiber/v2"
)

const (
	//QueryToken token in query name
	QueryToken = "auth"

	//CookieToken token in cookie name
	CookieToken = "auth_token"

	//HeaderSessionID session id header name
	HeaderSessionID = "X-Session-ID"

	//TokenUserID get user id from token, set c.locals name
	TokenUserID = "UserID"
	//TokenSessionID get session id from token, set c.locals name
	TokenSessionID = "SessionID"
)

// JWTMiddleware validates JWT in the query, cookie or Authorization header
func JWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Query(QueryToken)

		if tokenStr == "" {
			tokenStr = c.Cookies(CookieToken)
		}

		if tokenStr == "" {
			auth := c.Get(fiber.HeaderAuthorization)
			if strings.HasPrefix(auth, "Bearer ") {
				tokenStr = auth[7:]
			}
		}

		if tokenStr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing token",
			})
		}

		claims, err := t_token.ParseAccessJWT(tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals(TokenUserID, claims.UserID)

		// header value wins so a client can address one of its sessions
		sessionID := c.Get(HeaderSessionID)
		if sessionID == "" {
			sessionID = claims.SessionID
		}
		c.Locals(TokenSessionID, sessionID)

		return c.Next()
	}
}
