package auth

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketflow/ticketflow/internal/config"
	"github.com/ticketflow/ticketflow/internal/domain"
	apperrors "github.com/ticketflow/ticketflow/pkg/util"
)

const principalKey = "auth_principal"

// TokenCookie is the cookie carrying the bearer token. The cookie takes
// precedence over the Authorization header.
const TokenCookie = "token"

// Principal represents the authenticated caller, derived freshly from
// the verified token on every request.
type Principal struct {
	UserID string
	Email  string
	Role   domain.UserRole
}

// Gate is the request-level access gate. It attaches cross-origin
// headers, short-circuits preflights, and verifies the bearer token
// before a request reaches the service layer.
type Gate struct {
	tokens *TokenManager
	cors   config.CORSConfig
}

// NewGate constructs the gate.
func NewGate(tokens *TokenManager, cors config.CORSConfig) *Gate {
	return &Gate{tokens: tokens, cors: cors}
}

// CORS attaches permissive cross-origin headers and answers preflights
// with no body. Registered ahead of every route, public ones included.
func (g *Gate) CORS(c *fiber.Ctx) error {
	c.Set("Access-Control-Allow-Origin", g.cors.AllowOrigin)
	c.Set("Access-Control-Allow-Credentials", "true")
	c.Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
	c.Set("Access-Control-Allow-Headers", "Authorization,Content-Type")

	if c.Method() == fiber.MethodOptions {
		// Not SendStatus, which would fill the empty body with "OK".
		return c.Status(http.StatusOK).Send(nil)
	}
	return c.Next()
}

// Authenticate enforces a verified token on protected routes. Missing,
// malformed, badly-signed and expired tokens all get the same generic
// 401 so nothing about the credential leaks.
func (g *Gate) Authenticate(c *fiber.Ctx) error {
	token := ExtractToken(c)
	if token == "" {
		return apperrors.NewUnauthorized("authentication required")
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(principalKey, &Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   claims.Role,
	})
	return c.Next()
}

// RequireRole guards operations needing a specific role. Runs after
// Authenticate.
func RequireRole(role domain.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Role != role {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// ExtractToken pulls the bearer token from the token cookie, falling
// back to the Authorization header.
func ExtractToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(TokenCookie); cookie != "" {
		return cookie
	}
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
