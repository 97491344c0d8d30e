package middleware

import (
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/gin-gonic/gin"

	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/http/response"
	"github.com/yungbote/streamhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
	"github.com/yungbote/streamhub-backend/internal/services"
)

const (
	accessTokenCookie = "accessToken"

	ensuredMaxEntries = 100_000
	ensuredTTL        = 15 * time.Minute
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
	userService services.UserService
	// ensured maps a principal id to the claims its profile row was last
	// synced from. Entries expire so profile edits made elsewhere converge.
	ensured *ristretto.Cache[string, ctxutil.Principal]
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService, userService services.UserService) *AuthMiddleware {
	am := &AuthMiddleware{
		log:         log.With("middleware", "AuthMiddleware"),
		authService: authService,
		userService: userService,
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, ctxutil.Principal]{
		NumCounters: ensuredMaxEntries * 10,
		MaxCost:     ensuredMaxEntries,
		BufferItems: 64,
	})
	if err != nil {
		// Without the cache every request re-syncs the profile row.
		am.log.Warn("principal cache disabled", "error", err)
	} else {
		am.ensured = cache
	}
	return am
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "AuthMiddleware.RequireAuth"
		tokenString := extractToken(c)
		if tokenString == "" {
			response.RespondError(c, errs.New(errs.Unauthenticated, op, "Unauthorized request"))
			return
		}
		ctx := c.Request.Context()
		p, err := am.authService.VerifyToken(ctx, tokenString)
		if err != nil {
			response.RespondError(c, err)
			return
		}
		if err := am.ensure(dbctx.Context{Ctx: ctx}, p); err != nil {
			am.log.Error("ensure principal failed", "principal_id", p.ID, "error", err)
			response.RespondError(c, err)
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithPrincipal(ctx, p))
		c.Set("principal_id", p.ID.String())
		c.Next()
	}
}

func (am *AuthMiddleware) ensure(dbc dbctx.Context, p *ctxutil.Principal) error {
	if am.userService == nil {
		return nil
	}
	key := p.ID.String()
	if am.ensured != nil {
		if seen, ok := am.ensured.Get(key); ok && seen == *p {
			return nil
		}
	}
	if _, err := am.userService.EnsurePrincipal(dbc, p); err != nil {
		return err
	}
	if am.ensured != nil {
		am.ensured.SetWithTTL(key, *p, 1, ensuredTTL)
	}
	return nil
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	if cookie, err := c.Cookie(accessTokenCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}
