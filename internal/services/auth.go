package services

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

// JWTClaims are issued by the external identity provider. Only HS256 tokens
// are accepted; the subject is the principal id.
type JWTClaims struct {
	Username  string `json:"username,omitempty"`
	FullName  string `json:"fullName,omitempty"`
	AvatarURL string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

type AuthService interface {
	VerifyToken(ctx context.Context, token string) (*ctxutil.Principal, error)
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey []byte
	issuer       string
}

func NewAuthService(log *logger.Logger, jwtSecretKey, issuer string) AuthService {
	return &authService{
		log:          log.With("service", "AuthService"),
		jwtSecretKey: []byte(jwtSecretKey),
		issuer:       strings.TrimSpace(issuer),
	}
}

func (as *authService) VerifyToken(ctx context.Context, token string) (*ctxutil.Principal, error) {
	const op = "AuthService.VerifyToken"
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errs.New(errs.Unauthenticated, op, "missing or invalid token")
	}
	if len(as.jwtSecretKey) == 0 {
		return nil, errs.New(errs.Internal, op, "token verification is not configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if as.issuer != "" {
		opts = append(opts, jwt.WithIssuer(as.issuer))
	}
	parsed, err := jwt.ParseWithClaims(token, &JWTClaims{}, func(t *jwt.Token) (interface{}, error) {
		return as.jwtSecretKey, nil
	}, opts...)
	if err != nil {
		as.log.Debug("token rejected", "error", err)
		return nil, &errs.Error{Code: errs.Unauthenticated, Op: op, Message: "invalid or expired token", Cause: err}
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return nil, errs.New(errs.Unauthenticated, op, "invalid or expired token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return nil, errs.New(errs.Unauthenticated, op, "invalid subject in token")
	}
	return &ctxutil.Principal{
		ID:        id,
		Username:  claims.Username,
		FullName:  claims.FullName,
		AvatarURL: claims.AvatarURL,
	}, nil
}
