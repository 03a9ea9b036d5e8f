package echoapi

import (
	"context"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/littleoaks/backend/core"
	"github.com/littleoaks/backend/core/account"
	identitysvc "github.com/littleoaks/backend/services/identity"
)

var (
	// appJWTConfig is the JWT auth middleware config; finalized by
	// initJWTConfig once the configuration is known.
	appJWTConfig = middleware.JWTConfig{
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "principalToken",
		Claims:        new(Claims),
	}

	appName            string
	jwtExpirationDelta time.Duration
)

func initJWTConfig(conf *core.Config) {
	appJWTConfig.SigningKey = []byte(conf.SecretKey)
	appName = conf.AppName
	jwtExpirationDelta = conf.Server.JWTExpirationDelta
}

// Claims represents the authorization claims transmitted via a JWT. The role
// is resolved once at sign-in and rides in the token for the session's
// lifetime.
type Claims struct {
	jwt.StandardClaims
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func (c Claims) role() account.Role { return account.Role(c.Role) }

func GetPrincipalClaims(p core.Principal, role account.Role) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    appName,
			Subject:   p.ID,
			ExpiresAt: now.Add(jwtExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Email: p.Email,
		Role:  string(role),
	}
}

// authenticate signs the credentials into a fresh session and resolves the
// principal's role exactly once for that session.
func authenticate(ctx context.Context, email, password string, deps *Deps) (*Claims, error) {
	sess := deps.Identity.NewSession()
	p, err := sess.SignIn(ctx, email, password)
	if err != nil {
		if errors.Cause(err) == identitysvc.ErrInvalidCredentials {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "signing in")
	}
	role := deps.AccountSvc.ResolveRole(ctx, p)
	return GetPrincipalClaims(p, role), nil
}

// GenerateToken generates a signed JWT token string representing the Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func contextPrincipal(ctx echo.Context) (core.Principal, Claims, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return core.Principal{}, Claims{}, err
	}
	return core.Principal{ID: claims.Subject, Email: claims.Email}, claims, nil
}
