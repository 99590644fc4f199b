package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/legacybuilder/backend/core"
	"github.com/legacybuilder/backend/core/student"
)

const (
	contextTokenKey   = "studentToken"
	contextStudentKey = "student"
)

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64  `json:"oriat,omitempty"`
	Name         string `json:"name,omitempty"`
	Email        string `json:"email,omitempty"`
	Plan         string `json:"plan,omitempty"`
	IsVerified   bool   `json:"is_verified,omitempty"`
}

func GetStudentClaims(std student.Student, conf *core.Config, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   std.ID,
			Audience:  "Legacy Builder",
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Name:         std.Name,
		Email:        std.Email,
		Plan:         std.Plan,
		IsVerified:   std.IsVerified,
	}
}

func authenticate(ctx echo.Context, email, pwd string, svc student.Service, conf *core.Config) (*Claims, error) {
	std, err := svc.GetByEmail(ctx.Request().Context(), email)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding student by email")
	}
	if err = std.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if !std.IsVerified {
		// nudge the student with a fresh verification link
		_ = svc.RequestEmailVerification(ctx.Request().Context(), std.Email)
		return nil, errEmailNotVerified
	}
	std, err = svc.UpdateLastLogin(ctx.Request().Context(), std)
	if err != nil {
		return nil, errors.Wrap(err, "setting lastLogin")
	}
	return GetStudentClaims(std, conf), nil
}

// GenerateToken generates a signed JWT token string representing the student Claims.
func GenerateToken(claims *Claims, conf *core.Config) (string, error) {
	method := jwt.GetSigningMethod(middleware.AlgorithmHS256)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextStudent(ctx echo.Context, svc student.Service, clms ...Claims) (student.Student, error) {
	if std, ok := ctx.Get(contextStudentKey).(student.Student); ok {
		return std, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return student.Student{}, errors.Wrap(err, "getting context claims")
		}
	}

	std, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "finding student by ID")
	}
	ctx.Set(contextStudentKey, std)
	return std, nil
}

func refreshToken(ctx echo.Context, svc student.Service, conf *core.Config) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	std, err := getContextStudent(ctx, svc, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context student")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := GetStudentClaims(std, conf, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims, conf)
	return token, errors.Wrap(err, "generating token")
}
