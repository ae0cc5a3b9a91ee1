package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/folio/portfolio/backend/go-services/internal/models"
	"github.com/folio/portfolio/backend/go-services/pkg/middleware"
	"github.com/golang-jwt/jwt/v5"
)

const issuer = "portfolio-admin"

// GenerateAdminToken creates a signed HS256 admin token for a.
func GenerateAdminToken(secret string, a *models.Admin, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("admin token secret is empty")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   issuer,
		"sub":   a.Sub,
		"name":  a.Name,
		"email": a.Email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(secret))
}

type claimsToken jwt.MapClaims

func (t claimsToken) Claims(v interface{}) error {
	out, ok := v.(*map[string]interface{})
	if !ok {
		return fmt.Errorf("unsupported claims target %T", v)
	}
	*out = map[string]interface{}(t)
	return nil
}

// HMACVerifier validates tokens issued by GenerateAdminToken.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

func (v *HMACVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	return claimsToken(claims), nil
}
