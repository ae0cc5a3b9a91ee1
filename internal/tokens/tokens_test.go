package tokens

import (
	"context"
	"testing"
	"time"

	"github.com/folio/portfolio/backend/go-services/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAdminToken_ValidAndClaims(t *testing.T) {
	secret := "test-secret-32-bytes-should-be-long-enough"
	a := &models.Admin{Sub: "admin-123", Name: "Test Admin", Email: "admin@example.com"}
	tokenStr, err := GenerateAdminToken(secret, a, 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}

	tok, err := NewHMACVerifier(secret).Verify(context.Background(), tokenStr)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		t.Fatalf("Claims error: %v", err)
	}
	if claims["sub"] != a.Sub {
		t.Fatalf("unexpected sub claim: got=%v want=%v", claims["sub"], a.Sub)
	}
	if claims["email"] != a.Email {
		t.Fatalf("unexpected email claim: got=%v want=%v", claims["email"], a.Email)
	}
}

func TestGenerateAdminToken_EmptySecret(t *testing.T) {
	if _, err := GenerateAdminToken("", &models.Admin{Sub: "x"}, time.Minute); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestVerify_Expired(t *testing.T) {
	secret := "another-secret-32-bytes-longgggg"
	tokenStr, err := GenerateAdminToken(secret, &models.Admin{Sub: "u2"}, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}
	if _, err := NewHMACVerifier(secret).Verify(context.Background(), tokenStr); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestVerify_WrongSecretFails(t *testing.T) {
	tokenStr, err := GenerateAdminToken("secret-one-32-bytes-xxxxxxxxxxxxxxxx", &models.Admin{Sub: "u3"}, 2*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAdminToken error: %v", err)
	}
	if _, err := NewHMACVerifier("different-secret-xxxxxxxxxxxxxxxx").Verify(context.Background(), tokenStr); err == nil {
		t.Fatalf("expected verify to fail with wrong secret")
	}
}

func TestVerify_RejectsForeignIssuer(t *testing.T) {
	secret := "issuer-secret-32-bytes-xxxxxxxxxxxx"
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "someone-else",
		"sub": "u4",
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	raw, err := jt.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewHMACVerifier(secret).Verify(context.Background(), raw); err == nil {
		t.Fatalf("expected verify to fail for foreign issuer")
	}
}

func TestVerify_Malformed(t *testing.T) {
	if _, err := NewHMACVerifier("x").Verify(context.Background(), "not.a.jwt"); err == nil {
		t.Fatalf("expected verify to fail for malformed token")
	}
}
