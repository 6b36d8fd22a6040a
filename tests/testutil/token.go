package testutil

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

// signingKey signs test tokens. The client never verifies signatures.
var signingKey = []byte("mailterm-test-signing-key-0123456789")

// Token returns a signed JWT carrying claims.
func Token(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

// UserToken returns a token for a user with the given id and email.
func UserToken(t *testing.T, id, email string) string {
	t.Helper()
	return Token(t, jwt.MapClaims{"id": id, "email": email})
}
