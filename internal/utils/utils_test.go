package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignJWTRoundTrip(t *testing.T) {
	tok, err := SignJWT("secret", "user-1", "worker", 60)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parsed, err := jwt.ParseWithClaims(tok, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse: %v", err)
	}

	claims := parsed.Claims.(*Claims)
	if claims.UserID != "user-1" || claims.Role != "worker" {
		t.Fatalf("claims = %s/%s", claims.UserID, claims.Role)
	}
}

func TestSignJWTWrongSecret(t *testing.T) {
	tok, err := SignJWT("secret", "user-1", "client", 60)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	_, err = jwt.ParseWithClaims(tok, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	})
	if err == nil {
		t.Fatalf("token accepted with wrong secret")
	}
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hashed == "hunter22" {
		t.Fatalf("password stored in plain text")
	}
	if !CheckPassword(hashed, "hunter22") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hashed, "hunter23") {
		t.Fatalf("wrong password accepted")
	}
}
