package utils

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTokenRoundtrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	userID := primitive.NewObjectID().Hex()
	token, err := GenerateToken(userID, "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != userID || claims.Email != "alice@example.com" || claims.Name != "Alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken(primitive.NewObjectID().Hex(), "alice@example.com", "Alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateToken(token + "x"); err == nil {
		t.Fatal("tampered token should be rejected")
	}
	if _, err := ValidateToken("not-a-token"); err == nil {
		t.Fatal("garbage should be rejected")
	}

	t.Setenv("JWT_SECRET", "other-secret")
	if _, err := ValidateToken(token); err == nil {
		t.Fatal("token signed under a different secret should be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hashed == "hunter22" {
		t.Fatal("password stored in plaintext")
	}
	if !CheckPassword(hashed, "hunter22") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hashed, "hunter23") {
		t.Fatal("wrong password accepted")
	}
}
