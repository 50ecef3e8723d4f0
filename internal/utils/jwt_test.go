package utils

import (
	"testing"

	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "test-secret",
		JWTRefreshSecret:          "test-refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 72,
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	cfg := testConfig()
	user := &models.User{Role: models.RolePatient}
	user.ID = "user-1"

	access, refresh, err := GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("GenerateTokens failed: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("expected non-empty tokens")
	}

	claims, err := ValidateToken(access, cfg.JWTSecret)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != models.RolePatient {
		t.Fatalf("unexpected claims: %#v", claims)
	}

	refreshClaims, err := ValidateToken(refresh, cfg.JWTRefreshSecret)
	if err != nil {
		t.Fatalf("refresh token should validate against refresh secret: %v", err)
	}
	if refreshClaims.UserID != "user-1" {
		t.Fatalf("unexpected refresh claims: %#v", refreshClaims)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	cfg := testConfig()
	user := &models.User{Role: models.RoleAdmin}
	user.ID = "user-2"

	access, _, err := GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("GenerateTokens failed: %v", err)
	}

	if _, err := ValidateToken(access, "another-secret"); err == nil {
		t.Fatal("expected validation to fail with the wrong secret")
	}
	if _, err := ValidateToken(access, cfg.JWTRefreshSecret); err == nil {
		t.Fatal("access token must not validate against the refresh secret")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token", "secret"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
