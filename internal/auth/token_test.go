package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vacancydesk/backend/internal/models"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testUser() *models.User {
	return &models.User{
		ID:    "u-1",
		Name:  "Asha",
		Email: "asha@example.com",
		Role:  models.RoleAdmin,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	codec := NewTokenCodec(testSecret)

	token, expiry, err := codec.Sign(testUser())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if until := time.Until(expiry); until < TokenTTL-time.Minute || until > TokenTTL {
		t.Errorf("expiry %v not ~%v out", until, TokenTTL)
	}

	claims, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "u-1" || claims.Email != "asha@example.com" || claims.Role != models.RoleAdmin {
		t.Errorf("claims = %+v", claims)
	}
}

func TestTokenTamperedSignature(t *testing.T) {
	codec := NewTokenCodec(testSecret)
	token, _, err := codec.Sign(testUser())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	parts := strings.Split(token, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))
	tampered := strings.Join(parts, ".")

	if _, err := codec.Verify(tampered); !errors.Is(err, models.ErrInvalidToken) {
		t.Errorf("Verify(tampered) = %v, want ErrInvalidToken", err)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	token, _, err := NewTokenCodec(testSecret).Sign(testUser())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	other := NewTokenCodec("ffffffffffffffffffffffffffffffff")
	if _, err := other.Verify(token); !errors.Is(err, models.ErrInvalidToken) {
		t.Errorf("Verify with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestTokenExpiryIndistinguishableFromTampering(t *testing.T) {
	codec := NewTokenCodec(testSecret)
	token, _, err := codec.Sign(testUser())
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	// Verify from 8 days in the future: signature is fine, expiry is not.
	codec.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	expiredErr := func() error {
		_, err := codec.Verify(token)
		return err
	}()

	codec.now = time.Now
	parts := strings.Split(token, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))
	tamperedErr := func() error {
		_, err := codec.Verify(strings.Join(parts, "."))
		return err
	}()

	if !errors.Is(expiredErr, models.ErrInvalidToken) || !errors.Is(tamperedErr, models.ErrInvalidToken) {
		t.Fatalf("expired = %v, tampered = %v, want ErrInvalidToken for both", expiredErr, tamperedErr)
	}
	if expiredErr.Error() != tamperedErr.Error() {
		t.Errorf("expired and tampered errors differ: %q vs %q", expiredErr, tamperedErr)
	}
}

func TestTokenMalformed(t *testing.T) {
	codec := NewTokenCodec(testSecret)
	for _, token := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		if _, err := codec.Verify(token); !errors.Is(err, models.ErrInvalidToken) {
			t.Errorf("Verify(%q) = %v, want ErrInvalidToken", token, err)
		}
	}
}
