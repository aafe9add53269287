package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vacancydesk/backend/internal/auth"
	"github.com/vacancydesk/backend/internal/models"
)

// fakeVerifier returns fixed claims for one known token and rejects
// everything else.
type fakeVerifier struct {
	token  string
	claims *models.Claims
}

func (f *fakeVerifier) Verify(token string) (*models.Claims, error) {
	if token == f.token {
		return f.claims, nil
	}
	return nil, models.ErrInvalidToken
}

func adminClaims() *models.Claims {
	return &models.Claims{
		Role:             models.RoleAdmin,
		Email:            "boss@example.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u-1"},
	}
}

func gateRequest(t *testing.T, verifier TokenVerifier, role, cookieValue string) (*httptest.ResponseRecorder, *models.Claims) {
	t.Helper()
	var seen *models.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookieValue != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: cookieValue})
	}
	rec := httptest.NewRecorder()
	RequireAuth(verifier, role)(next).ServeHTTP(rec, req)
	return rec, seen
}

func TestRequireAuthNoToken(t *testing.T) {
	verifier := &fakeVerifier{token: "good", claims: adminClaims()}
	rec, _ := gateRequest(t, verifier, models.RoleUser, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAuthBadTokenSameAsMissing(t *testing.T) {
	verifier := &fakeVerifier{token: "good", claims: adminClaims()}
	missing, _ := gateRequest(t, verifier, models.RoleUser, "")
	bad, _ := gateRequest(t, verifier, models.RoleUser, "forged")

	if bad.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", bad.Code)
	}
	if missing.Body.String() != bad.Body.String() {
		t.Errorf("missing and invalid token responses differ: %q vs %q",
			missing.Body.String(), bad.Body.String())
	}
}

func TestRequireAuthInsufficientRole(t *testing.T) {
	claims := adminClaims()
	claims.Role = models.RoleUser
	verifier := &fakeVerifier{token: "good", claims: claims}

	rec, _ := gateRequest(t, verifier, models.RoleAdmin, "good")
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRequireAuthInjectsClaims(t *testing.T) {
	verifier := &fakeVerifier{token: "good", claims: adminClaims()}

	rec, seen := gateRequest(t, verifier, models.RoleAdmin, "good")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if seen == nil || seen.Subject != "u-1" || seen.Role != models.RoleAdmin {
		t.Errorf("claims in context = %+v", seen)
	}
}

func TestRequireAuthAdminPassesUserGate(t *testing.T) {
	verifier := &fakeVerifier{token: "good", claims: adminClaims()}
	rec, _ := gateRequest(t, verifier, models.RoleUser, "good")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestClaimsFromContextWithoutGate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := ClaimsFromContext(req.Context()); got != nil {
		t.Errorf("claims = %+v, want nil", got)
	}
}
