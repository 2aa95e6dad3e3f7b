package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/alumnihub-dev/alumnihub/internal/config"
	"github.com/alumnihub-dev/alumnihub/internal/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{URL: filepath.Join(t.TempDir(), "test.sqlite")},
		Redis:    config.RedisConfig{Address: "localhost:6379"},
		Auth:     config.AuthConfig{JWTSecret: "test-secret"},
		Server:   config.ServerConfig{Port: "0", UploadDir: t.TempDir()},
	}

	srv, err := New(cfg, zerolog.Nop(), "test")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

// registerMember creates an account and returns its token
func registerMember(t *testing.T, srv *Server, email string) (string, AuthResponse) {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/register", "", RegisterRequest{
		Name:           "Test Member",
		Email:          email,
		Password:       "supersecret",
		GraduationYear: 2015,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", rec.Code, rec.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	return resp.Token, resp
}

func TestRegister(t *testing.T) {
	srv := newTestServer(t)

	token, resp := registerMember(t, srv, "jo@example.com")
	if token == "" {
		t.Fatal("expected a token")
	}
	if resp.User == nil {
		t.Fatal("expected a user in the response")
	}
	if resp.User.MembershipStatus != models.MembershipPending {
		t.Fatalf("new members start pending, got %q", resp.User.MembershipStatus)
	}
	if resp.User.MemberNumber == "" {
		t.Fatal("expected a member number")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv := newTestServer(t)
	registerMember(t, srv, "jo@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/register", "", RegisterRequest{
		Name:           "Other",
		Email:          "jo@example.com",
		Password:       "supersecret",
		GraduationYear: 2016,
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if got := errResp.Errors["email"]; len(got) != 1 || got[0] != "The email has already been taken." {
		t.Fatalf("unexpected field errors: %v", errResp.Errors)
	}
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name  string
		body  RegisterRequest
		field string
	}{
		{
			name:  "missing email",
			body:  RegisterRequest{Name: "Jo", Password: "supersecret", GraduationYear: 2015},
			field: "email",
		},
		{
			name:  "short password",
			body:  RegisterRequest{Name: "Jo", Email: "a@b.com", Password: "short", GraduationYear: 2015},
			field: "password",
		},
		{
			name:  "graduation year out of range",
			body:  RegisterRequest{Name: "Jo", Email: "a@b.com", Password: "supersecret", GraduationYear: 1850},
			field: "graduation_year",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/register", "", tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}

			var errResp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("failed to decode error: %v", err)
			}
			if _, ok := errResp.Errors[tt.field]; !ok {
				t.Fatalf("expected an error for %q, got %v", tt.field, errResp.Errors)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	registerMember(t, srv, "jo@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/login", "", LoginRequest{
		Email:    "jo@example.com",
		Password: "supersecret",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if resp.Token == "" || resp.User == nil {
		t.Fatalf("incomplete login response: %+v", resp)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := newTestServer(t)
	registerMember(t, srv, "jo@example.com")

	tests := []struct {
		name string
		body LoginRequest
	}{
		{"wrong password", LoginRequest{Email: "jo@example.com", Password: "wrongwrong"}},
		{"unknown email", LoginRequest{Email: "nobody@example.com", Password: "supersecret"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/login", "", tt.body)
			// 401 is reserved for rejected tokens; bad logins are 422
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}

			var errResp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("failed to decode error: %v", err)
			}
			if errResp.Message != "Invalid credentials" {
				t.Fatalf("unexpected message %q", errResp.Message)
			}
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/user"},
		{http.MethodPut, "/api/user"},
		{http.MethodPost, "/api/logout"},
		{http.MethodGet, "/api/payments"},
		{http.MethodPost, "/api/payments"},
	}

	for _, p := range paths {
		rec := doJSON(t, srv, p.method, p.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", p.method, p.path, rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/user", "not-a-jwt", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", rec.Code)
	}
}

func TestGetCurrentUser(t *testing.T) {
	srv := newTestServer(t)
	token, reg := registerMember(t, srv, "jo@example.com")

	rec := doJSON(t, srv, http.MethodGet, "/api/user", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var user UserDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("failed to decode user: %v", err)
	}
	if user.ID != reg.User.ID || user.Email != "jo@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestUpdateProfile(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerMember(t, srv, "jo@example.com")

	newName := "Jo Renamed"
	rec := doJSON(t, srv, http.MethodPut, "/api/user", token, UpdateProfileRequest{Name: &newName})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var user UserDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("failed to decode user: %v", err)
	}
	if user.Name != "Jo Renamed" {
		t.Fatalf("name not updated: %q", user.Name)
	}
	// Untouched fields stay as registered
	if user.GraduationYear != 2015 {
		t.Fatalf("graduation year should be unchanged, got %d", user.GraduationYear)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerMember(t, srv, "jo@example.com")

	rec := doJSON(t, srv, http.MethodPost, "/api/logout", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout failed: %d: %s", rec.Code, rec.Body.String())
	}

	// The same token must be rejected from now on
	rec = doJSON(t, srv, http.MethodGet, "/api/user", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("revoked token should yield 401, got %d", rec.Code)
	}
}

func submitPayment(t *testing.T, srv *Server, token, amount, purpose string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	writer.WriteField("amount", amount)
	writer.WriteField("purpose", purpose)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/payments", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestSubmitPayment(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerMember(t, srv, "jo@example.com")

	rec := submitPayment(t, srv, token, "150.00", "membership_dues")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var payment PaymentDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &payment); err != nil {
		t.Fatalf("failed to decode payment: %v", err)
	}
	if payment.AmountCents != 15000 {
		t.Fatalf("expected 15000 cents, got %d", payment.AmountCents)
	}
	if payment.Status != models.PaymentPending {
		t.Fatalf("new payments are pending, got %q", payment.Status)
	}
	if payment.Reference == "" {
		t.Fatal("expected a payment reference")
	}
}

func TestSubmitPaymentValidation(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerMember(t, srv, "jo@example.com")

	tests := []struct {
		name    string
		amount  string
		purpose string
		field   string
	}{
		{"missing amount", "", "membership_dues", "amount"},
		{"zero amount", "0", "membership_dues", "amount"},
		{"negative amount", "-5", "membership_dues", "amount"},
		{"too many decimals", "10.123", "membership_dues", "amount"},
		{"missing purpose", "10.00", "", "purpose"},
		{"unknown purpose", "10.00", "bribe", "purpose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := submitPayment(t, srv, token, tt.amount, tt.purpose)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}

			var errResp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
				t.Fatalf("failed to decode error: %v", err)
			}
			if _, ok := errResp.Errors[tt.field]; !ok {
				t.Fatalf("expected an error for %q, got %v", tt.field, errResp.Errors)
			}
		})
	}
}

func TestListPaymentsScopedToUser(t *testing.T) {
	srv := newTestServer(t)
	tokenA, _ := registerMember(t, srv, "a@example.com")
	tokenB, _ := registerMember(t, srv, "b@example.com")

	if rec := submitPayment(t, srv, tokenA, "100.00", "membership_dues"); rec.Code != http.StatusCreated {
		t.Fatalf("submit failed: %d", rec.Code)
	}
	if rec := submitPayment(t, srv, tokenB, "25.00", "donation"); rec.Code != http.StatusCreated {
		t.Fatalf("submit failed: %d", rec.Code)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/payments", tokenA, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var payments []PaymentDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &payments); err != nil {
		t.Fatalf("failed to decode payments: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("expected only own payments, got %d", len(payments))
	}
	if payments[0].AmountCents != 10000 {
		t.Fatalf("unexpected payment: %+v", payments[0])
	}
}

func TestListPaymentsStatusFilter(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerMember(t, srv, "jo@example.com")

	if rec := submitPayment(t, srv, token, "100.00", "membership_dues"); rec.Code != http.StatusCreated {
		t.Fatalf("submit failed: %d", rec.Code)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/payments?status=confirmed", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payments []PaymentDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &payments); err != nil {
		t.Fatalf("failed to decode payments: %v", err)
	}
	if len(payments) != 0 {
		t.Fatalf("no confirmed payments expected, got %d", len(payments))
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/payments?status=bogus", token, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid filter should yield 422, got %d", rec.Code)
	}
}

func TestGetPaymentNotFound(t *testing.T) {
	srv := newTestServer(t)
	tokenA, _ := registerMember(t, srv, "a@example.com")
	tokenB, _ := registerMember(t, srv, "b@example.com")

	rec := submitPayment(t, srv, tokenA, "100.00", "membership_dues")
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit failed: %d", rec.Code)
	}
	var payment PaymentDetail
	if err := json.Unmarshal(rec.Body.Bytes(), &payment); err != nil {
		t.Fatalf("failed to decode payment: %v", err)
	}

	// Another member's payment looks like it doesn't exist
	recB := doJSON(t, srv, http.MethodGet, "/api/payments/"+payment.ID, tokenB, nil)
	if recB.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign payment, got %d", recB.Code)
	}

	recA := doJSON(t, srv, http.MethodGet, "/api/payments/"+payment.ID, tokenA, nil)
	if recA.Code != http.StatusOK {
		t.Fatalf("owner should see the payment, got %d", recA.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if body["status"] != "online" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

func TestParseAmountCents(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{"150.00", 15000, false},
		{"150", 15000, false},
		{"0.5", 50, false},
		{"0.05", 5, false},
		{"1.5", 150, false},
		{"", 0, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{"-5", 0, true},
		{"+5", 0, true},
		{"1.-5", 0, true},
		{"1.+5", 0, true},
		{"1.234", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("amount %q", tt.raw), func(t *testing.T) {
			got, err := parseAmountCents(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}
