package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/crestbank/backoffice-service/internal/app"
	"github.com/crestbank/backoffice-service/internal/domain"
	"github.com/crestbank/backoffice-service/internal/store"
)

const testSigningKey = "test-signing-key"

type handlerRepoStub struct {
	store.Repository

	operators []domain.Operator
	account   *domain.BankAccount
	balance   int64
	customers []domain.Customer
}

func (s *handlerRepoStub) FindOperatorsByUsername(ctx context.Context, username string) ([]domain.Operator, error) {
	return s.operators, nil
}

func (s *handlerRepoStub) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.BankAccount, error) {
	if s.account == nil {
		return nil, store.ErrAccountNotFound
	}
	return s.account, nil
}

func (s *handlerRepoStub) Deposit(ctx context.Context, accountID, amount int64) (int64, error) {
	return s.balance, nil
}

func (s *handlerRepoStub) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	return false, nil
}

func (s *handlerRepoStub) FindCustomers(ctx context.Context, filter store.CustomerFilter) ([]domain.Customer, error) {
	if !filter.All && !filter.HasCriteria() {
		return nil, store.ErrNoSearchData
	}
	return s.customers, nil
}

func newTestRouter(t *testing.T, repo store.Repository) (http.Handler, *app.Service) {
	t.Helper()
	service := app.NewService(repo, nil, nil, 0, 0)
	handlers := NewHandlers(service, testSigningKey, time.Hour)
	return NewRouter(handlers, service, testSigningKey, []string{"*"}), service
}

func loginForToken(t *testing.T, router http.Handler, password string) string {
	t.Helper()
	body := `{"username":"teller1","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if !resp.Success || resp.Token == "" {
		t.Fatalf("expected a successful login with a token, got %+v", resp)
	}
	return resp.Token
}

func seededOperator(t *testing.T, password string) domain.Operator {
	t.Helper()
	hash, err := app.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	return domain.Operator{ID: 1, Username: "teller1", PasswordHash: hash, FullRights: true}
}

func TestLoginHandler(t *testing.T) {
	operator := seededOperator(t, "opening-times")
	router, _ := newTestRouter(t, &handlerRepoStub{operators: []domain.Operator{operator}})

	t.Run("valid credentials return token", func(t *testing.T) {
		loginForToken(t, router, "opening-times")
	})

	t.Run("bad credentials are rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"teller1","password":"wrong"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"success":false`) {
			t.Errorf("expected failure envelope, got %s", rec.Body.String())
		}
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"teller1"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t, &handlerRepoStub{})

	req := httptest.NewRequest(http.MethodGet, "/reports/balance", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/reports/balance", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with a garbage token, got %d", rec.Code)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	operator := seededOperator(t, "opening-times")
	router, _ := newTestRouter(t, &handlerRepoStub{operators: []domain.Operator{operator}})
	token := loginForToken(t, router, "opening-times")

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for logout, got %d", rec.Code)
	}

	// The same token must die with the session.
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestDepositHandler(t *testing.T) {
	operator := seededOperator(t, "opening-times")
	repo := &handlerRepoStub{
		operators: []domain.Operator{operator},
		account:   &domain.BankAccount{ID: 4, AccountNumber: "1000000000000001"},
		balance:   12500,
	}
	router, _ := newTestRouter(t, repo)
	token := loginForToken(t, router, "opening-times")

	testCases := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "valid deposit",
			body:       `{"account_number":"1000000000000001","amount":12500}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "negative amount rejected",
			body:       `{"account_number":"1000000000000001","amount":-1}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "short account number rejected",
			body:       `{"account_number":"12345","amount":100}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/accounts/deposit", strings.NewReader(tc.body))
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestSearchCustomersWithoutCriteriaSucceedsWithReason(t *testing.T) {
	operator := seededOperator(t, "opening-times")
	router, _ := newTestRouter(t, &handlerRepoStub{operators: []domain.Operator{operator}})
	token := loginForToken(t, router, "opening-times")

	req := httptest.NewRequest(http.MethodPost, "/customers/search", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success   bool              `json:"success"`
		Message   string            `json:"message"`
		Customers []domain.Customer `json:"customers"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected a success envelope for a criteria-less search")
	}
	if len(resp.Customers) != 0 {
		t.Errorf("expected no customers, got %d", len(resp.Customers))
	}
	if !strings.Contains(resp.Message, "No search criteria") {
		t.Errorf("expected reason in message, got %q", resp.Message)
	}
}

func TestGenerateAccountNumberHandler(t *testing.T) {
	operator := seededOperator(t, "opening-times")
	router, _ := newTestRouter(t, &handlerRepoStub{operators: []domain.Operator{operator}})

	// Without a token the route is closed.
	req := httptest.NewRequest(http.MethodGet, "/accounts/number/generate", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}

	token := loginForToken(t, router, "opening-times")
	req = httptest.NewRequest(http.MethodGet, "/accounts/number/generate", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success       bool   `json:"success"`
		AccountNumber string `json:"account_number"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected a success envelope")
	}
	if len(resp.AccountNumber) != 16 {
		t.Errorf("expected a 16-digit account number, got %q", resp.AccountNumber)
	}
}

func TestHealthEndpointIsPublic(t *testing.T) {
	router, _ := newTestRouter(t, &handlerRepoStub{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
