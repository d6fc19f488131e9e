/**
 * @description
 * This file sets up the HTTP router for the back-office service. It defines
 * the API endpoints, associates them with their corresponding handlers, and
 * applies middleware for logging, recovery, CORS and session authentication.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware for the back-office console.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/crestbank/backoffice-service/internal/app"
)

// NewRouter creates a new Chi router and registers the back-office routes.
func NewRouter(h *Handlers, service *app.Service, signingKey string, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Post("/auth/login", h.LoginHandler)

	// Everything below requires a live session token.
	r.Group(func(r chi.Router) {
		r.Use(SessionAuthMiddleware(signingKey, service))

		r.Post("/auth/logout", h.LogoutHandler)
		r.Get("/auth/me", h.CurrentOperatorHandler)
		r.Post("/auth/password", h.ChangePasswordHandler)

		r.Post("/customers", h.CreateCustomerHandler)
		r.Post("/customers/search", h.SearchCustomersHandler)
		r.Get("/customers/{customerID}", h.GetCustomerHandler)
		r.Patch("/customers/{customerID}", h.UpdateCustomerHandler)
		r.Delete("/customers/{customerID}", h.DeleteCustomerHandler)

		r.Post("/accounts", h.OpenAccountHandler)
		r.Get("/accounts/number/generate", h.GenerateAccountNumberHandler)
		r.Post("/accounts/search", h.SearchAccountsHandler)
		r.Get("/accounts/{accountID}", h.GetAccountHandler)
		r.Get("/accounts/number/{accountNumber}", h.GetAccountByNumberHandler)
		r.Patch("/accounts/{accountID}", h.UpdateAccountHandler)
		r.Delete("/accounts/{accountID}", h.CloseAccountHandler)

		r.Post("/accounts/deposit", h.DepositHandler)
		r.Post("/accounts/withdraw", h.WithdrawHandler)
		r.Post("/accounts/transfer", h.TransferHandler)

		r.Post("/operators", h.CreateOperatorHandler)
		r.Get("/operators/{operatorID}", h.GetOperatorHandler)
		r.Patch("/operators/{operatorID}", h.UpdateOperatorHandler)

		r.Get("/reports/interest", h.InterestReportHandler)
		r.Get("/reports/balance", h.BalanceReportHandler)
		r.Get("/reports/overdraft", h.OverdraftReportHandler)
		r.Get("/reports/customers", h.CustomerReportHandler)
	})

	return r
}
