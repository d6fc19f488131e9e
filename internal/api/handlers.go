/**
 * @description
 * This file contains the HTTP handlers for the back-office API. Handlers parse
 * incoming requests, call the application service, and write the JSON envelope
 * `{success, message, ...}` every back-office console screen consumes. They
 * act as the bridge between the web layer and the business logic layer.
 *
 * @dependencies
 * - encoding/json, log, net/http, strconv: Standard Go libraries.
 * - github.com/go-chi/chi/v5: URL parameter extraction.
 * - github.com/go-playground/validator/v10: Request payload validation.
 * - internal/app, internal/domain, internal/store: Service logic, models, custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/crestbank/backoffice-service/internal/app"
	"github.com/crestbank/backoffice-service/internal/domain"
	"github.com/crestbank/backoffice-service/internal/store"
)

var validate = validator.New()

// Handlers holds the application service that handlers will use.
type Handlers struct {
	service    *app.Service
	signingKey string
	sessionTTL time.Duration
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(service *app.Service, signingKey string, sessionTTL time.Duration) *Handlers {
	return &Handlers{service: service, signingKey: signingKey, sessionTTL: sessionTTL}
}

type envelope map[string]interface{}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeSuccess writes the success envelope, merging any extra payload fields.
func (h *Handlers) writeSuccess(w http.ResponseWriter, status int, message string, extra envelope) {
	body := envelope{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	h.writeJSON(w, status, body)
}

// writeFailure writes the failure envelope with a human-readable reason.
func (h *Handlers) writeFailure(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, envelope{"success": false, "message": message})
}

// handleServiceError translates service sentinels into envelope responses.
// Anything unrecognized is logged and reported as an internal error.
func (h *Handlers) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNotAuthenticated):
		h.writeFailure(w, http.StatusUnauthorized, "No operator is signed in.")
	case errors.Is(err, app.ErrInvalidCredentials):
		h.writeFailure(w, http.StatusUnauthorized, "Invalid username or password.")
	case errors.Is(err, app.ErrLoginThrottled):
		h.writeFailure(w, http.StatusTooManyRequests, "Too many failed login attempts. Try again later.")
	case errors.Is(err, app.ErrFullRightsRequired):
		h.writeFailure(w, http.StatusForbidden, "This operation requires full rights.")
	case errors.Is(err, store.ErrCustomerNotFound):
		h.writeFailure(w, http.StatusNotFound, "Customer not found.")
	case errors.Is(err, store.ErrAccountNotFound):
		h.writeFailure(w, http.StatusNotFound, "Account not found.")
	case errors.Is(err, store.ErrSourceAccountNotFound):
		h.writeFailure(w, http.StatusNotFound, "Source account not found.")
	case errors.Is(err, store.ErrDestinationAccountNotFound):
		h.writeFailure(w, http.StatusNotFound, "Destination account not found.")
	case errors.Is(err, store.ErrOperatorNotFound):
		h.writeFailure(w, http.StatusNotFound, "Operator not found.")
	case errors.Is(err, store.ErrInsufficientFunds):
		h.writeFailure(w, http.StatusUnprocessableEntity, "Insufficient funds for this operation.")
	case errors.Is(err, store.ErrDuplicateUsername):
		h.writeFailure(w, http.StatusConflict, "That username is already taken.")
	case errors.Is(err, store.ErrNoFieldsToUpdate):
		h.writeFailure(w, http.StatusBadRequest, "No fields supplied to update.")
	case errors.Is(err, store.ErrNoAccounts):
		h.writeFailure(w, http.StatusNotFound, "There are no accounts to report on.")
	case errors.Is(err, store.ErrNoCustomers):
		h.writeFailure(w, http.StatusNotFound, "There are no customers to report on.")
	case errors.Is(err, app.ErrNegativeAmount),
		errors.Is(err, app.ErrSameAccount),
		errors.Is(err, app.ErrInvalidCustomerData),
		errors.Is(err, app.ErrInvalidAccountData),
		errors.Is(err, app.ErrInvalidOperatorData),
		errors.Is(err, app.ErrPasswordTooShort),
		errors.Is(err, app.ErrPasswordMismatch):
		h.writeFailure(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("level=error component=api msg=\"unhandled service error\" err=%v", err)
		h.writeFailure(w, http.StatusInternalServerError, "Internal server error.")
	}
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeFailure(w, http.StatusBadRequest, "Invalid request body.")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		h.writeFailure(w, http.StatusBadRequest, "Request validation failed: "+err.Error())
		return false
	}
	return true
}

func (h *Handlers) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		h.writeFailure(w, http.StatusBadRequest, "Invalid id in URL.")
		return 0, false
	}
	return id, true
}

type addressRequest struct {
	Line1    string  `json:"line1" validate:"required"`
	Line2    *string `json:"line2"`
	Line3    *string `json:"line3"`
	City     string  `json:"city" validate:"required"`
	Postcode string  `json:"postcode" validate:"required"`
}

func (a addressRequest) toDomain() domain.Address {
	return domain.Address{Line1: a.Line1, Line2: a.Line2, Line3: a.Line3, City: a.City, Postcode: a.Postcode}
}

// --- Authentication ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginHandler authenticates an operator and returns a session token.
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	operator, sessionID, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	token, err := MintSessionToken(h.signingKey, sessionID, operator.ID, h.sessionTTL)
	if err != nil {
		log.Printf("level=error component=api msg=\"failed to mint session token\" err=%v", err)
		h.service.Logout()
		h.writeFailure(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	h.writeSuccess(w, http.StatusOK, "Signed in.", envelope{"token": token, "operator": operator})
}

// LogoutHandler ends the session unconditionally.
func (h *Handlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.service.Logout()
	h.writeSuccess(w, http.StatusOK, "Signed out.", nil)
}

// CurrentOperatorHandler returns the signed-in operator.
func (h *Handlers) CurrentOperatorHandler(w http.ResponseWriter, r *http.Request) {
	operator, err := h.service.CurrentOperator()
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Signed in.", envelope{"operator": operator})
}

// --- Customers ---

type customerSearchRequest struct {
	ID              *int64  `json:"id"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	AddressLine1    *string `json:"address_line1"`
	AddressLine2    *string `json:"address_line2"`
	AddressLine3    *string `json:"address_line3"`
	AddressCity     *string `json:"address_city"`
	AddressPostcode *string `json:"address_postcode"`
	MatchAll        bool    `json:"match_all"`
	Exact           bool    `json:"exact"`
	All             bool    `json:"all"`
}

func (req customerSearchRequest) toFilter() store.CustomerFilter {
	return store.CustomerFilter{
		ID:              req.ID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		AddressLine1:    req.AddressLine1,
		AddressLine2:    req.AddressLine2,
		AddressLine3:    req.AddressLine3,
		AddressCity:     req.AddressCity,
		AddressPostcode: req.AddressPostcode,
		MatchAll:        req.MatchAll,
		Exact:           req.Exact,
		All:             req.All,
	}
}

// SearchCustomersHandler runs a composed customer search. A search with no
// criteria succeeds with an empty result and a reason, not an error.
func (h *Handlers) SearchCustomersHandler(w http.ResponseWriter, r *http.Request) {
	var req customerSearchRequest
	if !h.decode(w, r, &req) {
		return
	}

	customers, err := h.service.SearchCustomers(r.Context(), req.toFilter())
	if err != nil {
		if errors.Is(err, store.ErrNoSearchData) {
			h.writeSuccess(w, http.StatusOK, "No search criteria supplied.", envelope{"customers": []domain.Customer{}})
			return
		}
		h.handleServiceError(w, err)
		return
	}
	if customers == nil {
		customers = []domain.Customer{}
	}
	h.writeSuccess(w, http.StatusOK, "Search complete.", envelope{"customers": customers})
}

// GetCustomerHandler returns one customer by id.
func (h *Handlers) GetCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "customerID")
	if !ok {
		return
	}
	customer, err := h.service.GetCustomer(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Customer found.", envelope{"customer": customer})
}

type createCustomerRequest struct {
	FirstName string         `json:"first_name" validate:"required"`
	LastName  string         `json:"last_name" validate:"required"`
	Address   addressRequest `json:"address" validate:"required"`
}

// CreateCustomerHandler registers a new customer.
func (h *Handlers) CreateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if !h.decode(w, r, &req) {
		return
	}
	customer, err := h.service.CreateCustomer(r.Context(), req.FirstName, req.LastName, req.Address.toDomain())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusCreated, "Customer created.", envelope{"customer": customer})
}

// UpdateCustomerHandler applies a partial customer update.
func (h *Handlers) UpdateCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "customerID")
	if !ok {
		return
	}
	var upd domain.CustomerUpdate
	if !h.decode(w, r, &upd) {
		return
	}
	if err := h.service.UpdateCustomer(r.Context(), id, upd); err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Customer updated.", nil)
}

// DeleteCustomerHandler cascades a customer delete and reports the closure.
func (h *Handlers) DeleteCustomerHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "customerID")
	if !ok {
		return
	}
	result, err := h.service.DeleteCustomer(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Customer deleted.", envelope{
		"accounts_closed": result.AccountsClosed,
		"net_balance":     result.NetBalance,
	})
}

// --- Accounts ---

type amountCondRequest struct {
	Value int64  `json:"value"`
	Op    string `json:"op" validate:"omitempty,oneof=> = <"`
}

type rateCondRequest struct {
	Value float64 `json:"value"`
	Op    string  `json:"op" validate:"omitempty,oneof=> = <"`
}

type accountSearchRequest struct {
	ID             *int64             `json:"id"`
	AccountNumber  *string            `json:"account_number"`
	AccountName    *string            `json:"account_name"`
	CustomerID     *int64             `json:"customer_id"`
	Balance        *amountCondRequest `json:"balance"`
	InterestRate   *rateCondRequest   `json:"interest_rate"`
	OverdraftLimit *amountCondRequest `json:"overdraft_limit"`

	Owner *customerSearchRequest `json:"owner"`

	MatchAll bool `json:"match_all"`
	Exact    bool `json:"exact"`
	All      bool `json:"all"`
}

func (req accountSearchRequest) toSearch() app.AccountSearch {
	search := app.AccountSearch{
		Account: store.AccountFilter{
			ID:            req.ID,
			AccountNumber: req.AccountNumber,
			AccountName:   req.AccountName,
			CustomerID:    req.CustomerID,
			MatchAll:      req.MatchAll,
			Exact:         req.Exact,
			All:           req.All,
		},
	}
	if req.Balance != nil {
		search.Account.Balance = &store.AmountCond{Value: req.Balance.Value, Op: req.Balance.Op}
	}
	if req.InterestRate != nil {
		search.Account.InterestRate = &store.RateCond{Value: req.InterestRate.Value, Op: req.InterestRate.Op}
	}
	if req.OverdraftLimit != nil {
		search.Account.OverdraftLimit = &store.AmountCond{Value: req.OverdraftLimit.Value, Op: req.OverdraftLimit.Op}
	}
	if req.Owner != nil {
		search.Owner = req.Owner.toFilter()
		search.Owner.MatchAll = req.MatchAll
		search.Owner.Exact = req.Exact
	}
	return search
}

// SearchAccountsHandler runs the two-phase account search.
func (h *Handlers) SearchAccountsHandler(w http.ResponseWriter, r *http.Request) {
	var req accountSearchRequest
	if !h.decode(w, r, &req) {
		return
	}

	accounts, err := h.service.SearchAccounts(r.Context(), req.toSearch())
	if err != nil {
		if errors.Is(err, store.ErrNoSearchData) {
			h.writeSuccess(w, http.StatusOK, "No search criteria supplied.", envelope{"accounts": []domain.BankAccount{}})
			return
		}
		h.handleServiceError(w, err)
		return
	}
	if accounts == nil {
		accounts = []domain.BankAccount{}
	}
	h.writeSuccess(w, http.StatusOK, "Search complete.", envelope{"accounts": accounts})
}

// GetAccountHandler returns one account by id.
func (h *Handlers) GetAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "accountID")
	if !ok {
		return
	}
	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Account found.", envelope{"account": account})
}

// GetAccountByNumberHandler returns one account by account number.
func (h *Handlers) GetAccountByNumberHandler(w http.ResponseWriter, r *http.Request) {
	account, err := h.service.GetAccountByNumber(r.Context(), chi.URLParam(r, "accountNumber"))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Account found.", envelope{"account": account})
}

// GenerateAccountNumberHandler returns a 16-digit account number that was
// free at the time of the check.
func (h *Handlers) GenerateAccountNumberHandler(w http.ResponseWriter, r *http.Request) {
	accountNumber, err := h.service.GenerateAccountNumber(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Account number generated.", envelope{"account_number": accountNumber})
}

type openAccountRequest struct {
	CustomerID     int64   `json:"customer_id" validate:"required"`
	AccountName    string  `json:"account_name" validate:"required"`
	InterestRate   float64 `json:"interest_rate"`
	OverdraftLimit int64   `json:"overdraft_limit" validate:"gte=0"`
}

// OpenAccountHandler opens a new account for a customer.
func (h *Handlers) OpenAccountHandler(w http.ResponseWriter, r *http.Request) {
	var req openAccountRequest
	if !h.decode(w, r, &req) {
		return
	}
	account, err := h.service.OpenAccount(r.Context(), req.CustomerID, req.AccountName, req.InterestRate, req.OverdraftLimit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusCreated, "Account opened.", envelope{"account": account})
}

// UpdateAccountHandler applies a partial account update.
func (h *Handlers) UpdateAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "accountID")
	if !ok {
		return
	}
	var upd domain.AccountUpdate
	if !h.decode(w, r, &upd) {
		return
	}
	if err := h.service.UpdateAccount(r.Context(), id, upd); err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Account updated.", nil)
}

// CloseAccountHandler deletes one account and reports the balance it held.
func (h *Handlers) CloseAccountHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "accountID")
	if !ok {
		return
	}
	result, err := h.service.CloseAccount(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Account closed.", envelope{"net_balance": result.NetBalance})
}

// --- Money movement ---

type movementRequest struct {
	AccountNumber string `json:"account_number" validate:"required,len=16,numeric"`
	Amount        int64  `json:"amount" validate:"gte=0"`
}

// DepositHandler credits an account.
func (h *Handlers) DepositHandler(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if !h.decode(w, r, &req) {
		return
	}
	balance, err := h.service.Deposit(r.Context(), req.AccountNumber, req.Amount)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Deposit complete.", envelope{"balance": balance})
}

// WithdrawHandler debits an account, honoring its overdraft limit.
func (h *Handlers) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if !h.decode(w, r, &req) {
		return
	}
	balance, err := h.service.Withdraw(r.Context(), req.AccountNumber, req.Amount)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Withdrawal complete.", envelope{"balance": balance})
}

type transferRequest struct {
	FromAccountNumber string `json:"from_account_number" validate:"required,len=16,numeric"`
	ToAccountNumber   string `json:"to_account_number" validate:"required,len=16,numeric"`
	Amount            int64  `json:"amount" validate:"gte=0"`
}

// TransferHandler moves funds between two accounts.
func (h *Handlers) TransferHandler(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.service.Transfer(r.Context(), req.FromAccountNumber, req.ToAccountNumber, req.Amount)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Transfer complete.", envelope{"transfer": result})
}

// --- Operators ---

type createOperatorRequest struct {
	FirstName  string         `json:"first_name" validate:"required"`
	LastName   string         `json:"last_name" validate:"required"`
	Address    addressRequest `json:"address" validate:"required"`
	Username   string         `json:"username" validate:"required"`
	Password   string         `json:"password" validate:"required,min=8"`
	FullRights bool           `json:"full_rights"`
}

// GetOperatorHandler returns one operator record.
func (h *Handlers) GetOperatorHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "operatorID")
	if !ok {
		return
	}
	operator, err := h.service.GetOperator(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Operator found.", envelope{"operator": operator})
}

// CreateOperatorHandler registers a new operator.
func (h *Handlers) CreateOperatorHandler(w http.ResponseWriter, r *http.Request) {
	var req createOperatorRequest
	if !h.decode(w, r, &req) {
		return
	}
	operator, err := h.service.CreateOperator(r.Context(), req.FirstName, req.LastName, req.Address.toDomain(), req.Username, req.Password, req.FullRights)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusCreated, "Operator created.", envelope{"operator": operator})
}

// UpdateOperatorHandler applies a partial operator update.
func (h *Handlers) UpdateOperatorHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "operatorID")
	if !ok {
		return
	}
	var upd domain.OperatorUpdate
	if !h.decode(w, r, &upd) {
		return
	}
	if err := h.service.UpdateOperator(r.Context(), id, upd); err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Operator updated.", nil)
}

type changePasswordRequest struct {
	OldPassword     string `json:"old_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// ChangePasswordHandler rotates the signed-in operator's password.
func (h *Handlers) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.service.ChangePassword(r.Context(), req.OldPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Password changed.", nil)
}

// --- Reports ---

// InterestReportHandler aggregates interest figures across every account.
func (h *Handlers) InterestReportHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.InterestReport(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Report generated.", envelope{"report": report})
}

// BalanceReportHandler aggregates balances across every account.
func (h *Handlers) BalanceReportHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.BalanceReport(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Report generated.", envelope{"report": report})
}

// OverdraftReportHandler aggregates overdraft limits across every account.
func (h *Handlers) OverdraftReportHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.OverdraftReport(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Report generated.", envelope{"report": report})
}

// CustomerReportHandler counts the customer population.
func (h *Handlers) CustomerReportHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.CustomerReport(r.Context())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	h.writeSuccess(w, http.StatusOK, "Report generated.", envelope{"report": report})
}
