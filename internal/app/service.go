/**
 * @description
 * This file contains the core business logic for the back-office service. The
 * `Service` struct orchestrates every operator-facing operation: login and
 * session control, customer and account lifecycle, money movement, operator
 * administration and reporting.
 *
 * Key features:
 * - Every datastore-touching operation passes an authorization guard first;
 *   destructive and administrative operations demand full rights.
 * - Money movement validates amounts before the repository is touched and
 *   publishes audit events to RabbitMQ after a mutation commits.
 * - Account numbers are drawn uniformly at random (16 digits) and re-drawn
 *   on collision.
 *
 * @dependencies
 * - context, errors, fmt, log, math/rand, time: Standard Go libraries.
 * - github.com/google/uuid: Event id generation.
 * - internal/domain, internal/store: Domain models and data access.
 * - pkg/rabbitmq: Audit event publishing.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/crestbank/backoffice-service/internal/domain"
	"github.com/crestbank/backoffice-service/internal/store"
	"github.com/crestbank/backoffice-service/pkg/rabbitmq"
)

const MinPasswordLength = 8

// Service provides the core business logic for the back-office.
type Service struct {
	repo          store.Repository
	eventProducer rabbitmq.Publisher
	loginLimiter  *RedisLoginRateLimiter
	loginLimit    int
	loginWindow   time.Duration
	session       session
}

// NewService creates a new back-office service instance. producer and limiter
// may be nil; audit events and login throttling are then skipped.
func NewService(repo store.Repository, producer rabbitmq.Publisher, limiter *RedisLoginRateLimiter, loginLimit int, loginWindow time.Duration) *Service {
	return &Service{
		repo:          repo,
		eventProducer: producer,
		loginLimiter:  limiter,
		loginLimit:    loginLimit,
		loginWindow:   loginWindow,
	}
}

// Login authenticates an operator by username and password and begins a new
// session. The username must resolve to exactly one operator; zero or several
// matches fail with the same ErrInvalidCredentials as a bad password, so the
// response never leaks which usernames exist.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.Operator, string, error) {
	if count, retryAfter, err := s.loginLimiter.ConsumeAttempt(ctx, username, s.loginLimit, s.loginWindow); err != nil {
		log.Printf("level=warn component=app msg=\"login limiter unavailable\" err=%v", err)
	} else if s.loginLimit > 0 && count > s.loginLimit {
		log.Printf("level=warn component=app msg=\"login throttled\" username=%s retry_after=%ds", username, retryAfter)
		return nil, "", ErrLoginThrottled
	}

	operators, err := s.repo.FindOperatorsByUsername(ctx, username)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up operator: %w", err)
	}
	if len(operators) != 1 {
		log.Printf("level=warn component=app msg=\"login rejected\" username=%s matches=%d", username, len(operators))
		return nil, "", ErrInvalidCredentials
	}

	operator := operators[0]
	if !VerifyPassword(operator.PasswordHash, password) {
		log.Printf("level=warn component=app msg=\"login rejected\" username=%s reason=bad_password", username)
		return nil, "", ErrInvalidCredentials
	}

	sessionID := s.session.begin(&operator)
	s.loginLimiter.Reset(ctx, username)
	log.Printf("level=info component=app msg=\"operator signed in\" operator_id=%d full_rights=%v", operator.ID, operator.FullRights)
	return &operator, sessionID, nil
}

// Logout clears the session. Always succeeds, signed in or not.
func (s *Service) Logout() {
	s.session.end()
	log.Printf("level=info component=app msg=\"session cleared\"")
}

// SearchCustomers runs a composed customer search for the signed-in operator.
func (s *Service) SearchCustomers(ctx context.Context, filter store.CustomerFilter) ([]domain.Customer, error) {
	if _, err := s.requireSession(); err != nil {
		return nil, err
	}
	return s.repo.FindCustomers(ctx, filter)
}

// GetCustomer retrieves one customer by id.
func (s *Service) GetCustomer(ctx context.Context, customerID int64) (*domain.Customer, error) {
	if _, err := s.requireSession(); err != nil {
		return nil, err
	}
	return s.repo.FindCustomerByID(ctx, customerID)
}

// CreateCustomer registers a new customer record.
func (s *Service) CreateCustomer(ctx context.Context, firstName, lastName string, addr domain.Address) (*domain.Customer, error) {
	if _, err := s.requireSession(); err != nil {
		return nil, err
	}
	if firstName == "" || lastName == "" || !addr.Valid() {
		return nil, ErrInvalidCustomerData
	}
	customer, err := s.repo.CreateCustomer(ctx, firstName, lastName, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	log.Printf("level=info component=app msg=\"customer created\" customer_id=%d", customer.ID)
	return customer, nil
}

// UpdateCustomer applies a partial update; supplying no fields is an error,
// never a silent no-op.
func (s *Service) UpdateCustomer(ctx context.Context, customerID int64, upd domain.CustomerUpdate) error {
	if _, err := s.requireSession(); err != nil {
		return err
	}
	if upd.Empty() {
		return store.ErrNoFieldsToUpdate
	}
	return s.repo.UpdateCustomer(ctx, customerID, upd)
}

// DeleteCustomer removes a customer and every account they own in one
// cascade, reporting the accounts closed and the net balance across them.
// Full rights required.
func (s *Service) DeleteCustomer(ctx context.Context, customerID int64) (*domain.ClosureResult, error) {
	operator, err := s.requireFullRights()
	if err != nil {
		return nil, err
	}

	result, err := s.repo.DeleteCustomerCascade(ctx, customerID)
	if err != nil {
		return nil, err
	}
	log.Printf("level=info component=app msg=\"customer deleted\" customer_id=%d accounts_closed=%d net_balance=%d", customerID, result.AccountsClosed, result.NetBalance)

	s.publishAuditEvent(ctx, "customer.deleted", rabbitmq.CustomerDeletedEvent{
		EventID:        uuid.New(),
		OperatorID:     operator.ID,
		CustomerID:     customerID,
		AccountsClosed: result.AccountsClosed,
		NetBalance:     result.NetBalance,
		Timestamp:      time.Now().UTC(),
	})
	return result, nil
}

// AccountSearch combines direct account criteria with criteria over the
// owning customer.
type AccountSearch struct {
	Account store.AccountFilter
	Owner   store.CustomerFilter
}

// SearchAccounts resolves an account search in two phases: owner criteria
// find matching customers and collect their accounts, direct criteria query
// accounts themselves. The phases are always unioned, de-duplicated by
// account id; MatchAll binds predicates within a phase, not across phases.
func (s *Service) SearchAccounts(ctx context.Context, q AccountSearch) ([]domain.BankAccount, error) {
	if _, err := s.requireSession(); err != nil {
		return nil, err
	}

	if q.Account.All {
		return s.repo.FindAccounts(ctx, store.AccountFilter{All: true})
	}

	hasOwner := q.Owner.HasCriteria()
	hasDirect := q.Account.HasCriteria()
	if !hasOwner && !hasDirect {
		return nil, store.ErrNoSearchData
	}

	seen := make(map[int64]bool)
	var results []domain.BankAccount
	merge := func(accounts []domain.BankAccount) {
		for _, acc := range accounts {
			if !seen[acc.ID] {
				seen[acc.ID] = true
				results = append(results, acc)
			}
		}
	}

	if hasOwner {
		owners, err := s.repo.FindCustomers(ctx, q.Owner)
		if err != nil {
			return nil, err
		}
		for _, owner := range owners {
			ownerID := owner.ID
			accounts, err := s.repo.FindAccounts(ctx, store.AccountFilter{CustomerID: &ownerID})
			if err != nil {
				return nil, err
			}
			merge(accounts)
		}
	}

	if hasDirect {
		accounts, err := s.repo.FindAccounts(ctx, q.Account)
		if err != nil {
			return nil, err
		}
		merge(accounts)
	}

	return results, nil
}

// GetAccount retrieves one account with its owner by id.
func (s *Service) GetAccount(ctx context.Context, accountID int64) (*domain.BankAccount, error) {
	if _, err := s.requireSession(); err != nil {
		return nil, err
	}
	return s.repo.FindAccountByID(ctx, accountID)
}

// GetAccountByNumber retrieves one account with its owner by account number.
func (s *Service) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.BankAccount, error) {
	if _, err := s.requireSession(); err != nil {
		return nil, err
	}
	return s.repo.FindAccountByNumber(ctx, accountNumber)
}

// GenerateAccountNumber reserves nothing: it returns a 16-digit account
// number that was free at the time of the check, for callers that want to
// show a number before opening the account. OpenAccount draws its own.
func (s *Service) GenerateAccountNumber(ctx context.Context) (string, error) {
	if _, err := s.requireSession(); err != nil {
		return "", err
	}
	return s.generateAccountNumber(ctx)
}

// generateAccountNumber draws uniform random 16-digit numbers until one is
// free. Collisions only re-draw; the space is large enough that the loop
// terminates in practice after one or two draws.
func (s *Service) generateAccountNumber(ctx context.Context) (string, error) {
	for {
		candidate := fmt.Sprintf("%d", 1_000_000_000_000_000+rand.Int63n(9_000_000_000_000_000))
		exists, err := s.repo.AccountNumberExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check account number: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
}

// OpenAccount creates a new account for a customer with a freshly generated
// account number and a zero opening balance.
func (s *Service) OpenAccount(ctx context.Context, customerID int64, accountName string, interestRate float64, overdraftLimit int64) (*domain.BankAccount, error) {
	if _, err := s.requireSession(); err != nil {
		return nil, err
	}
	if accountName == "" || overdraftLimit < 0 {
		return nil, ErrInvalidAccountData
	}

	for {
		accountNumber, err := s.generateAccountNumber(ctx)
		if err != nil {
			return nil, err
		}
		account, err := s.repo.CreateAccount(ctx, customerID, accountName, accountNumber, interestRate, overdraftLimit)
		if err != nil {
			// A concurrent open can win the same number between the existence
			// check and the insert; re-draw and try again.
			if errors.Is(err, store.ErrDuplicateAccountNumber) {
				continue
			}
			return nil, err
		}
		log.Printf("level=info component=app msg=\"account opened\" account_id=%d customer_id=%d", account.ID, customerID)
		return account, nil
	}
}

// UpdateAccount applies a partial update to an account's name, interest rate
// or overdraft limit.
func (s *Service) UpdateAccount(ctx context.Context, accountID int64, upd domain.AccountUpdate) error {
	if _, err := s.requireSession(); err != nil {
		return err
	}
	if upd.Empty() {
		return store.ErrNoFieldsToUpdate
	}
	if upd.OverdraftLimit != nil && *upd.OverdraftLimit < 0 {
		return ErrInvalidAccountData
	}
	return s.repo.UpdateAccount(ctx, accountID, upd)
}

// CloseAccount deletes one account, reporting the balance it held so the
// branch can settle up with the customer. Full rights required.
func (s *Service) CloseAccount(ctx context.Context, accountID int64) (*domain.ClosureResult, error) {
	if _, err := s.requireFullRights(); err != nil {
		return nil, err
	}
	result, err := s.repo.DeleteAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	log.Printf("level=info component=app msg=\"account closed\" account_id=%d net_balance=%d", accountID, result.NetBalance)
	return result, nil
}

// Deposit credits an account identified by account number and returns the
// committed balance.
func (s *Service) Deposit(ctx context.Context, accountNumber string, amount int64) (int64, error) {
	operator, err := s.requireSession()
	if err != nil {
		return 0, err
	}
	if amount < 0 {
		return 0, ErrNegativeAmount
	}

	account, err := s.repo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		return 0, err
	}
	balance, err := s.repo.Deposit(ctx, account.ID, amount)
	if err != nil {
		return 0, err
	}
	log.Printf("level=info component=app msg=\"deposit\" account_id=%d amount=%d balance=%d", account.ID, amount, balance)

	s.publishAuditEvent(ctx, "ledger.deposit", rabbitmq.LedgerEvent{
		EventID:       uuid.New(),
		OperatorID:    operator.ID,
		AccountNumber: accountNumber,
		Amount:        amount,
		Balance:       balance,
		Timestamp:     time.Now().UTC(),
	})
	return balance, nil
}

// Withdraw debits an account identified by account number, honoring its
// overdraft limit, and returns the committed balance.
func (s *Service) Withdraw(ctx context.Context, accountNumber string, amount int64) (int64, error) {
	operator, err := s.requireSession()
	if err != nil {
		return 0, err
	}
	if amount < 0 {
		return 0, ErrNegativeAmount
	}

	account, err := s.repo.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		return 0, err
	}
	balance, err := s.repo.Withdraw(ctx, account.ID, amount)
	if err != nil {
		return 0, err
	}
	log.Printf("level=info component=app msg=\"withdrawal\" account_id=%d amount=%d balance=%d", account.ID, amount, balance)

	s.publishAuditEvent(ctx, "ledger.withdraw", rabbitmq.LedgerEvent{
		EventID:       uuid.New(),
		OperatorID:    operator.ID,
		AccountNumber: accountNumber,
		Amount:        amount,
		Balance:       balance,
		Timestamp:     time.Now().UTC(),
	})
	return balance, nil
}

// Transfer moves funds between two accounts identified by account number.
// The source's overdraft limit binds; a failed transfer leaves both accounts
// untouched.
func (s *Service) Transfer(ctx context.Context, fromAccountNumber, toAccountNumber string, amount int64) (*domain.TransferResult, error) {
	operator, err := s.requireSession()
	if err != nil {
		return nil, err
	}
	if amount < 0 {
		return nil, ErrNegativeAmount
	}
	if fromAccountNumber == toAccountNumber {
		return nil, ErrSameAccount
	}

	result, err := s.repo.Transfer(ctx, fromAccountNumber, toAccountNumber, amount)
	if err != nil {
		return nil, err
	}
	log.Printf("level=info component=app msg=\"transfer\" from=%s to=%s amount=%d", fromAccountNumber, toAccountNumber, amount)

	s.publishAuditEvent(ctx, "ledger.transfer", rabbitmq.LedgerEvent{
		EventID:            uuid.New(),
		OperatorID:         operator.ID,
		AccountNumber:      fromAccountNumber,
		CounterpartyNumber: toAccountNumber,
		Amount:             amount,
		Balance:            result.FromBalance,
		Timestamp:          time.Now().UTC(),
	})
	return result, nil
}

// GetOperator retrieves one operator record. Full rights required.
func (s *Service) GetOperator(ctx context.Context, operatorID int64) (*domain.Operator, error) {
	if _, err := s.requireFullRights(); err != nil {
		return nil, err
	}
	return s.repo.FindOperatorByID(ctx, operatorID)
}

// CreateOperator registers a new operator with a freshly hashed password.
// Full rights required.
func (s *Service) CreateOperator(ctx context.Context, firstName, lastName string, addr domain.Address, username, password string, fullRights bool) (*domain.Operator, error) {
	if _, err := s.requireFullRights(); err != nil {
		return nil, err
	}
	if firstName == "" || lastName == "" || username == "" || password == "" || !addr.Valid() {
		return nil, ErrInvalidOperatorData
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	operator, err := s.repo.CreateOperator(ctx, &domain.Operator{
		FirstName:    firstName,
		LastName:     lastName,
		Address:      addr,
		Username:     username,
		PasswordHash: hash,
		FullRights:   fullRights,
	})
	if err != nil {
		return nil, err
	}
	log.Printf("level=info component=app msg=\"operator created\" operator_id=%d full_rights=%v", operator.ID, fullRights)
	return operator, nil
}

// UpdateOperator applies a partial update to an operator's details. Full
// rights required; password changes go through ChangePassword instead.
func (s *Service) UpdateOperator(ctx context.Context, operatorID int64, upd domain.OperatorUpdate) error {
	if _, err := s.requireFullRights(); err != nil {
		return err
	}
	if upd.Empty() {
		return store.ErrNoFieldsToUpdate
	}
	if err := s.repo.UpdateOperator(ctx, operatorID, upd); err != nil {
		return err
	}
	if refreshed, err := s.repo.FindOperatorByID(ctx, operatorID); err == nil {
		s.session.refresh(refreshed)
	}
	return nil
}

// ChangePassword rotates the signed-in operator's own password after
// verifying the old one and the confirmation.
func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword, confirmPassword string) error {
	operator, err := s.requireSession()
	if err != nil {
		return err
	}
	if !VerifyPassword(operator.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if len(newPassword) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdateOperatorPassword(ctx, operator.ID, hash); err != nil {
		return err
	}
	operator.PasswordHash = hash
	s.session.refresh(operator)
	log.Printf("level=info component=app msg=\"password changed\" operator_id=%d", operator.ID)
	return nil
}

// InterestReport aggregates interest figures across every account.
func (s *Service) InterestReport(ctx context.Context) (*domain.InterestReport, error) {
	if _, err := s.requireSession(); err != nil {
		return nil, err
	}
	return s.repo.InterestReport(ctx)
}

// BalanceReport aggregates balances across every account.
func (s *Service) BalanceReport(ctx context.Context) (*domain.BalanceReport, error) {
	if _, err := s.requireSession(); err != nil {
		return nil, err
	}
	return s.repo.BalanceReport(ctx)
}

// OverdraftReport aggregates overdraft limits across every account.
func (s *Service) OverdraftReport(ctx context.Context) (*domain.OverdraftReport, error) {
	if _, err := s.requireSession(); err != nil {
		return nil, err
	}
	return s.repo.OverdraftReport(ctx)
}

// CustomerReport counts the customer population.
func (s *Service) CustomerReport(ctx context.Context) (*domain.CustomerReport, error) {
	if _, err := s.requireSession(); err != nil {
		return nil, err
	}
	return s.repo.CustomerReport(ctx)
}

// AccrueDailyInterest applies one day's interest across the book. Called by
// the scheduler, so it bypasses the operator session.
func (s *Service) AccrueDailyInterest(ctx context.Context) (int64, error) {
	return s.repo.AccrueDailyInterest(ctx)
}

func (s *Service) publishAuditEvent(ctx context.Context, routingKey string, event interface{}) {
	if s.eventProducer == nil {
		return
	}
	if err := s.eventProducer.Publish(ctx, rabbitmq.AuditExchange, routingKey, event); err != nil {
		log.Printf("level=warn component=app msg=\"audit event publish failed\" routing_key=%s err=%v", routingKey, err)
	}
}
