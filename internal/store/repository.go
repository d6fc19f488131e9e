/**
 * @description
 * This file defines the `Repository` interface: the contract for every data
 * access operation the banking service needs. Keeping the interface separate
 * from the PostgreSQL implementation decouples the business logic from the
 * datastore and lets tests substitute lightweight stubs.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - internal/domain: Domain models materialized by the gateway.
 */

package store

import (
	"context"
	"errors"

	"github.com/crestbank/backoffice-service/internal/domain"
)

var (
	ErrCustomerNotFound           = errors.New("customer not found")
	ErrAccountNotFound            = errors.New("account not found")
	ErrSourceAccountNotFound      = errors.New("source account not found")
	ErrDestinationAccountNotFound = errors.New("destination account not found")
	ErrOperatorNotFound           = errors.New("operator not found")
	ErrInsufficientFunds          = errors.New("insufficient funds")
	ErrDuplicateAccountNumber     = errors.New("account number already in use")
	ErrDuplicateUsername          = errors.New("username already in use")
	ErrNoSearchData               = errors.New("no search data provided")
	ErrNoFieldsToUpdate           = errors.New("no fields to update")
	ErrNoAccounts                 = errors.New("no accounts exist")
	ErrNoCustomers                = errors.New("no customers exist")
)

// Repository defines the set of methods for interacting with the datastore.
type Repository interface {
	// Customer methods
	FindCustomers(ctx context.Context, filter CustomerFilter) ([]domain.Customer, error)
	FindCustomerByID(ctx context.Context, customerID int64) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, firstName, lastName string, addr domain.Address) (*domain.Customer, error)
	UpdateCustomer(ctx context.Context, customerID int64, upd domain.CustomerUpdate) error
	// DeleteCustomerCascade removes the customer and every account it owns in
	// one transaction, reporting the net balance across the closed accounts.
	DeleteCustomerCascade(ctx context.Context, customerID int64) (*domain.ClosureResult, error)

	// Account methods
	FindAccounts(ctx context.Context, filter AccountFilter) ([]domain.BankAccount, error)
	FindAccountByID(ctx context.Context, accountID int64) (*domain.BankAccount, error)
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.BankAccount, error)
	AccountNumberExists(ctx context.Context, accountNumber string) (bool, error)
	CreateAccount(ctx context.Context, customerID int64, accountName, accountNumber string, interestRate float64, overdraftLimit int64) (*domain.BankAccount, error)
	UpdateAccount(ctx context.Context, accountID int64, upd domain.AccountUpdate) error
	DeleteAccount(ctx context.Context, accountID int64) (*domain.ClosureResult, error)

	// Money movement. Deposit and Withdraw return the committed balance.
	// Withdraw and Transfer enforce the overdraft limit inside a single
	// atomic statement or transaction; the balance invariant is checked under
	// row locks, never read-then-write.
	Deposit(ctx context.Context, accountID, amount int64) (int64, error)
	Withdraw(ctx context.Context, accountID, amount int64) (int64, error)
	Transfer(ctx context.Context, fromAccountNumber, toAccountNumber string, amount int64) (*domain.TransferResult, error)
	// AccrueDailyInterest applies one day of interest to every account with a
	// positive balance and rate, returning how many rows changed.
	AccrueDailyInterest(ctx context.Context) (int64, error)

	// Operator methods
	FindOperatorsByUsername(ctx context.Context, username string) ([]domain.Operator, error)
	FindOperatorByID(ctx context.Context, operatorID int64) (*domain.Operator, error)
	CreateOperator(ctx context.Context, op *domain.Operator) (*domain.Operator, error)
	UpdateOperator(ctx context.Context, operatorID int64, upd domain.OperatorUpdate) error
	UpdateOperatorPassword(ctx context.Context, operatorID int64, passwordHash string) error

	// Reporting aggregations
	InterestReport(ctx context.Context) (*domain.InterestReport, error)
	BalanceReport(ctx context.Context) (*domain.BalanceReport, error)
	OverdraftReport(ctx context.Context) (*domain.OverdraftReport, error)
	CustomerReport(ctx context.Context) (*domain.CustomerReport, error)
}
