/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It owns every SQL statement in the service: the dynamic search
 * queries produced by the filter composer, account/customer/operator
 * lifecycle statements, the atomic balance mutations, the cascading customer
 * delete, and the reporting aggregations.
 *
 * @dependencies
 * - context, errors, fmt, strings: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Domain models materialized from rows.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crestbank/backoffice-service/internal/domain"
)

// PostgresRepository is a concrete implementation of the Repository interface
// for PostgreSQL. It holds the single connection pool to the datastore.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const customerColumns = "id, first_name, last_name, address_line1, address_line2, address_line3, address_city, address_postcode"

// accountColumns selects an account row joined to its owning customer. The
// inner join means an account whose owner cannot be resolved is dropped from
// the result set rather than surfaced as an error.
const accountColumns = `a.id, a.account_number, a.account_name, a.balance, a.interest_rate, a.overdraft_limit,
       c.id, c.first_name, c.last_name, c.address_line1, c.address_line2, c.address_line3, c.address_city, c.address_postcode`

const accountFrom = "FROM accounts a JOIN customers c ON c.id = a.customer_id"

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var cust domain.Customer
	err := row.Scan(
		&cust.ID, &cust.FirstName, &cust.LastName,
		&cust.Address.Line1, &cust.Address.Line2, &cust.Address.Line3,
		&cust.Address.City, &cust.Address.Postcode,
	)
	if err != nil {
		return nil, err
	}
	return &cust, nil
}

func scanAccount(row pgx.Row) (*domain.BankAccount, error) {
	var acc domain.BankAccount
	err := row.Scan(
		&acc.ID, &acc.AccountNumber, &acc.AccountName,
		&acc.Balance, &acc.InterestRate, &acc.OverdraftLimit,
		&acc.Customer.ID, &acc.Customer.FirstName, &acc.Customer.LastName,
		&acc.Customer.Address.Line1, &acc.Customer.Address.Line2, &acc.Customer.Address.Line3,
		&acc.Customer.Address.City, &acc.Customer.Address.Postcode,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// FindCustomers runs a composed search over the customers table. With no
// predicates and All unset it returns ErrNoSearchData; results preserve
// whatever order the datastore returns.
func (r *PostgresRepository) FindCustomers(ctx context.Context, filter CustomerFilter) ([]domain.Customer, error) {
	query := "SELECT " + customerColumns + " FROM customers"
	var args []interface{}

	if !filter.All {
		preds := filter.predicates("")
		if len(preds) == 0 {
			return nil, ErrNoSearchData
		}
		var where string
		where, args = buildWhere(preds, filter.MatchAll, filter.Exact, 1)
		query += " " + where
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		cust, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *cust)
	}
	return customers, rows.Err()
}

// FindAccounts runs a composed search over accounts joined to their owners.
func (r *PostgresRepository) FindAccounts(ctx context.Context, filter AccountFilter) ([]domain.BankAccount, error) {
	query := "SELECT " + accountColumns + " " + accountFrom
	var args []interface{}

	if !filter.All {
		preds := filter.predicates("a.")
		if len(preds) == 0 {
			return nil, ErrNoSearchData
		}
		var where string
		where, args = buildWhere(preds, filter.MatchAll, filter.Exact, 1)
		query += " " + where
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.BankAccount
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *acc)
	}
	return accounts, rows.Err()
}

// FindCustomerByID retrieves a single customer by primary key.
func (r *PostgresRepository) FindCustomerByID(ctx context.Context, customerID int64) (*domain.Customer, error) {
	query := "SELECT " + customerColumns + " FROM customers WHERE id = $1"
	cust, err := scanCustomer(r.db.QueryRow(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return cust, nil
}

// CreateCustomer inserts a new customer row and returns the stored record.
func (r *PostgresRepository) CreateCustomer(ctx context.Context, firstName, lastName string, addr domain.Address) (*domain.Customer, error) {
	query := `
		INSERT INTO customers (first_name, last_name, address_line1, address_line2, address_line3, address_city, address_postcode)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + customerColumns
	return scanCustomer(r.db.QueryRow(ctx, query,
		firstName, lastName, addr.Line1, addr.Line2, addr.Line3, addr.City, addr.Postcode,
	))
}

// UpdateCustomer applies a partial update; only supplied fields change.
func (r *PostgresRepository) UpdateCustomer(ctx context.Context, customerID int64, upd domain.CustomerUpdate) error {
	sets, args := buildSets([]setField{
		{"first_name", upd.FirstName},
		{"last_name", upd.LastName},
		{"address_line1", upd.AddressLine1},
		{"address_line2", upd.AddressLine2},
		{"address_line3", upd.AddressLine3},
		{"address_city", upd.AddressCity},
		{"address_postcode", upd.AddressPostcode},
	})
	if len(sets) == 0 {
		return ErrNoFieldsToUpdate
	}

	args = append(args, customerID)
	query := fmt.Sprintf("UPDATE customers SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

// DeleteCustomerCascade removes every account owned by the customer and then
// the customer row, all inside one transaction. A failure anywhere rolls the
// whole cascade back. The returned result carries the net balance across the
// closed accounts, computed before deletion.
func (r *PostgresRepository) DeleteCustomerCascade(ctx context.Context, customerID int64) (*domain.ClosureResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, "SELECT balance FROM accounts WHERE customer_id = $1 FOR UPDATE", customerID)
	if err != nil {
		return nil, err
	}
	result := &domain.ClosureResult{}
	for rows.Next() {
		var balance int64
		if err := rows.Scan(&balance); err != nil {
			rows.Close()
			return nil, err
		}
		result.AccountsClosed++
		result.NetBalance += balance
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, "DELETE FROM accounts WHERE customer_id = $1", customerID); err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, "DELETE FROM customers WHERE id = $1", customerID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrCustomerNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// FindAccountByID retrieves a single account with its owner by primary key.
func (r *PostgresRepository) FindAccountByID(ctx context.Context, accountID int64) (*domain.BankAccount, error) {
	query := "SELECT " + accountColumns + " " + accountFrom + " WHERE a.id = $1"
	acc, err := scanAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return acc, nil
}

// FindAccountByNumber retrieves a single account with its owner by account number.
func (r *PostgresRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.BankAccount, error) {
	query := "SELECT " + accountColumns + " " + accountFrom + " WHERE a.account_number = $1"
	acc, err := scanAccount(r.db.QueryRow(ctx, query, accountNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return acc, nil
}

// AccountNumberExists reports whether any account already uses the number.
func (r *PostgresRepository) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)", accountNumber).Scan(&exists)
	return exists, err
}

// CreateAccount inserts a new account with a zero opening balance. A
// duplicate account number maps to ErrDuplicateAccountNumber; an unknown
// owner maps to ErrCustomerNotFound.
func (r *PostgresRepository) CreateAccount(ctx context.Context, customerID int64, accountName, accountNumber string, interestRate float64, overdraftLimit int64) (*domain.BankAccount, error) {
	var accountID int64
	query := `
		INSERT INTO accounts (customer_id, account_name, account_number, balance, interest_rate, overdraft_limit)
		VALUES ($1, $2, $3, 0, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query, customerID, accountName, accountNumber, interestRate, overdraftLimit).Scan(&accountID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateAccountNumber
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return r.FindAccountByID(ctx, accountID)
}

// UpdateAccount applies a partial update; balances are never set here, only
// through the money movement operations.
func (r *PostgresRepository) UpdateAccount(ctx context.Context, accountID int64, upd domain.AccountUpdate) error {
	sets, args := buildSets([]setField{
		{"account_name", upd.AccountName},
		{"interest_rate", upd.InterestRate},
		{"overdraft_limit", upd.OverdraftLimit},
	})
	if len(sets) == 0 {
		return ErrNoFieldsToUpdate
	}

	args = append(args, accountID)
	query := fmt.Sprintf("UPDATE accounts SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// DeleteAccount removes one account, reporting the balance it held at the
// moment of deletion.
func (r *PostgresRepository) DeleteAccount(ctx context.Context, accountID int64) (*domain.ClosureResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var balance int64
	err = tx.QueryRow(ctx, "SELECT balance FROM accounts WHERE id = $1 FOR UPDATE", accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, "DELETE FROM accounts WHERE id = $1", accountID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &domain.ClosureResult{AccountsClosed: 1, NetBalance: balance}, nil
}

// Deposit atomically adds amount to the account balance and returns the
// committed balance.
func (r *PostgresRepository) Deposit(ctx context.Context, accountID, amount int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx,
		"UPDATE accounts SET balance = balance + $1 WHERE id = $2 RETURNING balance",
		amount, accountID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return balance, nil
}

// Withdraw removes amount from the account balance in a single conditional
// update so the overdraft check and the mutation cannot interleave with a
// concurrent writer. Zero rows affected means either the account is missing
// or the withdrawal would breach the overdraft limit.
func (r *PostgresRepository) Withdraw(ctx context.Context, accountID, amount int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx,
		"UPDATE accounts SET balance = balance - $1 WHERE id = $2 AND balance - $1 >= -overdraft_limit RETURNING balance",
		amount, accountID,
	).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	var exists bool
	if err := r.db.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)", accountID).Scan(&exists); err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrAccountNotFound
	}
	return 0, ErrInsufficientFunds
}

// Transfer moves amount between two accounts identified by account number
// inside one transaction. Both rows are locked in ascending id order so two
// opposing transfers cannot deadlock, and the overdraft check runs under the
// lock: a failed withdrawal leg leaves the destination untouched.
func (r *PostgresRepository) Transfer(ctx context.Context, fromAccountNumber, toAccountNumber string, amount int64) (*domain.TransferResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		"SELECT id, account_number, balance, overdraft_limit FROM accounts WHERE account_number = ANY($1) ORDER BY id FOR UPDATE",
		[]string{fromAccountNumber, toAccountNumber},
	)
	if err != nil {
		return nil, err
	}

	type lockedAccount struct {
		id             int64
		balance        int64
		overdraftLimit int64
	}
	locked := make(map[string]lockedAccount, 2)
	for rows.Next() {
		var acc lockedAccount
		var number string
		if err := rows.Scan(&acc.id, &number, &acc.balance, &acc.overdraftLimit); err != nil {
			rows.Close()
			return nil, err
		}
		locked[number] = acc
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	from, ok := locked[fromAccountNumber]
	if !ok {
		return nil, ErrSourceAccountNotFound
	}
	to, ok := locked[toAccountNumber]
	if !ok {
		return nil, ErrDestinationAccountNotFound
	}

	if from.balance-amount < -from.overdraftLimit {
		return nil, ErrInsufficientFunds
	}

	if _, err := tx.Exec(ctx, "UPDATE accounts SET balance = balance - $1 WHERE id = $2", amount, from.id); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, "UPDATE accounts SET balance = balance + $1 WHERE id = $2", amount, to.id); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &domain.TransferResult{
		FromAccountNumber: fromAccountNumber,
		ToAccountNumber:   toAccountNumber,
		Amount:            amount,
		FromBalance:       from.balance - amount,
		ToBalance:         to.balance + amount,
	}, nil
}

// AccrueDailyInterest applies one day's interest to every account holding a
// positive balance at a positive rate, in a single statement.
func (r *PostgresRepository) AccrueDailyInterest(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts
		SET balance = balance + ROUND(balance * interest_rate / 100.0 / 365.0)::bigint
		WHERE balance > 0 AND interest_rate > 0
	`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const operatorColumns = "id, first_name, last_name, address_line1, address_line2, address_line3, address_city, address_postcode, username, password_hash, full_rights"

func scanOperator(row pgx.Row) (*domain.Operator, error) {
	var op domain.Operator
	err := row.Scan(
		&op.ID, &op.FirstName, &op.LastName,
		&op.Address.Line1, &op.Address.Line2, &op.Address.Line3,
		&op.Address.City, &op.Address.Postcode,
		&op.Username, &op.PasswordHash, &op.FullRights,
	)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// FindOperatorsByUsername returns every operator matching the username. Login
// demands exactly one match; returning the slice lets the caller make that
// decision explicitly.
func (r *PostgresRepository) FindOperatorsByUsername(ctx context.Context, username string) ([]domain.Operator, error) {
	rows, err := r.db.Query(ctx, "SELECT "+operatorColumns+" FROM admins WHERE username = $1", username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var operators []domain.Operator
	for rows.Next() {
		op, err := scanOperator(rows)
		if err != nil {
			return nil, err
		}
		operators = append(operators, *op)
	}
	return operators, rows.Err()
}

// FindOperatorByID retrieves a single operator by primary key.
func (r *PostgresRepository) FindOperatorByID(ctx context.Context, operatorID int64) (*domain.Operator, error) {
	op, err := scanOperator(r.db.QueryRow(ctx, "SELECT "+operatorColumns+" FROM admins WHERE id = $1", operatorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOperatorNotFound
		}
		return nil, err
	}
	return op, nil
}

// CreateOperator inserts a new operator row. A duplicate username maps to
// ErrDuplicateUsername.
func (r *PostgresRepository) CreateOperator(ctx context.Context, op *domain.Operator) (*domain.Operator, error) {
	query := `
		INSERT INTO admins (first_name, last_name, address_line1, address_line2, address_line3, address_city, address_postcode, username, password_hash, full_rights)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + operatorColumns
	created, err := scanOperator(r.db.QueryRow(ctx, query,
		op.FirstName, op.LastName,
		op.Address.Line1, op.Address.Line2, op.Address.Line3, op.Address.City, op.Address.Postcode,
		op.Username, op.PasswordHash, op.FullRights,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, err
	}
	return created, nil
}

// UpdateOperator applies a partial update to an operator's details.
func (r *PostgresRepository) UpdateOperator(ctx context.Context, operatorID int64, upd domain.OperatorUpdate) error {
	sets, args := buildSets([]setField{
		{"first_name", upd.FirstName},
		{"last_name", upd.LastName},
		{"address_line1", upd.AddressLine1},
		{"address_line2", upd.AddressLine2},
		{"address_line3", upd.AddressLine3},
		{"address_city", upd.AddressCity},
		{"address_postcode", upd.AddressPostcode},
		{"full_rights", upd.FullRights},
	})
	if len(sets) == 0 {
		return ErrNoFieldsToUpdate
	}

	args = append(args, operatorID)
	query := fmt.Sprintf("UPDATE admins SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOperatorNotFound
	}
	return nil
}

// UpdateOperatorPassword stores a freshly derived password hash.
func (r *PostgresRepository) UpdateOperatorPassword(ctx context.Context, operatorID int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx, "UPDATE admins SET password_hash = $1 WHERE id = $2", passwordHash, operatorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOperatorNotFound
	}
	return nil
}

// accountExtreme returns the account holding the highest or lowest value of
// an aggregated column, with its owner materialized. column and direction are
// fixed strings chosen by the report methods, never caller input.
func (r *PostgresRepository) accountExtreme(ctx context.Context, column, direction string) (*domain.BankAccount, error) {
	query := fmt.Sprintf("SELECT %s %s ORDER BY a.%s %s, a.id LIMIT 1", accountColumns, accountFrom, column, direction)
	acc, err := scanAccount(r.db.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoAccounts
		}
		return nil, err
	}
	return acc, nil
}

// InterestReport aggregates interest figures over the whole account
// population. An empty population yields ErrNoAccounts rather than a divide
// by zero.
func (r *PostgresRepository) InterestReport(ctx context.Context) (*domain.InterestReport, error) {
	report := &domain.InterestReport{}
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(interest_rate), 0),
		       COALESCE(SUM(ROUND(balance * interest_rate / 100.0)), 0)::bigint
		FROM accounts
	`).Scan(&report.AccountCount, &report.MeanRate, &report.ProjectedAnnual)
	if err != nil {
		return nil, err
	}
	if report.AccountCount == 0 {
		return nil, ErrNoAccounts
	}

	if report.HighestRate, err = r.accountExtreme(ctx, "interest_rate", "DESC"); err != nil {
		return nil, err
	}
	if report.LowestRate, err = r.accountExtreme(ctx, "interest_rate", "ASC"); err != nil {
		return nil, err
	}
	return report, nil
}

// BalanceReport aggregates balances over the whole account population.
func (r *PostgresRepository) BalanceReport(ctx context.Context) (*domain.BalanceReport, error) {
	report := &domain.BalanceReport{}
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(ROUND(AVG(balance)), 0)::bigint,
		       COALESCE(SUM(balance), 0)::bigint
		FROM accounts
	`).Scan(&report.AccountCount, &report.MeanBalance, &report.TotalBalance)
	if err != nil {
		return nil, err
	}
	if report.AccountCount == 0 {
		return nil, ErrNoAccounts
	}

	if report.Highest, err = r.accountExtreme(ctx, "balance", "DESC"); err != nil {
		return nil, err
	}
	if report.Lowest, err = r.accountExtreme(ctx, "balance", "ASC"); err != nil {
		return nil, err
	}
	return report, nil
}

// OverdraftReport aggregates overdraft limits over the whole account population.
func (r *PostgresRepository) OverdraftReport(ctx context.Context) (*domain.OverdraftReport, error) {
	report := &domain.OverdraftReport{}
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(ROUND(AVG(overdraft_limit)), 0)::bigint,
		       COALESCE(SUM(overdraft_limit), 0)::bigint
		FROM accounts
	`).Scan(&report.AccountCount, &report.MeanLimit, &report.TotalLimit)
	if err != nil {
		return nil, err
	}
	if report.AccountCount == 0 {
		return nil, ErrNoAccounts
	}

	if report.Highest, err = r.accountExtreme(ctx, "overdraft_limit", "DESC"); err != nil {
		return nil, err
	}
	if report.Lowest, err = r.accountExtreme(ctx, "overdraft_limit", "ASC"); err != nil {
		return nil, err
	}
	return report, nil
}

// CustomerReport counts the customer population.
func (r *PostgresRepository) CustomerReport(ctx context.Context) (*domain.CustomerReport, error) {
	report := &domain.CustomerReport{}
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM customers").Scan(&report.CustomerCount); err != nil {
		return nil, err
	}
	if report.CustomerCount == 0 {
		return nil, ErrNoCustomers
	}
	return report, nil
}

// setField pairs a column with an optionally supplied value for partial
// updates. value must be a typed nil-able pointer.
type setField struct {
	column string
	value  interface{}
}

// buildSets renders the supplied fields of a partial update into SET clauses
// with $n placeholders, skipping nil pointers.
func buildSets(fields []setField) ([]string, []interface{}) {
	var sets []string
	var args []interface{}
	argPos := 1
	for _, f := range fields {
		switch v := f.value.(type) {
		case *string:
			if v == nil {
				continue
			}
			args = append(args, *v)
		case *int64:
			if v == nil {
				continue
			}
			args = append(args, *v)
		case *float64:
			if v == nil {
				continue
			}
			args = append(args, *v)
		case *bool:
			if v == nil {
				continue
			}
			args = append(args, *v)
		default:
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", f.column, argPos))
		argPos++
	}
	return sets, args
}
