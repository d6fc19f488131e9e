/**
 * @description
 * This file defines the BankAccount domain model. Balances and overdraft
 * limits are held as int64 values in minor currency units (pence) so that no
 * monetary arithmetic ever touches floating point. The interest rate is the
 * only decimal field and is a percentage, not money.
 */

package domain

// BankAccount represents one account row together with its materialized owner.
// This struct maps to the `accounts` table joined to `customers`.
type BankAccount struct {
	ID             int64    `json:"id"`
	AccountNumber  string   `json:"account_number"` // 16 digits, unique
	AccountName    string   `json:"account_name"`
	Balance        int64    `json:"balance"` // minor units
	InterestRate   float64  `json:"interest_rate"`
	OverdraftLimit int64    `json:"overdraft_limit"` // magnitude balance may go below zero
	Customer       Customer `json:"customer"`
}

// CanWithdraw reports whether removing amount would keep the balance within
// the overdraft limit. Storage enforces the same rule atomically; this helper
// exists for in-memory checks and tests.
func (a *BankAccount) CanWithdraw(amount int64) bool {
	return a.Balance-amount >= -a.OverdraftLimit
}

// AccountUpdate carries a partial update for an account. Nil fields are left
// untouched; at least one field must be set.
type AccountUpdate struct {
	AccountName    *string  `json:"account_name,omitempty"`
	InterestRate   *float64 `json:"interest_rate,omitempty"`
	OverdraftLimit *int64   `json:"overdraft_limit,omitempty"`
}

// Empty reports whether no field was supplied.
func (u AccountUpdate) Empty() bool {
	return u.AccountName == nil && u.InterestRate == nil && u.OverdraftLimit == nil
}

// TransferResult reports the committed balances after a completed transfer.
type TransferResult struct {
	FromAccountNumber string `json:"from_account_number"`
	ToAccountNumber   string `json:"to_account_number"`
	Amount            int64  `json:"amount"`
	FromBalance       int64  `json:"from_balance"`
	ToBalance         int64  `json:"to_balance"`
}

// ClosureResult reports what a deleted account (or cascade of accounts) held
// at the moment of deletion. A positive net balance is owed to the customer,
// a negative one is owed by the customer.
type ClosureResult struct {
	AccountsClosed int   `json:"accounts_closed"`
	NetBalance     int64 `json:"net_balance"`
}
