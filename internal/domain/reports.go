/**
 * @description
 * Read-only aggregate report types computed over the whole account or
 * customer population. Every highest/lowest figure references the concrete
 * account holding it so a caller can navigate straight to the record.
 */

package domain

// InterestReport summarizes interest rates across all accounts.
type InterestReport struct {
	AccountCount    int          `json:"account_count"`
	MeanRate        float64      `json:"mean_rate"`
	ProjectedAnnual int64        `json:"projected_annual_interest"` // minor units
	HighestRate     *BankAccount `json:"highest_rate_account"`
	LowestRate      *BankAccount `json:"lowest_rate_account"`
}

// BalanceReport summarizes balances across all accounts.
type BalanceReport struct {
	AccountCount int          `json:"account_count"`
	MeanBalance  int64        `json:"mean_balance"`
	TotalBalance int64        `json:"total_balance"`
	Highest      *BankAccount `json:"highest_balance_account"`
	Lowest       *BankAccount `json:"lowest_balance_account"`
}

// OverdraftReport summarizes overdraft limits across all accounts.
type OverdraftReport struct {
	AccountCount int          `json:"account_count"`
	MeanLimit    int64        `json:"mean_limit"`
	TotalLimit   int64        `json:"total_limit"`
	Highest      *BankAccount `json:"highest_limit_account"`
	Lowest       *BankAccount `json:"lowest_limit_account"`
}

// CustomerReport summarizes the customer population.
type CustomerReport struct {
	CustomerCount int `json:"customer_count"`
}
