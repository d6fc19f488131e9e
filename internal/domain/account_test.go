package domain

import "testing"

func TestCanWithdraw(t *testing.T) {
	testCases := []struct {
		name      string
		balance   int64
		overdraft int64
		amount    int64
		want      bool
	}{
		{name: "within balance", balance: 100, overdraft: 0, amount: 100, want: true},
		{name: "exceeds balance without overdraft", balance: 100, overdraft: 0, amount: 101, want: false},
		{name: "exactly at overdraft limit", balance: 100, overdraft: 50, amount: 150, want: true},
		{name: "one past overdraft limit", balance: 100, overdraft: 50, amount: 151, want: false},
		{name: "already overdrawn", balance: -40, overdraft: 50, amount: 10, want: true},
		{name: "zero amount on overdrawn account at limit", balance: -50, overdraft: 50, amount: 0, want: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			acc := &BankAccount{Balance: tc.balance, OverdraftLimit: tc.overdraft}
			if got := acc.CanWithdraw(tc.amount); got != tc.want {
				t.Errorf("CanWithdraw(%d) with balance %d overdraft %d = %v, want %v", tc.amount, tc.balance, tc.overdraft, got, tc.want)
			}
		})
	}
}
