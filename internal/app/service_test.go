package app

import (
	"context"
	"errors"
	"testing"

	"github.com/crestbank/backoffice-service/internal/domain"
	"github.com/crestbank/backoffice-service/internal/store"
)

func testAddress() domain.Address {
	return domain.Address{Line1: "4 Bank St", City: "Leeds", Postcode: "LS1 1AA"}
}

func newTestService(repo store.Repository) *Service {
	return NewService(repo, nil, nil, 0, 0)
}

// signIn installs the operator directly, skipping credential verification.
func signIn(s *Service, fullRights bool) *domain.Operator {
	op := &domain.Operator{
		ID:         1,
		FirstName:  "Joan",
		LastName:   "Clarke",
		Address:    testAddress(),
		Username:   "jclarke",
		FullRights: fullRights,
	}
	s.session.begin(op)
	return op
}

type loginRepoStub struct {
	store.Repository

	operators []domain.Operator
	err       error
}

func (s *loginRepoStub) FindOperatorsByUsername(ctx context.Context, username string) ([]domain.Operator, error) {
	return s.operators, s.err
}

func TestLogin(t *testing.T) {
	hash, err := HashPassword("opening-times")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	operator := domain.Operator{ID: 3, Username: "teller1", PasswordHash: hash}

	testCases := []struct {
		name      string
		operators []domain.Operator
		password  string
		wantErr   error
	}{
		{
			name:      "valid credentials",
			operators: []domain.Operator{operator},
			password:  "opening-times",
		},
		{
			name:      "wrong password",
			operators: []domain.Operator{operator},
			password:  "closing-times",
			wantErr:   ErrInvalidCredentials,
		},
		{
			name:      "unknown username",
			operators: nil,
			password:  "opening-times",
			wantErr:   ErrInvalidCredentials,
		},
		{
			name:      "ambiguous username",
			operators: []domain.Operator{operator, operator},
			password:  "opening-times",
			wantErr:   ErrInvalidCredentials,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(&loginRepoStub{operators: tc.operators})
			got, sessionID, err := svc.Login(context.Background(), "teller1", tc.password)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if _, sErr := svc.requireSession(); !errors.Is(sErr, ErrNotAuthenticated) {
					t.Error("expected no session after failed login")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.ID != operator.ID {
				t.Errorf("expected operator %d, got %d", operator.ID, got.ID)
			}
			if sessionID == "" {
				t.Error("expected a non-empty session id")
			}
			liveID, err := svc.SessionID()
			if err != nil || liveID != sessionID {
				t.Errorf("expected live session id %q, got %q (err=%v)", sessionID, liveID, err)
			}
		})
	}
}

func TestLoginRegeneratesSessionID(t *testing.T) {
	hash, err := HashPassword("opening-times")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	svc := newTestService(&loginRepoStub{operators: []domain.Operator{{ID: 3, Username: "teller1", PasswordHash: hash}}})

	_, first, err := svc.Login(context.Background(), "teller1", "opening-times")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, second, err := svc.Login(context.Background(), "teller1", "opening-times")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first == second {
		t.Error("expected a fresh session id per login")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	svc := newTestService(&loginRepoStub{})
	signIn(svc, true)

	svc.Logout()
	if _, err := svc.requireSession(); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	// A second logout with nobody signed in is a no-op.
	svc.Logout()
}

func TestGuardsBlockUnauthenticatedAccess(t *testing.T) {
	svc := newTestService(&loginRepoStub{})
	ctx := context.Background()

	if _, err := svc.SearchCustomers(ctx, store.CustomerFilter{All: true}); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("SearchCustomers: expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := svc.Deposit(ctx, "1000000000000001", 100); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Deposit: expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := svc.InterestReport(ctx); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("InterestReport: expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := svc.DeleteCustomer(ctx, 1); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("DeleteCustomer: expected ErrNotAuthenticated, got %v", err)
	}
}

func TestFullRightsGuard(t *testing.T) {
	svc := newTestService(&loginRepoStub{})
	signIn(svc, false)
	ctx := context.Background()

	if _, err := svc.DeleteCustomer(ctx, 1); !errors.Is(err, ErrFullRightsRequired) {
		t.Errorf("DeleteCustomer: expected ErrFullRightsRequired, got %v", err)
	}
	if _, err := svc.CloseAccount(ctx, 1); !errors.Is(err, ErrFullRightsRequired) {
		t.Errorf("CloseAccount: expected ErrFullRightsRequired, got %v", err)
	}
	if _, err := svc.CreateOperator(ctx, "A", "B", testAddress(), "ab", "longenough", false); !errors.Is(err, ErrFullRightsRequired) {
		t.Errorf("CreateOperator: expected ErrFullRightsRequired, got %v", err)
	}
}

type moneyRepoStub struct {
	store.Repository

	account     *domain.BankAccount
	findErr     error
	depositErr  error
	withdrawErr error
	balance     int64

	depositedAmount  int64
	withdrawnAmount  int64
	transferredFrom  string
	transferredTo    string
	transferredAmout int64
}

func (s *moneyRepoStub) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.BankAccount, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.account, nil
}

func (s *moneyRepoStub) Deposit(ctx context.Context, accountID, amount int64) (int64, error) {
	if s.depositErr != nil {
		return 0, s.depositErr
	}
	s.depositedAmount = amount
	return s.balance, nil
}

func (s *moneyRepoStub) Withdraw(ctx context.Context, accountID, amount int64) (int64, error) {
	if s.withdrawErr != nil {
		return 0, s.withdrawErr
	}
	s.withdrawnAmount = amount
	return s.balance, nil
}

func (s *moneyRepoStub) Transfer(ctx context.Context, from, to string, amount int64) (*domain.TransferResult, error) {
	s.transferredFrom = from
	s.transferredTo = to
	s.transferredAmout = amount
	return &domain.TransferResult{FromAccountNumber: from, ToAccountNumber: to, Amount: amount}, nil
}

func TestDeposit(t *testing.T) {
	repo := &moneyRepoStub{account: &domain.BankAccount{ID: 9, AccountNumber: "1000000000000001"}, balance: 2500}
	svc := newTestService(repo)
	signIn(svc, false)

	balance, err := svc.Deposit(context.Background(), "1000000000000001", 2500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != 2500 || repo.depositedAmount != 2500 {
		t.Errorf("expected balance 2500 and deposited 2500, got %d and %d", balance, repo.depositedAmount)
	}
}

func TestDepositRejectsNegativeAmountBeforeRepository(t *testing.T) {
	repo := &moneyRepoStub{findErr: errors.New("repository must not be reached")}
	svc := newTestService(repo)
	signIn(svc, false)

	if _, err := svc.Deposit(context.Background(), "1000000000000001", -1); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
}

func TestWithdrawPropagatesInsufficientFunds(t *testing.T) {
	repo := &moneyRepoStub{
		account:     &domain.BankAccount{ID: 9, AccountNumber: "1000000000000001"},
		withdrawErr: store.ErrInsufficientFunds,
	}
	svc := newTestService(repo)
	signIn(svc, false)

	if _, err := svc.Withdraw(context.Background(), "1000000000000001", 100); !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
}

func TestTransferValidation(t *testing.T) {
	repo := &moneyRepoStub{}
	svc := newTestService(repo)
	signIn(svc, false)
	ctx := context.Background()

	if _, err := svc.Transfer(ctx, "1000000000000001", "1000000000000001", 100); !errors.Is(err, ErrSameAccount) {
		t.Errorf("expected ErrSameAccount, got %v", err)
	}
	if _, err := svc.Transfer(ctx, "1000000000000001", "1000000000000002", -5); !errors.Is(err, ErrNegativeAmount) {
		t.Errorf("expected ErrNegativeAmount, got %v", err)
	}

	result, err := svc.Transfer(ctx, "1000000000000001", "1000000000000002", 750)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Amount != 750 || repo.transferredFrom != "1000000000000001" || repo.transferredTo != "1000000000000002" {
		t.Errorf("unexpected transfer call: %+v from=%s to=%s", result, repo.transferredFrom, repo.transferredTo)
	}
}

// ledgerRepoStub keeps account state in memory and enforces the overdraft
// rule the way storage does, so tests can observe balances after refusals.
type ledgerRepoStub struct {
	store.Repository

	accounts map[string]*domain.BankAccount
}

func (s *ledgerRepoStub) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.BankAccount, error) {
	acc, ok := s.accounts[accountNumber]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	found := *acc
	return &found, nil
}

func (s *ledgerRepoStub) Withdraw(ctx context.Context, accountID, amount int64) (int64, error) {
	for _, acc := range s.accounts {
		if acc.ID != accountID {
			continue
		}
		if !acc.CanWithdraw(amount) {
			return 0, store.ErrInsufficientFunds
		}
		acc.Balance -= amount
		return acc.Balance, nil
	}
	return 0, store.ErrAccountNotFound
}

func (s *ledgerRepoStub) Transfer(ctx context.Context, from, to string, amount int64) (*domain.TransferResult, error) {
	src, ok := s.accounts[from]
	if !ok {
		return nil, store.ErrSourceAccountNotFound
	}
	dst, ok := s.accounts[to]
	if !ok {
		return nil, store.ErrDestinationAccountNotFound
	}
	if !src.CanWithdraw(amount) {
		return nil, store.ErrInsufficientFunds
	}
	src.Balance -= amount
	dst.Balance += amount
	return &domain.TransferResult{
		FromAccountNumber: from,
		ToAccountNumber:   to,
		Amount:            amount,
		FromBalance:       src.Balance,
		ToBalance:         dst.Balance,
	}, nil
}

func TestWithdrawRefusalLeavesBalanceUnchanged(t *testing.T) {
	repo := &ledgerRepoStub{accounts: map[string]*domain.BankAccount{
		"1000000000000001": {ID: 9, AccountNumber: "1000000000000001", Balance: 100, OverdraftLimit: 50},
	}}
	svc := newTestService(repo)
	signIn(svc, false)
	ctx := context.Background()

	if _, err := svc.Withdraw(ctx, "1000000000000001", 200); !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if got := repo.accounts["1000000000000001"].Balance; got != 100 {
		t.Errorf("refused withdrawal changed the balance: got %d, want 100", got)
	}

	// The full overdraft is still available after the refusal.
	balance, err := svc.Withdraw(ctx, "1000000000000001", 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if balance != -50 {
		t.Errorf("expected balance -50 at the overdraft limit, got %d", balance)
	}
}

func TestTransferFailureLeavesDestinationUntouched(t *testing.T) {
	repo := &ledgerRepoStub{accounts: map[string]*domain.BankAccount{
		"1000000000000001": {ID: 9, AccountNumber: "1000000000000001", Balance: 100},
		"1000000000000002": {ID: 10, AccountNumber: "1000000000000002", Balance: 500},
	}}
	svc := newTestService(repo)
	signIn(svc, false)
	ctx := context.Background()

	if _, err := svc.Transfer(ctx, "1000000000000001", "1000000000000002", 200); !errors.Is(err, store.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if got := repo.accounts["1000000000000001"].Balance; got != 100 {
		t.Errorf("failed transfer changed the source balance: got %d, want 100", got)
	}
	if got := repo.accounts["1000000000000002"].Balance; got != 500 {
		t.Errorf("failed transfer changed the destination balance: got %d, want 500", got)
	}

	if _, err := svc.Transfer(ctx, "1000000000000001", "9999999999999999", 50); !errors.Is(err, store.ErrDestinationAccountNotFound) {
		t.Fatalf("expected ErrDestinationAccountNotFound, got %v", err)
	}
	if got := repo.accounts["1000000000000001"].Balance; got != 100 {
		t.Errorf("unresolved destination changed the source balance: got %d, want 100", got)
	}
}

type accountNumberRepoStub struct {
	store.Repository

	existing   map[string]bool
	collisions int // first N existence checks report taken
	checked    []string
	created    *domain.BankAccount
}

func (s *accountNumberRepoStub) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	s.checked = append(s.checked, accountNumber)
	if len(s.checked) <= s.collisions {
		return true, nil
	}
	return s.existing[accountNumber], nil
}

func (s *accountNumberRepoStub) CreateAccount(ctx context.Context, customerID int64, accountName, accountNumber string, interestRate float64, overdraftLimit int64) (*domain.BankAccount, error) {
	s.created = &domain.BankAccount{ID: 1, AccountNumber: accountNumber, AccountName: accountName, InterestRate: interestRate, OverdraftLimit: overdraftLimit}
	return s.created, nil
}

func TestOpenAccountGeneratesSixteenDigitNumber(t *testing.T) {
	repo := &accountNumberRepoStub{}
	svc := newTestService(repo)
	signIn(svc, false)

	account, err := svc.OpenAccount(context.Background(), 4, "Everyday Saver", 1.5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(account.AccountNumber) != 16 {
		t.Errorf("expected a 16-digit account number, got %q", account.AccountNumber)
	}
	if account.AccountNumber[0] == '0' {
		t.Errorf("expected no leading zero, got %q", account.AccountNumber)
	}
	if account.Balance != 0 {
		t.Errorf("expected a zero opening balance, got %d", account.Balance)
	}
}

func TestGenerateAccountNumber(t *testing.T) {
	repo := &accountNumberRepoStub{collisions: 2}
	svc := newTestService(repo)

	if _, err := svc.GenerateAccountNumber(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated without a session, got %v", err)
	}

	signIn(svc, false)
	number, err := svc.GenerateAccountNumber(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(number) != 16 || number[0] == '0' {
		t.Errorf("expected a 16-digit number without a leading zero, got %q", number)
	}
	if len(repo.checked) != 3 {
		t.Errorf("expected two collisions and one free draw, got %d checks", len(repo.checked))
	}
	if repo.checked[len(repo.checked)-1] != number {
		t.Errorf("expected the returned number to be the last one checked, got %q vs %q", number, repo.checked[len(repo.checked)-1])
	}
}

func TestOpenAccountValidation(t *testing.T) {
	svc := newTestService(&accountNumberRepoStub{})
	signIn(svc, false)
	ctx := context.Background()

	if _, err := svc.OpenAccount(ctx, 4, "", 1.5, 0); !errors.Is(err, ErrInvalidAccountData) {
		t.Errorf("empty name: expected ErrInvalidAccountData, got %v", err)
	}
	if _, err := svc.OpenAccount(ctx, 4, "Everyday Saver", 1.5, -100); !errors.Is(err, ErrInvalidAccountData) {
		t.Errorf("negative overdraft: expected ErrInvalidAccountData, got %v", err)
	}
}

type searchRepoStub struct {
	store.Repository

	customers      []domain.Customer
	byOwner        map[int64][]domain.BankAccount
	direct         []domain.BankAccount
	accountFilters []store.AccountFilter
}

func (s *searchRepoStub) FindCustomers(ctx context.Context, filter store.CustomerFilter) ([]domain.Customer, error) {
	return s.customers, nil
}

func (s *searchRepoStub) FindAccounts(ctx context.Context, filter store.AccountFilter) ([]domain.BankAccount, error) {
	s.accountFilters = append(s.accountFilters, filter)
	if filter.CustomerID != nil {
		return s.byOwner[*filter.CustomerID], nil
	}
	return s.direct, nil
}

func TestSearchAccountsUnionsOwnerAndDirectPhases(t *testing.T) {
	shared := domain.BankAccount{ID: 2, AccountNumber: "1000000000000002"}
	repo := &searchRepoStub{
		customers: []domain.Customer{{ID: 10}, {ID: 11}},
		byOwner: map[int64][]domain.BankAccount{
			10: {{ID: 1, AccountNumber: "1000000000000001"}, shared},
			11: {{ID: 3, AccountNumber: "1000000000000003"}},
		},
		direct: []domain.BankAccount{shared, {ID: 4, AccountNumber: "1000000000000004"}},
	}
	svc := newTestService(repo)
	signIn(svc, false)

	name := "Smith"
	accountName := "Saver"
	results, err := svc.SearchAccounts(context.Background(), AccountSearch{
		Owner:   store.CustomerFilter{LastName: &name, MatchAll: true},
		Account: store.AccountFilter{AccountName: &accountName, MatchAll: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 de-duplicated accounts, got %d", len(results))
	}
	seen := make(map[int64]int)
	for _, acc := range results {
		seen[acc.ID]++
	}
	if seen[shared.ID] != 1 {
		t.Errorf("expected shared account exactly once, got %d", seen[shared.ID])
	}
}

func TestSearchAccountsWithoutCriteria(t *testing.T) {
	svc := newTestService(&searchRepoStub{})
	signIn(svc, false)

	if _, err := svc.SearchAccounts(context.Background(), AccountSearch{}); !errors.Is(err, store.ErrNoSearchData) {
		t.Fatalf("expected ErrNoSearchData, got %v", err)
	}
}

func TestSearchAccountsAllBypassesComposition(t *testing.T) {
	repo := &searchRepoStub{direct: []domain.BankAccount{{ID: 1}}}
	svc := newTestService(repo)
	signIn(svc, false)

	results, err := svc.SearchAccounts(context.Background(), AccountSearch{Account: store.AccountFilter{All: true}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 account, got %d", len(results))
	}
	if len(repo.accountFilters) != 1 || !repo.accountFilters[0].All {
		t.Errorf("expected a single All query, got %+v", repo.accountFilters)
	}
}

type passwordRepoStub struct {
	store.Repository

	updatedHash string
}

func (s *passwordRepoStub) UpdateOperatorPassword(ctx context.Context, operatorID int64, passwordHash string) error {
	s.updatedHash = passwordHash
	return nil
}

func TestChangePassword(t *testing.T) {
	hash, err := HashPassword("old-password")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	testCases := []struct {
		name    string
		old     string
		new     string
		confirm string
		wantErr error
	}{
		{"success", "old-password", "new-password", "new-password", nil},
		{"wrong old password", "not-the-old-one", "new-password", "new-password", ErrInvalidCredentials},
		{"confirmation mismatch", "old-password", "new-password", "other-password", ErrPasswordMismatch},
		{"too short", "old-password", "short", "short", ErrPasswordTooShort},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &passwordRepoStub{}
			svc := newTestService(repo)
			op := signIn(svc, false)
			op.PasswordHash = hash
			svc.session.begin(op)

			err := svc.ChangePassword(context.Background(), tc.old, tc.new, tc.confirm)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				if repo.updatedHash != "" {
					t.Error("expected no password update on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !VerifyPassword(repo.updatedHash, tc.new) {
				t.Error("expected stored hash to verify against the new password")
			}
		})
	}
}

type customerRepoStub struct {
	store.Repository

	created *domain.Customer
	updated *domain.CustomerUpdate
	closure *domain.ClosureResult
}

func (s *customerRepoStub) CreateCustomer(ctx context.Context, firstName, lastName string, addr domain.Address) (*domain.Customer, error) {
	s.created = &domain.Customer{ID: 1, FirstName: firstName, LastName: lastName, Address: addr}
	return s.created, nil
}

func (s *customerRepoStub) UpdateCustomer(ctx context.Context, customerID int64, upd domain.CustomerUpdate) error {
	s.updated = &upd
	return nil
}

func (s *customerRepoStub) DeleteCustomerCascade(ctx context.Context, customerID int64) (*domain.ClosureResult, error) {
	return s.closure, nil
}

func TestCreateCustomerValidation(t *testing.T) {
	svc := newTestService(&customerRepoStub{})
	signIn(svc, false)
	ctx := context.Background()

	if _, err := svc.CreateCustomer(ctx, "", "Smith", testAddress()); !errors.Is(err, ErrInvalidCustomerData) {
		t.Errorf("empty first name: expected ErrInvalidCustomerData, got %v", err)
	}
	if _, err := svc.CreateCustomer(ctx, "Jo", "Smith", domain.Address{Line1: "4 Bank St"}); !errors.Is(err, ErrInvalidCustomerData) {
		t.Errorf("incomplete address: expected ErrInvalidCustomerData, got %v", err)
	}

	customer, err := svc.CreateCustomer(ctx, "Jo", "Smith", testAddress())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if customer.FullName() != "Jo Smith" {
		t.Errorf("unexpected customer: %+v", customer)
	}
}

func TestUpdateCustomerRejectsEmptyUpdate(t *testing.T) {
	repo := &customerRepoStub{}
	svc := newTestService(repo)
	signIn(svc, false)

	err := svc.UpdateCustomer(context.Background(), 1, domain.CustomerUpdate{})
	if !errors.Is(err, store.ErrNoFieldsToUpdate) {
		t.Fatalf("expected ErrNoFieldsToUpdate, got %v", err)
	}
	if repo.updated != nil {
		t.Error("expected repository untouched for an empty update")
	}
}

func TestDeleteCustomerReportsClosure(t *testing.T) {
	repo := &customerRepoStub{closure: &domain.ClosureResult{AccountsClosed: 3, NetBalance: -1500}}
	svc := newTestService(repo)
	signIn(svc, true)

	result, err := svc.DeleteCustomer(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AccountsClosed != 3 || result.NetBalance != -1500 {
		t.Errorf("unexpected closure result: %+v", result)
	}
}

// failingPublisher records publish attempts and refuses them all.
type failingPublisher struct {
	routingKeys []string
}

func (p *failingPublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	p.routingKeys = append(p.routingKeys, routingKey)
	return errors.New("broker unavailable")
}

func (p *failingPublisher) Close() {}

func TestDeleteCustomerSurvivesPublishFailure(t *testing.T) {
	repo := &customerRepoStub{closure: &domain.ClosureResult{AccountsClosed: 1, NetBalance: 200}}
	publisher := &failingPublisher{}
	svc := NewService(repo, publisher, nil, 0, 0)
	signIn(svc, true)

	result, err := svc.DeleteCustomer(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NetBalance != 200 {
		t.Errorf("unexpected closure result: %+v", result)
	}
	if len(publisher.routingKeys) != 1 || publisher.routingKeys[0] != "customer.deleted" {
		t.Errorf("expected one customer.deleted event, got %v", publisher.routingKeys)
	}
}
