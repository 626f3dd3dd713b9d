package usecase

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"planora-backend/internal/finance/domain"
	"planora-backend/internal/finance/repository"
	"planora-backend/pkg/events"
	"planora-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Expenses this far above the category's historical spread are flagged.
const anomalySigmas = 3

// Minimum history before anomaly flagging kicks in.
const anomalyMinSamples = 5

// financeUsecase owns the in-memory finance collections. Transactions are
// the ledger of record; account balances and budget spent figures are kept
// consistent with it on every mutation.
type financeUsecase struct {
	mu           sync.Mutex
	transactions []domain.Transaction
	accounts     []domain.Account
	categories   []domain.Category
	budgets      []domain.Budget
	bills        []domain.Bill
	goals        []domain.SavingsGoal
	lastSaveErr  string

	repo  repository.FinanceRepository
	sched BillScheduler
	bus   *events.Bus
	log   *logrus.Entry
}

// NewFinanceUsecase loads all collections, seeding builtin categories and a
// default cash account on first run.
func NewFinanceUsecase(repo repository.FinanceRepository, sched BillScheduler, bus *events.Bus) (FinanceUsecase, error) {
	u := &financeUsecase{
		repo:  repo,
		sched: sched,
		bus:   bus,
		log:   logger.Component("finance"),
	}

	if err := loadOrSeed(repo.LoadTransactions, func() []domain.Transaction { return nil }, repo.SaveTransactions, &u.transactions); err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if err := loadOrSeed(repo.LoadAccounts, sampleAccounts, repo.SaveAccounts, &u.accounts); err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	if err := loadOrSeed(repo.LoadCategories, builtinCategories, repo.SaveCategories, &u.categories); err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	if err := loadOrSeed(repo.LoadBudgets, func() []domain.Budget { return nil }, repo.SaveBudgets, &u.budgets); err != nil {
		return nil, fmt.Errorf("load budgets: %w", err)
	}
	if err := loadOrSeed(repo.LoadBills, func() []domain.Bill { return nil }, repo.SaveBills, &u.bills); err != nil {
		return nil, fmt.Errorf("load bills: %w", err)
	}
	if err := loadOrSeed(repo.LoadGoals, func() []domain.SavingsGoal { return nil }, repo.SaveGoals, &u.goals); err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}

	for i := range u.bills {
		u.scheduleBill(&u.bills[i])
	}

	return u, nil
}

func loadOrSeed[T any](load func() ([]T, error), seed func() []T, save func([]T) error, dst *[]T) error {
	rows, err := load()
	switch {
	case err == nil:
		*dst = rows
		return nil
	case errors.Is(err, os.ErrNotExist):
		*dst = seed()
		return save(*dst)
	default:
		return err
	}
}

// AddTransaction validates the form fields and refuses to construct the
// entity when any are invalid; no state changes on rejection.
func (u *financeUsecase) AddTransaction(req TransactionRequest) (*domain.Transaction, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	tx, err := u.buildLocked(req, uuid.New().String(), time.Now())
	if err != nil {
		return nil, err
	}

	u.flagAnomalyLocked(tx)
	u.applyLocked(tx, 1)
	u.transactions = append(u.transactions, *tx)
	u.recomputeBudgetsLocked()
	u.flushLocked()

	u.publish("transaction.created", tx.ID)
	return tx, nil
}

func (u *financeUsecase) GetTransaction(id string) (*domain.Transaction, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.txIndexLocked(id)
	if i < 0 {
		return nil, ErrTransactionNotFound
	}
	tx := u.transactions[i]
	return &tx, nil
}

// ReplaceTransaction implements replace-on-edit: the stored record is
// swapped wholesale for one rebuilt from the request, keeping id and
// creation time.
func (u *financeUsecase) ReplaceTransaction(id string, req TransactionRequest) (*domain.Transaction, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.txIndexLocked(id)
	if i < 0 {
		return nil, ErrTransactionNotFound
	}
	old := u.transactions[i]

	tx, err := u.buildLocked(req, old.ID, old.CreatedAt)
	if err != nil {
		return nil, err
	}

	u.applyLocked(&old, -1)
	u.flagAnomalyLocked(tx)
	u.applyLocked(tx, 1)
	u.transactions[i] = *tx
	u.recomputeBudgetsLocked()
	u.flushLocked()

	u.publish("transaction.updated", id)
	return tx, nil
}

func (u *financeUsecase) DeleteTransaction(id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.txIndexLocked(id)
	if i < 0 {
		return ErrTransactionNotFound
	}
	old := u.transactions[i]
	u.applyLocked(&old, -1)
	u.transactions = append(u.transactions[:i], u.transactions[i+1:]...)
	u.recomputeBudgetsLocked()
	u.flushLocked()

	u.publish("transaction.deleted", id)
	return nil
}

func (u *financeUsecase) Transactions() []domain.Transaction {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]domain.Transaction, len(u.transactions))
	copy(out, u.transactions)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func (u *financeUsecase) CreateAccount(name string, accType domain.AccountType, openingBalance domain.Money) (*domain.Account, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}

	account := domain.Account{
		ID:      uuid.New().String(),
		Name:    name,
		Type:    accType,
		Balance: openingBalance,
	}

	u.mu.Lock()
	u.accounts = append(u.accounts, account)
	u.flushLocked()
	u.mu.Unlock()

	u.publish("account.created", account.ID)
	return &account, nil
}

// DeleteAccount clears the account reference on dependent transactions
// rather than leaving a dangling id.
func (u *financeUsecase) DeleteAccount(id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.accountIndexLocked(id)
	if i < 0 {
		return ErrAccountNotFound
	}
	u.accounts = append(u.accounts[:i], u.accounts[i+1:]...)
	for j := range u.transactions {
		if u.transactions[j].AccountID == id {
			u.transactions[j].AccountID = ""
		}
	}
	u.flushLocked()

	u.publish("account.deleted", id)
	return nil
}

func (u *financeUsecase) Accounts() []domain.Account {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]domain.Account, len(u.accounts))
	copy(out, u.accounts)
	return out
}

func (u *financeUsecase) CreateCategory(name, icon string) (*domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}

	category := domain.Category{
		ID:   uuid.New().String(),
		Name: name,
		Icon: icon,
	}

	u.mu.Lock()
	u.categories = append(u.categories, category)
	u.flushLocked()
	u.mu.Unlock()

	u.publish("category.created", category.ID)
	return &category, nil
}

// DeleteCategory reassigns dependent transactions to the builtin "Other"
// category and drops any budget set for the deleted one.
func (u *financeUsecase) DeleteCategory(id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	i := u.categoryIndexLocked(id)
	if i < 0 {
		return ErrCategoryNotFound
	}
	if u.categories[i].Builtin {
		return ErrBuiltinCategory
	}
	u.categories = append(u.categories[:i], u.categories[i+1:]...)

	fallback := u.otherCategoryLocked()
	for j := range u.transactions {
		if u.transactions[j].CategoryID == id {
			u.transactions[j].CategoryID = fallback
		}
	}
	for j := len(u.budgets) - 1; j >= 0; j-- {
		if u.budgets[j].CategoryID == id {
			u.budgets = append(u.budgets[:j], u.budgets[j+1:]...)
		}
	}
	u.recomputeBudgetsLocked()
	u.flushLocked()

	u.publish("category.deleted", id)
	return nil
}

func (u *financeUsecase) Categories() []domain.Category {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]domain.Category, len(u.categories))
	copy(out, u.categories)
	return out
}

// SetBudget creates or replaces the budget for a category and recomputes
// its spent figure from the ledger.
func (u *financeUsecase) SetBudget(categoryID string, amount domain.Money) (*domain.Budget, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.categoryIndexLocked(categoryID) < 0 {
		return nil, ErrCategoryNotFound
	}

	var budget *domain.Budget
	for i := range u.budgets {
		if u.budgets[i].CategoryID == categoryID {
			u.budgets[i].Amount = amount
			budget = &u.budgets[i]
			break
		}
	}
	if budget == nil {
		u.budgets = append(u.budgets, domain.Budget{
			ID:         uuid.New().String(),
			CategoryID: categoryID,
			Amount:     amount,
			Spent:      domain.NewMoneyZero(amount.Currency),
		})
		budget = &u.budgets[len(u.budgets)-1]
	}

	u.recomputeBudgetsLocked()
	u.flushLocked()
	result := *budget
	u.publish("budget.updated", result.ID)
	return &result, nil
}

func (u *financeUsecase) DeleteBudget(id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	for i := range u.budgets {
		if u.budgets[i].ID == id {
			u.budgets = append(u.budgets[:i], u.budgets[i+1:]...)
			u.flushLocked()
			u.publish("budget.deleted", id)
			return nil
		}
	}
	return ErrBudgetNotFound
}

func (u *financeUsecase) Budgets() []domain.Budget {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]domain.Budget, len(u.budgets))
	copy(out, u.budgets)
	return out
}

func (u *financeUsecase) CreateBill(name string, amount domain.Money, dueDate time.Time, interval domain.RecurringInterval) (*domain.Bill, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}

	bill := domain.Bill{
		ID:       uuid.New().String(),
		Name:     name,
		Amount:   amount,
		DueDate:  dueDate,
		Interval: interval,
	}

	u.mu.Lock()
	u.bills = append(u.bills, bill)
	u.flushLocked()
	u.mu.Unlock()

	u.scheduleBill(&bill)
	u.publish("bill.created", bill.ID)
	return &bill, nil
}

func (u *financeUsecase) TogglePaid(billID string) (*domain.Bill, error) {
	u.mu.Lock()
	i := u.billIndexLocked(billID)
	if i < 0 {
		u.mu.Unlock()
		return nil, ErrBillNotFound
	}
	u.bills[i].Paid = !u.bills[i].Paid
	bill := u.bills[i]
	u.flushLocked()
	u.mu.Unlock()

	u.scheduleBill(&bill)
	u.publish("bill.updated", bill.ID)
	return &bill, nil
}

func (u *financeUsecase) DeleteBill(id string) error {
	u.mu.Lock()
	i := u.billIndexLocked(id)
	if i < 0 {
		u.mu.Unlock()
		return ErrBillNotFound
	}
	u.bills = append(u.bills[:i], u.bills[i+1:]...)
	u.flushLocked()
	u.mu.Unlock()

	u.sched.Cancel(id)
	u.publish("bill.deleted", id)
	return nil
}

func (u *financeUsecase) Bills() []domain.Bill {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]domain.Bill, len(u.bills))
	copy(out, u.bills)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out
}

func (u *financeUsecase) CreateGoal(name string, target domain.Money, deadline *time.Time) (*domain.SavingsGoal, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}

	goal := domain.SavingsGoal{
		ID:       uuid.New().String(),
		Name:     name,
		Target:   target,
		Saved:    domain.NewMoneyZero(target.Currency),
		Deadline: deadline,
	}

	u.mu.Lock()
	u.goals = append(u.goals, goal)
	u.flushLocked()
	u.mu.Unlock()

	u.publish("goal.created", goal.ID)
	return &goal, nil
}

func (u *financeUsecase) Contribute(goalID string, amount domain.Money) (*domain.SavingsGoal, error) {
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	for i := range u.goals {
		if u.goals[i].ID == goalID {
			u.goals[i].Saved = u.goals[i].Saved.Add(amount)
			goal := u.goals[i]
			u.flushLocked()
			u.publish("goal.updated", goalID)
			return &goal, nil
		}
	}
	return nil, ErrGoalNotFound
}

func (u *financeUsecase) DeleteGoal(id string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	for i := range u.goals {
		if u.goals[i].ID == id {
			u.goals = append(u.goals[:i], u.goals[i+1:]...)
			u.flushLocked()
			u.publish("goal.deleted", id)
			return nil
		}
	}
	return ErrGoalNotFound
}

func (u *financeUsecase) Goals() []domain.SavingsGoal {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]domain.SavingsGoal, len(u.goals))
	copy(out, u.goals)
	return out
}

// Summary aggregates one calendar month of the ledger.
func (u *financeUsecase) Summary(year int, month time.Month) MonthlySummary {
	u.mu.Lock()
	snapshot := make([]domain.Transaction, len(u.transactions))
	copy(snapshot, u.transactions)
	names := make(map[string]string, len(u.categories))
	for _, c := range u.categories {
		names[c.ID] = c.Name
	}
	u.mu.Unlock()

	currency := u.defaultCurrency()
	s := MonthlySummary{
		Year:    year,
		Month:   month,
		Income:  domain.NewMoneyZero(currency),
		Expense: domain.NewMoneyZero(currency),
	}
	byCategory := make(map[string]domain.Money)

	for _, tx := range snapshot {
		if tx.Date.Year() != year || tx.Date.Month() != month {
			continue
		}
		switch tx.Type {
		case domain.TransactionIncome:
			s.Income = s.Income.Add(tx.Amount)
		case domain.TransactionExpense:
			s.Expense = s.Expense.Add(tx.Amount)
			total, ok := byCategory[tx.CategoryID]
			if !ok {
				total = domain.NewMoneyZero(tx.Amount.Currency)
			}
			byCategory[tx.CategoryID] = total.Add(tx.Amount)
		}
	}
	s.Net = s.Income.Sub(s.Expense)

	for id, total := range byCategory {
		s.ByCategory = append(s.ByCategory, CategoryTotal{
			CategoryID: id,
			Name:       names[id],
			Total:      total,
		})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		return s.ByCategory[i].Total.Amount.GreaterThan(s.ByCategory[j].Total.Amount)
	})
	return s
}

func (u *financeUsecase) SaveError() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastSaveErr
}

func (u *financeUsecase) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.flushLocked()
	if u.lastSaveErr != "" {
		return errors.New(u.lastSaveErr)
	}
	return nil
}

// buildLocked validates the request and constructs the transaction. It must
// not touch collection state.
func (u *financeUsecase) buildLocked(req TransactionRequest, id string, createdAt time.Time) (*domain.Transaction, error) {
	if strings.TrimSpace(req.Merchant) == "" {
		return nil, &ValidationError{Field: "merchant", Reason: "required"}
	}
	if req.CategoryID == "" {
		return nil, &ValidationError{Field: "category", Reason: "required"}
	}
	if u.categoryIndexLocked(req.CategoryID) < 0 {
		return nil, &ValidationError{Field: "category", Reason: "unknown category"}
	}
	if req.AccountID == "" {
		return nil, &ValidationError{Field: "account", Reason: "required"}
	}
	accountIdx := u.accountIndexLocked(req.AccountID)
	if accountIdx < 0 {
		return nil, &ValidationError{Field: "account", Reason: "unknown account"}
	}
	if req.Type != domain.TransactionIncome && req.Type != domain.TransactionExpense {
		return nil, &ValidationError{Field: "type", Reason: "must be income or expense"}
	}

	currency := req.Currency
	if currency == "" {
		currency = u.defaultCurrency()
	}
	// Balances and summaries sum raw decimals, so the ledger stays
	// single-currency per account.
	if got := u.accounts[accountIdx].Balance.Currency; got != "" && currency != got {
		return nil, &ValidationError{Field: "currency", Reason: "does not match account currency"}
	}
	amount, err := domain.ParseMoney(strings.TrimSpace(req.Amount), currency)
	if err != nil {
		return nil, &ValidationError{Field: "amount", Reason: "not a valid decimal"}
	}
	if !amount.IsPositive() {
		return nil, &ValidationError{Field: "amount", Reason: "must be positive"}
	}

	date := time.Now()
	if t := parseTime(req.Date); t != nil {
		date = *t
	}

	return &domain.Transaction{
		ID:         id,
		Amount:     amount,
		Type:       req.Type,
		CategoryID: req.CategoryID,
		Merchant:   req.Merchant,
		Date:       date,
		AccountID:  req.AccountID,
		Notes:      req.Notes,
		Receipt:    req.Receipt,
		Location:   req.Location,
		Priority:   req.Priority,
		Recurring:  req.Recurring,
		Interval:   req.Interval,
		Tags:       req.Tags,
		CreatedAt:  createdAt,
	}, nil
}

// applyLocked applies (sign=1) or reverses (sign=-1) a transaction's effect
// on its account balance and the budget spent figures.
func (u *financeUsecase) applyLocked(tx *domain.Transaction, sign int) {
	if i := u.accountIndexLocked(tx.AccountID); i >= 0 {
		delta := tx.Signed()
		if sign < 0 {
			delta = delta.Neg()
		}
		u.accounts[i].Balance = u.accounts[i].Balance.Add(delta)
	}
}

// recomputeBudgetsLocked rebuilds every budget's spent figure from the
// ledger.
func (u *financeUsecase) recomputeBudgetsLocked() {
	for i := range u.budgets {
		spent := domain.NewMoneyZero(u.budgets[i].Amount.Currency)
		for j := range u.transactions {
			tx := &u.transactions[j]
			if tx.Type == domain.TransactionExpense && tx.CategoryID == u.budgets[i].CategoryID {
				spent = spent.Add(tx.Amount)
			}
		}
		u.budgets[i].Spent = spent
	}
}

// flagAnomalyLocked marks an expense as anomalous when it sits far outside
// the category's spending history. Call before appending tx to the ledger.
func (u *financeUsecase) flagAnomalyLocked(tx *domain.Transaction) {
	if tx.Type != domain.TransactionExpense {
		return
	}
	var history []decimal.Decimal
	for i := range u.transactions {
		prior := &u.transactions[i]
		if prior.ID != tx.ID && prior.Type == domain.TransactionExpense && prior.CategoryID == tx.CategoryID {
			history = append(history, prior.Amount.Amount)
		}
	}
	if len(history) < anomalyMinSamples {
		return
	}
	mean, stddev := domain.MeanAndStdDev(history)
	threshold := mean.Add(stddev.Mul(decimal.NewFromInt(anomalySigmas)))
	tx.Anomaly = tx.Amount.Amount.GreaterThan(threshold)
}

func (u *financeUsecase) scheduleBill(bill *domain.Bill) {
	if bill.Paid || bill.DueDate.IsZero() {
		u.sched.Cancel(bill.ID)
		return
	}
	body := fmt.Sprintf("%s due %s", bill.Amount.String(), bill.DueDate.Format("Jan 2"))
	u.sched.Schedule(bill.ID, bill.DueDate, bill.Name, body, nil)
}

func (u *financeUsecase) flushLocked() {
	var saveErr string
	save := func(what string, err error) {
		if err != nil {
			u.log.WithError(err).Errorf("failed to persist %s", what)
			saveErr = err.Error()
		}
	}
	save("transactions", u.repo.SaveTransactions(append([]domain.Transaction(nil), u.transactions...)))
	save("accounts", u.repo.SaveAccounts(append([]domain.Account(nil), u.accounts...)))
	save("categories", u.repo.SaveCategories(append([]domain.Category(nil), u.categories...)))
	save("budgets", u.repo.SaveBudgets(append([]domain.Budget(nil), u.budgets...)))
	save("bills", u.repo.SaveBills(append([]domain.Bill(nil), u.bills...)))
	save("goals", u.repo.SaveGoals(append([]domain.SavingsGoal(nil), u.goals...)))
	u.lastSaveErr = saveErr
}

func (u *financeUsecase) txIndexLocked(id string) int {
	for i := range u.transactions {
		if u.transactions[i].ID == id {
			return i
		}
	}
	return -1
}

func (u *financeUsecase) accountIndexLocked(id string) int {
	for i := range u.accounts {
		if u.accounts[i].ID == id {
			return i
		}
	}
	return -1
}

func (u *financeUsecase) categoryIndexLocked(id string) int {
	for i := range u.categories {
		if u.categories[i].ID == id {
			return i
		}
	}
	return -1
}

func (u *financeUsecase) billIndexLocked(id string) int {
	for i := range u.bills {
		if u.bills[i].ID == id {
			return i
		}
	}
	return -1
}

func (u *financeUsecase) otherCategoryLocked() string {
	for i := range u.categories {
		if u.categories[i].Builtin && u.categories[i].Name == "Other" {
			return u.categories[i].ID
		}
	}
	return ""
}

func (u *financeUsecase) defaultCurrency() string {
	return "USD"
}

func (u *financeUsecase) publish(eventType, id string) {
	if u.bus != nil {
		u.bus.Publish(events.Event{Type: eventType, Entity: "finance", ID: id})
	}
}

func parseTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, *s); err == nil {
		return &t
	}
	return nil
}

func builtinCategories() []domain.Category {
	names := []string{"Groceries", "Dining", "Transport", "Utilities", "Entertainment", "Health", "Other"}
	out := make([]domain.Category, 0, len(names))
	for _, name := range names {
		out = append(out, domain.Category{
			ID:      uuid.New().String(),
			Name:    name,
			Builtin: true,
		})
	}
	return out
}

func sampleAccounts() []domain.Account {
	return []domain.Account{
		{
			ID:      uuid.New().String(),
			Name:    "Cash",
			Type:    domain.AccountCash,
			Balance: domain.NewMoneyZero("USD"),
		},
	}
}
