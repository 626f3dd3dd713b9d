package usecase

import (
	"errors"
	"fmt"
	"time"

	"planora-backend/internal/finance/domain"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrBudgetNotFound      = errors.New("budget not found")
	ErrBillNotFound        = errors.New("bill not found")
	ErrGoalNotFound        = errors.New("goal not found")
	ErrBuiltinCategory     = errors.New("builtin category cannot be deleted")
)

// ValidationError rejects a write before any state is mutated.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransactionRequest carries the form fields for a new or replaced
// transaction. Amount is the raw decimal string as typed.
type TransactionRequest struct {
	Amount     string                   `json:"amount"`
	Currency   string                   `json:"currency"`
	Type       domain.TransactionType   `json:"type"`
	CategoryID string                   `json:"category_id"`
	Merchant   string                   `json:"merchant"`
	Date       *string                  `json:"date"`
	AccountID  string                   `json:"account_id"`
	Notes      string                   `json:"notes"`
	Receipt    []byte                   `json:"receipt,omitempty"`
	Location   *domain.Place            `json:"location"`
	Priority   string                   `json:"priority"`
	Recurring  bool                     `json:"recurring"`
	Interval   domain.RecurringInterval `json:"interval"`
	Tags       []string                 `json:"tags"`
}

// CategoryTotal is one row of a monthly summary breakdown.
type CategoryTotal struct {
	CategoryID string       `json:"category_id"`
	Name       string       `json:"name"`
	Total      domain.Money `json:"total"`
}

// MonthlySummary aggregates one calendar month of transactions.
type MonthlySummary struct {
	Year       int             `json:"year"`
	Month      time.Month      `json:"month"`
	Income     domain.Money    `json:"income"`
	Expense    domain.Money    `json:"expense"`
	Net        domain.Money    `json:"net"`
	ByCategory []CategoryTotal `json:"by_category"`
}

// BillScheduler is the slice of the notification scheduler bill due dates
// drive.
type BillScheduler interface {
	Schedule(id string, fireAt time.Time, title, body string, actions []string)
	Cancel(id string)
}

// FinanceUsecase mediates all access to the finance collections.
type FinanceUsecase interface {
	AddTransaction(req TransactionRequest) (*domain.Transaction, error)
	GetTransaction(id string) (*domain.Transaction, error)
	ReplaceTransaction(id string, req TransactionRequest) (*domain.Transaction, error)
	DeleteTransaction(id string) error
	Transactions() []domain.Transaction

	CreateAccount(name string, accType domain.AccountType, openingBalance domain.Money) (*domain.Account, error)
	DeleteAccount(id string) error
	Accounts() []domain.Account

	CreateCategory(name, icon string) (*domain.Category, error)
	DeleteCategory(id string) error
	Categories() []domain.Category

	SetBudget(categoryID string, amount domain.Money) (*domain.Budget, error)
	DeleteBudget(id string) error
	Budgets() []domain.Budget

	CreateBill(name string, amount domain.Money, dueDate time.Time, interval domain.RecurringInterval) (*domain.Bill, error)
	TogglePaid(billID string) (*domain.Bill, error)
	DeleteBill(id string) error
	Bills() []domain.Bill

	CreateGoal(name string, target domain.Money, deadline *time.Time) (*domain.SavingsGoal, error)
	Contribute(goalID string, amount domain.Money) (*domain.SavingsGoal, error)
	DeleteGoal(id string) error
	Goals() []domain.SavingsGoal

	Summary(year int, month time.Month) MonthlySummary

	SaveError() string
	Close() error
}
