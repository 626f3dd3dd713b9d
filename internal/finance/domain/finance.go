package domain

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// RecurringInterval is the repeat cadence of a recurring transaction or bill.
type RecurringInterval string

const (
	RecurDaily   RecurringInterval = "daily"
	RecurWeekly  RecurringInterval = "weekly"
	RecurMonthly RecurringInterval = "monthly"
	RecurYearly  RecurringInterval = "yearly"
)

// Place is an optional merchant location attached to a transaction.
type Place struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
	Name      string  `json:"name,omitempty"`
}

// Transaction is an immutable ledger entry; edits replace the record
// wholesale rather than mutating it in place.
type Transaction struct {
	ID         string            `json:"id" gorm:"primaryKey"`
	Amount     Money             `json:"amount" gorm:"serializer:json"`
	Type       TransactionType   `json:"type"`
	CategoryID string            `json:"category_id"`
	Merchant   string            `json:"merchant"`
	Date       time.Time         `json:"date"`
	AccountID  string            `json:"account_id"`
	Notes      string            `json:"notes,omitempty"`
	Receipt    []byte            `json:"receipt,omitempty"`
	Location   *Place            `json:"location,omitempty" gorm:"serializer:json"`
	Priority   string            `json:"priority,omitempty"`
	Recurring  bool              `json:"recurring"`
	Interval   RecurringInterval `json:"interval,omitempty"`
	Tags       []string          `json:"tags,omitempty" gorm:"serializer:json"`
	Anomaly    bool              `json:"anomaly"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Category classifies transactions. Builtin categories are seeded and
// cannot be removed.
type Category struct {
	ID      string `json:"id" gorm:"primaryKey"`
	Name    string `json:"name"`
	Icon    string `json:"icon,omitempty"`
	Builtin bool   `json:"builtin"`
}

// AccountType represents the kind of account
type AccountType string

const (
	AccountChecking AccountType = "checking"
	AccountSavings  AccountType = "savings"
	AccountCredit   AccountType = "credit"
	AccountCash     AccountType = "cash"
)

// Account holds a signed running balance.
type Account struct {
	ID      string      `json:"id" gorm:"primaryKey"`
	Name    string      `json:"name"`
	Type    AccountType `json:"type"`
	Balance Money       `json:"balance" gorm:"serializer:json"`
}

// Budget is a spending ceiling for one category.
type Budget struct {
	ID         string `json:"id" gorm:"primaryKey"`
	CategoryID string `json:"category_id"`
	Amount     Money  `json:"amount" gorm:"serializer:json"`
	Spent      Money  `json:"spent" gorm:"serializer:json"`
}

// SpendingPercentage returns spent/amount, 0 when the ceiling is 0.
func (b *Budget) SpendingPercentage() float64 {
	if b.Amount.Amount.IsZero() {
		return 0
	}
	pct, _ := b.Spent.Amount.Div(b.Amount.Amount).Float64()
	return pct
}

// Bill is a payable with a due date.
type Bill struct {
	ID       string            `json:"id" gorm:"primaryKey"`
	Name     string            `json:"name"`
	Amount   Money             `json:"amount" gorm:"serializer:json"`
	DueDate  time.Time         `json:"due_date"`
	Paid     bool              `json:"paid"`
	Interval RecurringInterval `json:"interval,omitempty"`
}

// SavingsGoal tracks progress toward a target amount.
type SavingsGoal struct {
	ID       string     `json:"id" gorm:"primaryKey"`
	Name     string     `json:"name"`
	Target   Money      `json:"target" gorm:"serializer:json"`
	Saved    Money      `json:"saved" gorm:"serializer:json"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

// Progress returns saved/target clamped to [0, 1], 0 when target is 0.
func (g *SavingsGoal) Progress() float64 {
	if g.Target.Amount.IsZero() {
		return 0
	}
	p, _ := g.Saved.Amount.Div(g.Target.Amount).Float64()
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

// Signed returns the transaction amount with expense amounts negated, for
// applying to an account balance.
func (t *Transaction) Signed() Money {
	if t.Type == TransactionExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// MeanAndStdDev computes the mean and standard deviation of amounts, used
// for anomaly flagging.
func MeanAndStdDev(amounts []decimal.Decimal) (mean, stddev decimal.Decimal) {
	n := int64(len(amounts))
	if n == 0 {
		return decimal.Zero, decimal.Zero
	}
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	mean = sum.Div(decimal.NewFromInt(n))

	if n < 2 {
		return mean, decimal.Zero
	}
	variance := decimal.Zero
	for _, a := range amounts {
		d := a.Sub(mean)
		variance = variance.Add(d.Mul(d))
	}
	variance = variance.Div(decimal.NewFromInt(n - 1))

	f, _ := variance.Float64()
	stddev = decimal.NewFromFloat(math.Sqrt(f))
	return mean, stddev
}
