package repository

import "planora-backend/internal/finance/domain"

// FinanceRepository persists the finance collections wholesale, one
// serialized array per entity family.
type FinanceRepository interface {
	LoadTransactions() ([]domain.Transaction, error)
	SaveTransactions([]domain.Transaction) error

	LoadAccounts() ([]domain.Account, error)
	SaveAccounts([]domain.Account) error

	LoadCategories() ([]domain.Category, error)
	SaveCategories([]domain.Category) error

	LoadBudgets() ([]domain.Budget, error)
	SaveBudgets([]domain.Budget) error

	LoadBills() ([]domain.Bill, error)
	SaveBills([]domain.Bill) error

	LoadGoals() ([]domain.SavingsGoal, error)
	SaveGoals([]domain.SavingsGoal) error
}
