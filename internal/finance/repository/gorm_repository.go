package repository

import (
	"planora-backend/internal/finance/domain"

	"gorm.io/gorm"
)

type gormFinanceRepository struct {
	db *gorm.DB
}

// NewGormFinanceRepository creates a sqlite-backed FinanceRepository with
// whole-collection save semantics per table.
func NewGormFinanceRepository(db *gorm.DB) (FinanceRepository, error) {
	err := db.AutoMigrate(
		&domain.Transaction{},
		&domain.Account{},
		&domain.Category{},
		&domain.Budget{},
		&domain.Bill{},
		&domain.SavingsGoal{},
	)
	if err != nil {
		return nil, err
	}
	return &gormFinanceRepository{db: db}, nil
}

func (r *gormFinanceRepository) LoadTransactions() ([]domain.Transaction, error) {
	return loadTable[domain.Transaction](r.db)
}

func (r *gormFinanceRepository) SaveTransactions(txs []domain.Transaction) error {
	return replaceTable(r.db, txs)
}

func (r *gormFinanceRepository) LoadAccounts() ([]domain.Account, error) {
	return loadTable[domain.Account](r.db)
}

func (r *gormFinanceRepository) SaveAccounts(accounts []domain.Account) error {
	return replaceTable(r.db, accounts)
}

func (r *gormFinanceRepository) LoadCategories() ([]domain.Category, error) {
	return loadTable[domain.Category](r.db)
}

func (r *gormFinanceRepository) SaveCategories(categories []domain.Category) error {
	return replaceTable(r.db, categories)
}

func (r *gormFinanceRepository) LoadBudgets() ([]domain.Budget, error) {
	return loadTable[domain.Budget](r.db)
}

func (r *gormFinanceRepository) SaveBudgets(budgets []domain.Budget) error {
	return replaceTable(r.db, budgets)
}

func (r *gormFinanceRepository) LoadBills() ([]domain.Bill, error) {
	return loadTable[domain.Bill](r.db)
}

func (r *gormFinanceRepository) SaveBills(bills []domain.Bill) error {
	return replaceTable(r.db, bills)
}

func (r *gormFinanceRepository) LoadGoals() ([]domain.SavingsGoal, error) {
	return loadTable[domain.SavingsGoal](r.db)
}

func (r *gormFinanceRepository) SaveGoals(goals []domain.SavingsGoal) error {
	return replaceTable(r.db, goals)
}

func loadTable[T any](db *gorm.DB) ([]T, error) {
	var rows []T
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func replaceTable[T any](db *gorm.DB, rows []T) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var model T
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}
