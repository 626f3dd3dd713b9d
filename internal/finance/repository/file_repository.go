package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"planora-backend/internal/finance/domain"
)

type fileFinanceRepository struct {
	dir string
}

// NewFileFinanceRepository creates a file-backed FinanceRepository rooted
// at dataDir, one JSON file per collection.
func NewFileFinanceRepository(dataDir string) (FinanceRepository, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &fileFinanceRepository{dir: dataDir}, nil
}

func (r *fileFinanceRepository) LoadTransactions() ([]domain.Transaction, error) {
	return loadJSON[domain.Transaction](r.dir, "transactions")
}

func (r *fileFinanceRepository) SaveTransactions(txs []domain.Transaction) error {
	return saveJSON(r.dir, "transactions", txs)
}

func (r *fileFinanceRepository) LoadAccounts() ([]domain.Account, error) {
	return loadJSON[domain.Account](r.dir, "accounts")
}

func (r *fileFinanceRepository) SaveAccounts(accounts []domain.Account) error {
	return saveJSON(r.dir, "accounts", accounts)
}

func (r *fileFinanceRepository) LoadCategories() ([]domain.Category, error) {
	return loadJSON[domain.Category](r.dir, "categories")
}

func (r *fileFinanceRepository) SaveCategories(categories []domain.Category) error {
	return saveJSON(r.dir, "categories", categories)
}

func (r *fileFinanceRepository) LoadBudgets() ([]domain.Budget, error) {
	return loadJSON[domain.Budget](r.dir, "budgets")
}

func (r *fileFinanceRepository) SaveBudgets(budgets []domain.Budget) error {
	return saveJSON(r.dir, "budgets", budgets)
}

func (r *fileFinanceRepository) LoadBills() ([]domain.Bill, error) {
	return loadJSON[domain.Bill](r.dir, "bills")
}

func (r *fileFinanceRepository) SaveBills(bills []domain.Bill) error {
	return saveJSON(r.dir, "bills", bills)
}

func (r *fileFinanceRepository) LoadGoals() ([]domain.SavingsGoal, error) {
	return loadJSON[domain.SavingsGoal](r.dir, "goals")
}

func (r *fileFinanceRepository) SaveGoals(goals []domain.SavingsGoal) error {
	return saveJSON(r.dir, "goals", goals)
}

func loadJSON[T any](dir, name string) ([]T, error) {
	data, err := os.ReadFile(filepath.Join(dir, name+".json"))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return out, nil
}

func saveJSON[T any](dir, name string, in []T) error {
	if in == nil {
		in = []T{}
	}
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	path := filepath.Join(dir, name+".json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s file: %w", name, err)
	}
	return nil
}
