package delivery

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"planora-backend/internal/finance/domain"
	"planora-backend/internal/finance/usecase"

	"github.com/gin-gonic/gin"
)

// FinanceHandler handles finance HTTP requests
type FinanceHandler struct {
	financeUsecase usecase.FinanceUsecase
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(financeUsecase usecase.FinanceUsecase) *FinanceHandler {
	return &FinanceHandler{
		financeUsecase: financeUsecase,
	}
}

var notFoundErrs = []error{
	usecase.ErrTransactionNotFound,
	usecase.ErrAccountNotFound,
	usecase.ErrCategoryNotFound,
	usecase.ErrBudgetNotFound,
	usecase.ErrBillNotFound,
	usecase.ErrGoalNotFound,
}

func respondError(c *gin.Context, err error) {
	for _, sentinel := range notFoundErrs {
		if errors.Is(err, sentinel) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
	}
	if usecase.IsValidation(err) || errors.Is(err, usecase.ErrBuiltinCategory) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func parseMoney(c *gin.Context, amount, currency string) (domain.Money, bool) {
	if currency == "" {
		currency = "USD"
	}
	m, err := domain.ParseMoney(amount, currency)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount: not a valid decimal"})
		return domain.Money{}, false
	}
	return m, true
}

// GetTransactions returns the ledger, newest first
// GET /api/finance/transactions
func (h *FinanceHandler) GetTransactions(c *gin.Context) {
	transactions := h.financeUsecase.Transactions()

	c.JSON(http.StatusOK, gin.H{
		"transactions": transactions,
		"total":        len(transactions),
	})
}

// GetTransactionByID returns a specific transaction
// GET /api/finance/transactions/:id
func (h *FinanceHandler) GetTransactionByID(c *gin.Context) {
	tx, err := h.financeUsecase.GetTransaction(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// CreateTransaction records a new ledger entry
// POST /api/finance/transactions
func (h *FinanceHandler) CreateTransaction(c *gin.Context) {
	var req usecase.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.financeUsecase.AddTransaction(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// UpdateTransaction replaces a ledger entry wholesale
// PUT /api/finance/transactions/:id
func (h *FinanceHandler) UpdateTransaction(c *gin.Context) {
	var req usecase.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := h.financeUsecase.ReplaceTransaction(c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// DeleteTransaction removes a ledger entry and reverses its effects
// DELETE /api/finance/transactions/:id
func (h *FinanceHandler) DeleteTransaction(c *gin.Context) {
	if err := h.financeUsecase.DeleteTransaction(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
}

// GetAccounts returns all accounts with running balances
// GET /api/finance/accounts
func (h *FinanceHandler) GetAccounts(c *gin.Context) {
	accounts := h.financeUsecase.Accounts()

	c.JSON(http.StatusOK, gin.H{"accounts": accounts, "total": len(accounts)})
}

// CreateAccount creates an account with an opening balance
// POST /api/finance/accounts
func (h *FinanceHandler) CreateAccount(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Type     string `json:"type"`
		Balance  string `json:"balance"`
		Currency string `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Balance == "" {
		req.Balance = "0"
	}
	balance, ok := parseMoney(c, req.Balance, req.Currency)
	if !ok {
		return
	}

	account, err := h.financeUsecase.CreateAccount(req.Name, domain.AccountType(req.Type), balance)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

// DeleteAccount removes an account; its transactions keep no reference
// DELETE /api/finance/accounts/:id
func (h *FinanceHandler) DeleteAccount(c *gin.Context) {
	if err := h.financeUsecase.DeleteAccount(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// GetCategories returns builtin and user categories
// GET /api/finance/categories
func (h *FinanceHandler) GetCategories(c *gin.Context) {
	categories := h.financeUsecase.Categories()

	c.JSON(http.StatusOK, gin.H{"categories": categories, "total": len(categories)})
}

// CreateCategory creates a user category
// POST /api/finance/categories
func (h *FinanceHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
		Icon string `json:"icon"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := h.financeUsecase.CreateCategory(req.Name, req.Icon)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// DeleteCategory removes a user category; its transactions move to Other
// DELETE /api/finance/categories/:id
func (h *FinanceHandler) DeleteCategory(c *gin.Context) {
	if err := h.financeUsecase.DeleteCategory(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

// GetBudgets returns all budgets with computed spent figures
// GET /api/finance/budgets
func (h *FinanceHandler) GetBudgets(c *gin.Context) {
	budgets := h.financeUsecase.Budgets()

	c.JSON(http.StatusOK, gin.H{"budgets": budgets, "total": len(budgets)})
}

// SetBudget creates or replaces the budget for a category
// POST /api/finance/budgets
func (h *FinanceHandler) SetBudget(c *gin.Context) {
	var req struct {
		CategoryID string `json:"category_id" binding:"required"`
		Amount     string `json:"amount" binding:"required"`
		Currency   string `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, ok := parseMoney(c, req.Amount, req.Currency)
	if !ok {
		return
	}

	budget, err := h.financeUsecase.SetBudget(req.CategoryID, amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, budget)
}

// DeleteBudget removes a budget
// DELETE /api/finance/budgets/:id
func (h *FinanceHandler) DeleteBudget(c *gin.Context) {
	if err := h.financeUsecase.DeleteBudget(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Budget deleted"})
}

// GetBills returns bills sorted by due date
// GET /api/finance/bills
func (h *FinanceHandler) GetBills(c *gin.Context) {
	bills := h.financeUsecase.Bills()

	c.JSON(http.StatusOK, gin.H{"bills": bills, "total": len(bills)})
}

// CreateBill creates a bill and schedules its due reminder
// POST /api/finance/bills
func (h *FinanceHandler) CreateBill(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Amount   string `json:"amount" binding:"required"`
		Currency string `json:"currency"`
		DueDate  string `json:"due_date" binding:"required"`
		Interval string `json:"interval"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, ok := parseMoney(c, req.Amount, req.Currency)
	if !ok {
		return
	}
	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid due_date: expected RFC3339"})
		return
	}

	bill, err := h.financeUsecase.CreateBill(req.Name, amount, dueDate, domain.RecurringInterval(req.Interval))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bill)
}

// ToggleBillPaid flips a bill's paid flag
// PATCH /api/finance/bills/:id/paid
func (h *FinanceHandler) ToggleBillPaid(c *gin.Context) {
	bill, err := h.financeUsecase.TogglePaid(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bill)
}

// DeleteBill removes a bill and cancels its reminder
// DELETE /api/finance/bills/:id
func (h *FinanceHandler) DeleteBill(c *gin.Context) {
	if err := h.financeUsecase.DeleteBill(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Bill deleted"})
}

// GetGoals returns all savings goals
// GET /api/finance/goals
func (h *FinanceHandler) GetGoals(c *gin.Context) {
	goals := h.financeUsecase.Goals()

	c.JSON(http.StatusOK, gin.H{"goals": goals, "total": len(goals)})
}

// CreateGoal creates a savings goal
// POST /api/finance/goals
func (h *FinanceHandler) CreateGoal(c *gin.Context) {
	var req struct {
		Name     string  `json:"name" binding:"required"`
		Target   string  `json:"target" binding:"required"`
		Currency string  `json:"currency"`
		Deadline *string `json:"deadline"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target, ok := parseMoney(c, req.Target, req.Currency)
	if !ok {
		return
	}

	var deadline *time.Time
	if req.Deadline != nil && *req.Deadline != "" {
		t, err := time.Parse(time.RFC3339, *req.Deadline)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid deadline: expected RFC3339"})
			return
		}
		deadline = &t
	}

	goal, err := h.financeUsecase.CreateGoal(req.Name, target, deadline)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, goal)
}

// ContributeToGoal adds a positive amount to a goal's saved figure
// POST /api/finance/goals/:id/contribute
func (h *FinanceHandler) ContributeToGoal(c *gin.Context) {
	var req struct {
		Amount   string `json:"amount" binding:"required"`
		Currency string `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, ok := parseMoney(c, req.Amount, req.Currency)
	if !ok {
		return
	}

	goal, err := h.financeUsecase.Contribute(c.Param("id"), amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, goal)
}

// DeleteGoal removes a savings goal
// DELETE /api/finance/goals/:id
func (h *FinanceHandler) DeleteGoal(c *gin.Context) {
	if err := h.financeUsecase.DeleteGoal(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Goal deleted"})
}

// GetSummary aggregates one calendar month, defaulting to the current one
// GET /api/finance/summary?year=2026&month=3
func (h *FinanceHandler) GetSummary(c *gin.Context) {
	now := time.Now()
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}

	c.JSON(http.StatusOK, h.financeUsecase.Summary(year, time.Month(month)))
}
