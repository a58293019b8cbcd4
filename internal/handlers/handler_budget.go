package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/fireledger/internal/core/domain"
	portssvc "github.com/SscSPs/fireledger/internal/core/ports/services"
	"github.com/SscSPs/fireledger/internal/dto"
	"github.com/SscSPs/fireledger/internal/middleware"
	"github.com/SscSPs/fireledger/internal/utils"
	"github.com/gin-gonic/gin"
)

type budgetHandler struct {
	budgetService portssvc.BudgetSvcFacade
}

func newBudgetHandler(bs portssvc.BudgetSvcFacade) *budgetHandler {
	return &budgetHandler{budgetService: bs}
}

// registerBudgetRoutes registers routes related to budgets, limits and available budgets.
func registerBudgetRoutes(rg *gin.RouterGroup, budgetService portssvc.BudgetSvcFacade) {
	h := newBudgetHandler(budgetService)

	budgets := rg.Group("/budgets")
	{
		budgets.POST("", h.createBudget)
		budgets.GET("", h.listBudgets)
		budgets.GET("/spent", h.spentInPeriod)
		budgets.GET("/info", h.budgetInformation)
		budgets.POST("/cleanup", h.cleanupBudgets)
		budgets.PUT("/:id/limits", h.updateLimit)
		budgets.GET("/:id/per-day", h.budgetedPerDay)
	}

	available := rg.Group("/available-budgets")
	{
		available.PUT("", h.setAvailableBudget)
		available.GET("/:currencyID", h.getAvailableBudget)
	}
}

// createBudget godoc
// @Summary Create a budget
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   budget body dto.CreateBudgetRequest true "Budget name"
// @Success 201 {object} domain.Budget
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]interface{} "Validation messages per field"
// @Security BearerAuth
// @Router /budgets [post]
func (h *budgetHandler) createBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBudget", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	budget, err := h.budgetService.CreateBudget(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondWithError(c, logger, err, "to create budget")
		return
	}
	logger.Info("Budget created", slog.String("budget_id", budget.BudgetID))
	c.JSON(http.StatusCreated, budget)
}

// listBudgets godoc
// @Summary List budgets
// @Tags budgets
// @Produce  json
// @Success 200 {array} domain.Budget
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /budgets [get]
func (h *budgetHandler) listBudgets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	budgets, err := h.budgetService.ListBudgets(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, logger, err, "to list budgets")
		return
	}
	if budgets == nil {
		budgets = []domain.Budget{}
	}
	c.JSON(http.StatusOK, budgets)
}

// updateLimit godoc
// @Summary Set a budget limit
// @Description Sets the single limit of the budget for the period. Zero or negative amounts remove it.
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   id path string true "Budget ID"
// @Param   limit body dto.UpdateLimitRequest true "Period and amount"
// @Success 200 {object} dto.BudgetLimitResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 404 {object} map[string]string "Budget not found"
// @Security BearerAuth
// @Router /budgets/{id}/limits [put]
func (h *budgetHandler) updateLimit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("budget_id", c.Param("id")))
	var req dto.UpdateLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateLimit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	limit, err := h.budgetService.UpdateLimitAmount(c.Request.Context(), userID, c.Param("id"), req.Start, req.End, req.Amount)
	if err != nil {
		respondWithError(c, logger, err, "to update budget limit")
		return
	}
	c.JSON(http.StatusOK, dto.BudgetLimitResponse{Limit: limit})
}

// budgetedPerDay godoc
// @Summary Average budgeted amount per day
// @Tags budgets
// @Produce  json
// @Param   id path string true "Budget ID"
// @Success 200 {object} dto.AmountResponse
// @Failure 404 {object} map[string]string "Budget not found"
// @Security BearerAuth
// @Router /budgets/{id}/per-day [get]
func (h *budgetHandler) budgetedPerDay(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("budget_id", c.Param("id")))
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	perDay, err := h.budgetService.BudgetedPerDay(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err, "to compute budgeted per day")
		return
	}
	c.JSON(http.StatusOK, dto.AmountResponse{Amount: perDay})
}

// spentInPeriod godoc
// @Summary Spending of budgets in a period
// @Tags budgets
// @Produce  json
// @Param   start query string true "Start date (YYYY-MM-DD)"
// @Param   end query string true "End date (YYYY-MM-DD)"
// @Param   budgetID query []string false "Budgets to include"
// @Param   accountID query []string false "Accounts to include (all asset accounts when empty)"
// @Param   currency query string false "ISO code used to add a formatted amount"
// @Success 200 {object} dto.AmountResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Security BearerAuth
// @Router /budgets/spent [get]
func (h *budgetHandler) spentInPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	var params dto.SpentParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for SpentInPeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	spent, err := h.budgetService.SpentInPeriod(c.Request.Context(), userID, params.BudgetIDs, params.AccountIDs, params.Start, params.End)
	if err != nil {
		respondWithError(c, logger, err, "to compute spending")
		return
	}
	resp := dto.AmountResponse{Amount: spent}
	if params.Currency != "" {
		currency, known := utils.CurrencyFromCode(params.Currency)
		if !known {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown currency: " + params.Currency})
			return
		}
		resp.Formatted = utils.FormatAmount(currency, spent, utils.DefaultFormatSettings(currency.Code))
	}
	c.JSON(http.StatusOK, resp)
}

// budgetInformation godoc
// @Summary Budget overview for a period
// @Description Spending, current limit and other overlapping limits per active budget
// @Tags budgets
// @Produce  json
// @Param   start query string true "Start date (YYYY-MM-DD)"
// @Param   end query string true "End date (YYYY-MM-DD)"
// @Success 200 {array} domain.BudgetInformation
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Security BearerAuth
// @Router /budgets/info [get]
func (h *budgetHandler) budgetInformation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	var params dto.PeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for BudgetInformation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	info, err := h.budgetService.CollectBudgetInformation(c.Request.Context(), userID, params.Start, params.End)
	if err != nil {
		respondWithError(c, logger, err, "to collect budget information")
		return
	}
	if info == nil {
		info = []domain.BudgetInformation{}
	}
	c.JSON(http.StatusOK, info)
}

// cleanupBudgets godoc
// @Summary Remove empty and duplicate budget limits
// @Tags budgets
// @Produce  json
// @Success 200 {object} dto.CleanupResponse
// @Security BearerAuth
// @Router /budgets/cleanup [post]
func (h *budgetHandler) cleanupBudgets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	deleted, err := h.budgetService.CleanupBudgets(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, logger, err, "to clean up budgets")
		return
	}
	logger.Info("Budget limits cleaned up", slog.Int("deleted", deleted))
	c.JSON(http.StatusOK, dto.CleanupResponse{Deleted: deleted})
}

// setAvailableBudget godoc
// @Summary Set the available budget
// @Tags budgets
// @Accept  json
// @Produce  json
// @Param   available body dto.AvailableBudgetRequest true "Currency, period and amount"
// @Success 200 {object} domain.AvailableBudget
// @Failure 400 {object} map[string]string "Invalid input format"
// @Security BearerAuth
// @Router /available-budgets [put]
func (h *budgetHandler) setAvailableBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.AvailableBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for SetAvailableBudget", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	available, err := h.budgetService.SetAvailableBudget(c.Request.Context(), userID, req.CurrencyID, req.Start, req.End, req.Amount)
	if err != nil {
		respondWithError(c, logger, err, "to set available budget")
		return
	}
	c.JSON(http.StatusOK, available)
}

// getAvailableBudget godoc
// @Summary Get the available budget
// @Tags budgets
// @Produce  json
// @Param   currencyID path string true "Currency ID"
// @Param   start query string true "Start date (YYYY-MM-DD)"
// @Param   end query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} domain.AvailableBudget
// @Failure 404 {object} map[string]string "No available budget for the period"
// @Security BearerAuth
// @Router /available-budgets/{currencyID} [get]
func (h *budgetHandler) getAvailableBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	var params dto.PeriodParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for GetAvailableBudget", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	available, err := h.budgetService.GetAvailableBudget(c.Request.Context(), userID, c.Param("currencyID"), params.Start, params.End)
	if err != nil {
		respondWithError(c, logger, err, "to get available budget")
		return
	}
	c.JSON(http.StatusOK, available)
}

