package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/fireledger/internal/core/domain"
	portssvc "github.com/SscSPs/fireledger/internal/core/ports/services"
	"github.com/SscSPs/fireledger/internal/dto"
	"github.com/SscSPs/fireledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type piggyBankHandler struct {
	piggyService portssvc.PiggyBankSvcFacade
}

// registerPiggyBankRoutes registers routes related to piggy banks.
func registerPiggyBankRoutes(rg *gin.RouterGroup, piggyService portssvc.PiggyBankSvcFacade) {
	h := &piggyBankHandler{piggyService: piggyService}

	piggies := rg.Group("/piggy-banks")
	{
		piggies.GET("", h.listPiggyBanks)
		piggies.POST("", h.createPiggyBank)
		piggies.PUT("/:id", h.updatePiggyBank)
		piggies.POST("/:id/add", h.addAmount)
		piggies.POST("/:id/remove", h.removeAmount)
		piggies.GET("/:id/events", h.listEvents)
	}
}

// listPiggyBanks godoc
// @Summary List piggy banks with their saved amounts
// @Tags piggy-banks
// @Produce  json
// @Success 200 {array} domain.PiggyBankWithAmount
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /piggy-banks [get]
func (h *piggyBankHandler) listPiggyBanks(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	piggies, err := h.piggyService.GetPiggyBanksWithAmount(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, logger, err, "to list piggy banks")
		return
	}
	if piggies == nil {
		piggies = []domain.PiggyBankWithAmount{}
	}
	c.JSON(http.StatusOK, piggies)
}

// createPiggyBank godoc
// @Summary Create a piggy bank
// @Tags piggy-banks
// @Accept  json
// @Produce  json
// @Param   piggy body dto.CreatePiggyBankRequest true "Piggy bank details"
// @Success 201 {object} domain.PiggyBank
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 422 {object} map[string]interface{} "Validation messages per field"
// @Security BearerAuth
// @Router /piggy-banks [post]
func (h *piggyBankHandler) createPiggyBank(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePiggyBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePiggyBank", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	piggy, err := h.piggyService.CreatePiggyBank(c.Request.Context(), userID, req)
	if err != nil {
		respondWithError(c, logger, err, "to create piggy bank")
		return
	}
	logger.Info("Piggy bank created", slog.String("piggy_bank_id", piggy.PiggyBankID))
	c.JSON(http.StatusCreated, piggy)
}

// updatePiggyBank godoc
// @Summary Update a piggy bank
// @Description Lowering the target below the saved amount records a correcting event
// @Tags piggy-banks
// @Accept  json
// @Produce  json
// @Param   id path string true "Piggy bank ID"
// @Param   piggy body dto.UpdatePiggyBankRequest true "Fields to update"
// @Success 200 {object} domain.PiggyBank
// @Failure 404 {object} map[string]string "Piggy bank not found"
// @Security BearerAuth
// @Router /piggy-banks/{id} [put]
func (h *piggyBankHandler) updatePiggyBank(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("piggy_bank_id", c.Param("id")))
	var req dto.UpdatePiggyBankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdatePiggyBank", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	piggy, err := h.piggyService.UpdatePiggyBank(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondWithError(c, logger, err, "to update piggy bank")
		return
	}
	c.JSON(http.StatusOK, piggy)
}

// addAmount godoc
// @Summary Add money to a piggy bank
// @Tags piggy-banks
// @Accept  json
// @Param   id path string true "Piggy bank ID"
// @Param   amount body dto.PiggyAmountRequest true "Amount"
// @Success 204 "No Content"
// @Failure 422 {object} map[string]interface{} "Amount does not fit"
// @Security BearerAuth
// @Router /piggy-banks/{id}/add [post]
func (h *piggyBankHandler) addAmount(c *gin.Context) {
	h.moveAmount(c, "to add to piggy bank", h.piggyService.AddAmount)
}

// removeAmount godoc
// @Summary Remove money from a piggy bank
// @Tags piggy-banks
// @Accept  json
// @Param   id path string true "Piggy bank ID"
// @Param   amount body dto.PiggyAmountRequest true "Amount"
// @Success 204 "No Content"
// @Failure 422 {object} map[string]interface{} "Amount does not fit"
// @Security BearerAuth
// @Router /piggy-banks/{id}/remove [post]
func (h *piggyBankHandler) removeAmount(c *gin.Context) {
	h.moveAmount(c, "to remove from piggy bank", h.piggyService.RemoveAmount)
}

func (h *piggyBankHandler) moveAmount(c *gin.Context, action string, move func(ctx context.Context, userID, piggyBankID string, amount decimal.Decimal) error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("piggy_bank_id", c.Param("id")))
	var req dto.PiggyAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for piggy bank amount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	if err := move(c.Request.Context(), userID, c.Param("id"), req.Amount); err != nil {
		respondWithError(c, logger, err, action)
		return
	}
	c.Status(http.StatusNoContent)
}

// listEvents godoc
// @Summary List the events of a piggy bank
// @Tags piggy-banks
// @Produce  json
// @Param   id path string true "Piggy bank ID"
// @Success 200 {array} domain.PiggyBankEvent
// @Failure 404 {object} map[string]string "Piggy bank not found"
// @Security BearerAuth
// @Router /piggy-banks/{id}/events [get]
func (h *piggyBankHandler) listEvents(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("piggy_bank_id", c.Param("id")))
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	events, err := h.piggyService.ListEvents(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err, "to list piggy bank events")
		return
	}
	if events == nil {
		events = []domain.PiggyBankEvent{}
	}
	c.JSON(http.StatusOK, events)
}
