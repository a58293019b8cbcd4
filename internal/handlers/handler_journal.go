package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/fireledger/internal/core/ports/services"
	"github.com/SscSPs/fireledger/internal/dto"
	"github.com/SscSPs/fireledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journals and their legs.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
	splitService   portssvc.SplitSvc
}

func newJournalHandler(js portssvc.JournalSvcFacade, ss portssvc.SplitSvc) *journalHandler {
	return &journalHandler{
		journalService: js,
		splitService:   ss,
	}
}

// registerJournalRoutes registers routes related to journals.
func registerJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade, splitService portssvc.SplitSvc) {
	h := newJournalHandler(journalService, splitService)

	journals := rg.Group("/journals")
	{
		journals.POST("", h.storeJournal)
		journals.GET("", h.listJournals)
		journals.GET("/:id", h.getJournal)
		journals.PUT("/:id", h.updateJournal)
		journals.DELETE("/:id", h.destroyJournal)
		journals.POST("/:id/convert", h.convertJournal)
		journals.POST("/:id/splits", h.editSplits)
	}
	rg.POST("/transactions/:id/reconcile", h.reconcileTransaction)
}

// storeJournal godoc
// @Summary Create a journal
// @Description Stores a withdrawal, deposit, transfer, opening balance or reconciliation with one or more splits
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   journal body dto.StoreJournalRequest true "Journal details"
// @Success 201 {object} dto.JournalResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 422 {object} map[string]interface{} "Validation messages per field"
// @Failure 500 {object} map[string]string "Failed to store journal"
// @Security BearerAuth
// @Router /journals [post]
func (h *journalHandler) storeJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.StoreJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for StoreJournal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	logger.Info("Received request to store journal", slog.String("type", string(req.Type)), slog.Int("splits", len(req.Transactions)))
	journal, err := h.journalService.Store(c.Request.Context(), userID, req)
	if err != nil {
		respondWithError(c, logger, err, "to store journal")
		return
	}

	logger.Info("Journal stored successfully", slog.String("journal_id", journal.JournalID))
	c.JSON(http.StatusCreated, dto.ToJournalResponse(journal))
}

// listJournals godoc
// @Summary List journals
// @Description Lists the user's journals, newest first, using token-based pagination
// @Tags journals
// @Produce  json
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListJournalsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list journals"
// @Security BearerAuth
// @Router /journals [get]
func (h *journalHandler) listJournals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}
	var params dto.ListJournalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query params for ListJournals", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.journalService.ListJournals(c.Request.Context(), userID, params)
	if err != nil {
		respondWithError(c, logger, err, "to list journals")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getJournal godoc
// @Summary Get a journal
// @Tags journals
// @Produce  json
// @Param   id path string true "Journal ID"
// @Success 200 {object} dto.JournalResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 500 {object} map[string]string "Failed to retrieve journal"
// @Security BearerAuth
// @Router /journals/{id} [get]
func (h *journalHandler) getJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("journal_id", c.Param("id")))
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	journal, err := h.journalService.GetJournal(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err, "to retrieve journal")
		return
	}
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// updateJournal godoc
// @Summary Update a journal
// @Description Updates header fields; a non-empty transactions list replaces the splits
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   id path string true "Journal ID"
// @Param   journal body dto.UpdateJournalRequest true "Fields to update"
// @Success 200 {object} dto.JournalResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 422 {object} map[string]interface{} "Validation messages per field"
// @Failure 500 {object} map[string]string "Failed to update journal"
// @Security BearerAuth
// @Router /journals/{id} [put]
func (h *journalHandler) updateJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("journal_id", c.Param("id")))
	var req dto.UpdateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateJournal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	journal, err := h.journalService.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondWithError(c, logger, err, "to update journal")
		return
	}
	logger.Info("Journal updated successfully")
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// destroyJournal godoc
// @Summary Delete a journal
// @Tags journals
// @Param   id path string true "Journal ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 500 {object} map[string]string "Failed to delete journal"
// @Security BearerAuth
// @Router /journals/{id} [delete]
func (h *journalHandler) destroyJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("journal_id", c.Param("id")))
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	if err := h.journalService.Destroy(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondWithError(c, logger, err, "to delete journal")
		return
	}
	logger.Info("Journal deleted successfully")
	c.Status(http.StatusNoContent)
}

// convertJournal godoc
// @Summary Convert a journal to another type
// @Description Changes withdrawals, deposits and transfers into one another, re-pointing the legs
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   id path string true "Journal ID"
// @Param   conversion body dto.ConvertJournalRequest true "Target type and accounts"
// @Success 200 {object} dto.JournalResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 422 {object} map[string]interface{} "Validation messages per field"
// @Failure 500 {object} map[string]string "Failed to convert journal"
// @Security BearerAuth
// @Router /journals/{id}/convert [post]
func (h *journalHandler) convertJournal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("journal_id", c.Param("id")))
	var req dto.ConvertJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ConvertJournal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	journal, err := h.journalService.Convert(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondWithError(c, logger, err, "to convert journal")
		return
	}
	logger.Info("Journal converted", slog.String("type", string(journal.TransactionType)))
	c.JSON(http.StatusOK, dto.ToJournalResponse(journal))
}

// editSplits godoc
// @Summary Editable view of a journal
// @Description Returns one entry per split, merged with rows of a previous failed submission
// @Tags journals
// @Accept  json
// @Produce  json
// @Param   id path string true "Journal ID"
// @Param   input body dto.SplitEditRequest false "Previously submitted rows"
// @Success 200 {object} dto.SplitEditResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Journal not found"
// @Failure 500 {object} map[string]string "Failed to build splits"
// @Security BearerAuth
// @Router /journals/{id}/splits [post]
func (h *journalHandler) editSplits(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("journal_id", c.Param("id")))
	var req dto.SplitEditRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for EditSplits", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	entries, err := h.splitService.BuildSplitEntries(c.Request.Context(), userID, c.Param("id"), req.OldInput)
	if err != nil {
		respondWithError(c, logger, err, "to build splits")
		return
	}
	c.JSON(http.StatusOK, dto.SplitEditResponse{JournalID: c.Param("id"), Entries: entries})
}

// reconcileTransaction godoc
// @Summary Reconcile a leg
// @Description Marks the leg and its opposing leg reconciled
// @Tags journals
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.ReconcileResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to reconcile"
// @Security BearerAuth
// @Router /transactions/{id}/reconcile [post]
func (h *journalHandler) reconcileTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("transaction_id", c.Param("id")))
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	reconciled, err := h.journalService.Reconcile(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondWithError(c, logger, err, "to reconcile")
		return
	}
	c.JSON(http.StatusOK, dto.ReconcileResponse{Reconciled: reconciled})
}
