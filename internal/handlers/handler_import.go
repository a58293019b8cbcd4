package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/fireledger/internal/core/ports/services"
	"github.com/SscSPs/fireledger/internal/dto"
	"github.com/SscSPs/fireledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type importHandler struct {
	importService portssvc.ImportSvc
}

func registerImportRoutes(rg *gin.RouterGroup, importService portssvc.ImportSvc) {
	h := &importHandler{importService: importService}
	rg.POST("/import", h.importRows)
}

// importRows godoc
// @Summary Import statement rows
// @Description Stores each role-tagged row as a journal. Row failures are reported per row; configuration errors abort the run.
// @Tags import
// @Accept  json
// @Produce  json
// @Param   rows body dto.ImportRowsRequest true "Rows to import"
// @Success 200 {object} dto.ImportResponse
// @Failure 400 {object} map[string]string "Invalid input format"
// @Failure 500 {object} map[string]string "Import aborted"
// @Security BearerAuth
// @Router /import [post]
func (h *importHandler) importRows(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ImportRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ImportRows", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	userID, ok := requireUser(c, logger)
	if !ok {
		return
	}

	logger.Info("Received import", slog.Int("rows", len(req.Rows)))
	resp, err := h.importService.ImportRows(c.Request.Context(), userID, req)
	if err != nil {
		if resp != nil {
			// Rows stored before the abort stay stored; report them with the error.
			logger.Error("Import aborted", slog.Int("stored", resp.Stored), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": resp})
			return
		}
		respondWithError(c, logger, err, "to import rows")
		return
	}
	logger.Info("Import finished", slog.Int("stored", resp.Stored), slog.Int("failed", resp.Failed))
	c.JSON(http.StatusOK, resp)
}
