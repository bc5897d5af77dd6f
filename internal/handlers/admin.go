package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AltKhyin/reviewcanvas/internal/pkg/logger"
	"github.com/AltKhyin/reviewcanvas/internal/services"
)

type AdminHandler struct {
	log        *logger.Logger
	migrations services.MigrationService
}

func NewAdminHandler(log *logger.Logger, migrations services.MigrationService) *AdminHandler {
	return &AdminHandler{
		log:        log.With("handler", "AdminHandler"),
		migrations: migrations,
	}
}

type tableMigrationRequest struct {
	// ReviewIDs limits the run; empty means every review.
	ReviewIDs   []int64 `json:"reviewIds"`
	Concurrency int     `json:"concurrency"`
}

// RunTableBlockMigration kicks off a batch tableBlock -> basicTable pass and
// returns the aggregated report. The pass is idempotent, so re-running after a
// partial failure is safe.
func (h *AdminHandler) RunTableBlockMigration(c *gin.Context) {
	var req tableMigrationRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		RespondError(c, http.StatusBadRequest, "malformed_body", err)
		return
	}

	report, err := h.migrations.RunBatch(c.Request.Context(), normalizeIDs(req.ReviewIDs), req.Concurrency)
	if err != nil {
		RespondMappedError(c, err)
		return
	}
	RespondOK(c, report)
}

// normalizeIDs maps an absent or empty list to nil, which RunBatch reads as
// "every review".
func normalizeIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	return ids
}
