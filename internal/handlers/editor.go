package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AltKhyin/reviewcanvas/internal/canvas"
	"github.com/AltKhyin/reviewcanvas/internal/clients/redis"
	"github.com/AltKhyin/reviewcanvas/internal/document"
	"github.com/AltKhyin/reviewcanvas/internal/document/migrate"
	pkgerrors "github.com/AltKhyin/reviewcanvas/internal/pkg/errors"
	"github.com/AltKhyin/reviewcanvas/internal/pkg/logger"
	"github.com/AltKhyin/reviewcanvas/internal/services"
)

type EditorHandler struct {
	log         *logger.Logger
	persistence services.ContentPersistenceService
	cache       redis.RenderCache
	// mobileCanvasWidth is the configured narrow-viewport rendering width.
	mobileCanvasWidth float64
}

func NewEditorHandler(log *logger.Logger, persistence services.ContentPersistenceService, cache redis.RenderCache, mobileCanvasWidth float64) *EditorHandler {
	return &EditorHandler{
		log:               log.With("handler", "EditorHandler"),
		persistence:       persistence,
		cache:             cache,
		mobileCanvasWidth: mobileCanvasWidth,
	}
}

func reviewIDParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: review id %q", pkgerrors.ErrInvalidArgument, c.Param("id"))
	}
	return id, nil
}

type editorContentResponse struct {
	ReviewID       int64                   `json:"reviewId"`
	Classification document.Classification `json:"classification"`
	Document       *document.Document      `json:"document"`
}

// GetContent returns the stored document lifted to the canonical shape. The
// lift happens in memory only; the stored payload is untouched until a save.
func (h *EditorHandler) GetContent(c *gin.Context) {
	reviewID, err := reviewIDParam(c)
	if err != nil {
		RespondMappedError(c, err)
		return
	}

	record, err := h.persistence.Load(c.Request.Context(), reviewID)
	if err != nil {
		RespondMappedError(c, err)
		return
	}
	if record == nil {
		RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("review %d not found", reviewID))
		return
	}

	doc := record.Document
	if doc == nil {
		doc, _ = migrate.ToCanonical([]byte(record.Raw), record.Classification)
	}
	RespondOK(c, editorContentResponse{
		ReviewID:       reviewID,
		Classification: record.Classification,
		Document:       doc,
	})
}

// PutContent validates and persists a full document, replacing the stored
// payload.
func (h *EditorHandler) PutContent(c *gin.Context) {
	reviewID, err := reviewIDParam(c)
	if err != nil {
		RespondMappedError(c, err)
		return
	}

	var doc document.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		RespondError(c, http.StatusBadRequest, "malformed_body", err)
		return
	}

	record, err := h.persistence.Save(c.Request.Context(), reviewID, &doc)
	if err != nil {
		RespondMappedError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"reviewId":  record.ReviewID,
		"updatedAt": record.UpdatedAt,
	})
}

// GetRendered computes (or serves from cache) the render plan for one
// viewport. The same plan backs the editable surface, so cached reader output
// can never drift from what the author saw.
func (h *EditorHandler) GetRendered(c *gin.Context) {
	reviewID, err := reviewIDParam(c)
	if err != nil {
		RespondMappedError(c, err)
		return
	}

	viewport := canvas.Viewport(c.DefaultQuery("viewport", string(canvas.ViewportDesktop)))
	if viewport != canvas.ViewportDesktop && viewport != canvas.ViewportMobile {
		RespondError(c, http.StatusBadRequest, "invalid_argument",
			fmt.Errorf("unknown viewport %q", viewport))
		return
	}

	if h.cache != nil {
		if plan, ok := h.cache.GetPlan(c.Request.Context(), reviewID, viewport); ok {
			RespondOK(c, plan)
			return
		}
	}

	record, err := h.persistence.Load(c.Request.Context(), reviewID)
	if err != nil {
		RespondMappedError(c, err)
		return
	}
	if record == nil {
		RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("review %d not found", reviewID))
		return
	}
	doc := record.Document
	if doc == nil {
		doc, _ = migrate.ToCanonical([]byte(record.Raw), record.Classification)
	}

	plan := canvas.ComputeRenderPlan(doc, viewport, canvas.PlanOptions{
		MobileCanvasWidth: h.mobileCanvasWidth,
	})
	if h.cache != nil {
		h.cache.SetPlan(c.Request.Context(), reviewID, viewport, &plan)
	}
	RespondOK(c, plan)
}
