package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AltKhyin/reviewcanvas/internal/document"
	"github.com/AltKhyin/reviewcanvas/internal/editor"
	"github.com/AltKhyin/reviewcanvas/internal/pkg/logger"
	"github.com/AltKhyin/reviewcanvas/internal/services"
)

type SessionHandler struct {
	log      *logger.Logger
	sessions services.SessionManager
}

func NewSessionHandler(log *logger.Logger, sessions services.SessionManager) *SessionHandler {
	return &SessionHandler{
		log:      log.With("handler", "SessionHandler"),
		sessions: sessions,
	}
}

type sessionStateResponse struct {
	ReviewID    int64                  `json:"reviewId"`
	Dirty       bool                   `json:"dirty"`
	Document    *document.Document     `json:"document"`
	Selection   editor.SelectionState  `json:"selection"`
	Interaction editor.InteractionState `json:"interaction"`
}

func (h *SessionHandler) state(session *editor.Session) sessionStateResponse {
	return sessionStateResponse{
		ReviewID:    session.ReviewID(),
		Dirty:       session.Dirty(),
		Document:    session.Snapshot(),
		Selection:   session.Selection(),
		Interaction: session.Interaction(),
	}
}

// session resolves the path id to an open session, writing the error response
// itself when there is none.
func (h *SessionHandler) session(c *gin.Context) (*editor.Session, bool) {
	reviewID, err := reviewIDParam(c)
	if err != nil {
		RespondMappedError(c, err)
		return nil, false
	}
	session, ok := h.sessions.Get(reviewID)
	if !ok {
		RespondError(c, http.StatusNotFound, "session_not_open",
			fmt.Errorf("no open editing session for review %d", reviewID))
		return nil, false
	}
	return session, true
}

func (h *SessionHandler) Open(c *gin.Context) {
	reviewID, err := reviewIDParam(c)
	if err != nil {
		RespondMappedError(c, err)
		return
	}
	session, err := h.sessions.Open(c.Request.Context(), reviewID)
	if err != nil {
		RespondMappedError(c, err)
		return
	}
	RespondOK(c, h.state(session))
}

func (h *SessionHandler) Close(c *gin.Context) {
	reviewID, err := reviewIDParam(c)
	if err != nil {
		RespondMappedError(c, err)
		return
	}
	if err := h.sessions.Close(c.Request.Context(), reviewID); err != nil {
		RespondMappedError(c, err)
		return
	}
	RespondOK(c, gin.H{"closed": true})
}

func (h *SessionHandler) Save(c *gin.Context) {
	reviewID, err := reviewIDParam(c)
	if err != nil {
		RespondMappedError(c, err)
		return
	}
	record, err := h.sessions.Save(c.Request.Context(), reviewID)
	if err != nil {
		RespondMappedError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"reviewId":  record.ReviewID,
		"updatedAt": record.UpdatedAt,
	})
}

func (h *SessionHandler) State(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	RespondOK(c, h.state(session))
}

type addNodeRequest struct {
	Type string `json:"type" binding:"required"`
}

func (h *SessionHandler) AddNode(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req addNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "malformed_body", err)
		return
	}
	node := session.AddNode(req.Type)
	RespondOK(c, gin.H{"node": node, "selection": session.Selection()})
}

func (h *SessionHandler) UpdateNode(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var patch map[string]any
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondError(c, http.StatusBadRequest, "malformed_body", err)
		return
	}
	nodeID := c.Param("nodeId")
	if !session.UpdateNodeData(nodeID, patch) {
		RespondError(c, http.StatusNotFound, "node_not_found", errNodeNotFound(nodeID))
		return
	}
	RespondOK(c, gin.H{"nodeId": nodeID, "version": session.NodeVersion(nodeID)})
}

type moveNodeRequest struct {
	Position document.Position `json:"position" binding:"required"`
	Mobile   bool              `json:"mobile"`
}

func (h *SessionHandler) MoveNode(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req moveNodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "malformed_body", err)
		return
	}
	nodeID := c.Param("nodeId")
	if !session.MoveNode(nodeID, req.Position, req.Mobile) {
		RespondError(c, http.StatusNotFound, "node_not_found", errNodeNotFound(nodeID))
		return
	}
	RespondOK(c, gin.H{"nodeId": nodeID, "version": session.NodeVersion(nodeID)})
}

func (h *SessionHandler) DeleteNode(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	nodeID := c.Param("nodeId")
	if !session.DeleteNode(nodeID) {
		RespondError(c, http.StatusNotFound, "node_not_found", errNodeNotFound(nodeID))
		return
	}
	RespondOK(c, gin.H{"deleted": nodeID, "selection": session.Selection()})
}

func (h *SessionHandler) DuplicateNode(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	nodeID := c.Param("nodeId")
	copyNode, ok := session.DuplicateNode(nodeID)
	if !ok {
		RespondError(c, http.StatusNotFound, "node_not_found", errNodeNotFound(nodeID))
		return
	}
	RespondOK(c, gin.H{"node": copyNode, "selection": session.Selection()})
}

type selectRequest struct {
	NodeID      string `json:"nodeId" binding:"required"`
	MultiSelect bool   `json:"multiSelect"`
	RangeSelect bool   `json:"rangeSelect"`
}

func (h *SessionHandler) Select(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "malformed_body", err)
		return
	}
	session.SelectBlock(req.NodeID, editor.SelectOptions{
		MultiSelect: req.MultiSelect,
		RangeSelect: req.RangeSelect,
	})
	RespondOK(c, session.Selection())
}

func (h *SessionHandler) ClearSelection(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	session.ClearSelection()
	RespondOK(c, session.Selection())
}

type selectionRectRequest struct {
	Rect *editor.Rect `json:"rect"`
}

func (h *SessionHandler) SetSelectionRect(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req selectionRectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "malformed_body", err)
		return
	}
	session.SetSelectionRect(req.Rect)
	RespondOK(c, session.Selection())
}

type focusRequest struct {
	NodeID string `json:"nodeId" binding:"required"`
}

func (h *SessionHandler) Focus(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req focusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "malformed_body", err)
		return
	}
	session.FocusBlock(req.NodeID)
	RespondOK(c, session.Interaction())
}

func errNodeNotFound(nodeID string) error {
	return fmt.Errorf("node %s is not in the document", nodeID)
}
