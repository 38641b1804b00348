package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shoprank/backend/internal/domain"
	"github.com/shoprank/backend/internal/usecase"
)

// RunCoordinator is the slice of the coordinator the HTTP surface needs.
type RunCoordinator interface {
	StartOne(clientID int64) error
	RunAll(ctx context.Context) ([]domain.RunReport, error)
	Status(clientID int64) domain.RunStatus
	Snapshot() []domain.RunStatus
	Reset(clientID int64) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	coord    RunCoordinator
	registry domain.Registry
}

// NewHandler creates a new HTTP handler
func NewHandler(coord RunCoordinator, registry domain.Registry) *Handler {
	return &Handler{coord: coord, registry: registry}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "shoprank-backend",
		"version": "1.0.0",
	})
}

// StartAllRuns triggers a tracking run for every client. The fan-out happens
// in the background; progress is observable via the run status endpoints.
func (h *Handler) StartAllRuns(c *gin.Context) {
	go func() {
		// Detached from the request context: runs are never cancelled
		// mid-flight.
		reports, err := h.coord.RunAll(context.Background())
		if err != nil {
			log.Printf("[HTTP] run-all failed: %v", err)
			return
		}
		for _, report := range reports {
			if report.Err != nil {
				log.Printf("[HTTP] client %d run failed: %v", report.ClientID, report.Err)
			}
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// StartClientRun triggers a tracking run for one client. A client whose
// previous run is still active gets 409; the attempt is not queued.
func (h *Handler) StartClientRun(c *gin.Context) {
	clientID, ok := clientIDParam(c)
	if !ok {
		return
	}

	if err := h.coord.StartOne(clientID); err != nil {
		if errors.Is(err, domain.ErrRunInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "clientId": clientID})
}

// ListRunStatuses returns the run state of every known client.
func (h *Handler) ListRunStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"runs": h.coord.Snapshot()})
}

// ClientRunStatus returns the run state of one client.
func (h *Handler) ClientRunStatus(c *gin.Context) {
	clientID, ok := clientIDParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.coord.Status(clientID))
}

// ResetClientRun transitions a finished run back to idle.
func (h *Handler) ResetClientRun(c *gin.Context) {
	clientID, ok := clientIDParam(c)
	if !ok {
		return
	}
	if err := h.coord.Reset(clientID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.coord.Status(clientID))
}

type createClientRequest struct {
	Name string `json:"name" binding:"required"`
	Memo string `json:"memo"`
}

// CreateClient registers a new client.
func (h *Handler) CreateClient(c *gin.Context) {
	var req createClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client, err := h.registry.CreateClient(c.Request.Context(), req.Name, req.Memo)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, client)
}

type addProductRequest struct {
	Reference    string `json:"reference" binding:"required"`
	DisplayName  string `json:"displayName"`
	MallNameHint string `json:"mallNameHint"`
}

// AddProduct resolves a product reference and registers it for tracking.
// Unresolvable references are rejected here and never enter the matching
// pipeline.
func (h *Handler) AddProduct(c *gin.Context) {
	clientID, ok := clientIDParam(c)
	if !ok {
		return
	}

	var req addProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, err := usecase.ResolveReference(req.Reference)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	product := &domain.TrackedProduct{
		ClientID:        clientID,
		ProductIdentity: identity,
		DisplayName:     req.DisplayName,
		MallNameHint:    req.MallNameHint,
	}
	if err := h.registry.AddProduct(c.Request.Context(), product); err != nil {
		if errors.Is(err, domain.ErrClientNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, product)
}

type addKeywordRequest struct {
	Text string `json:"text" binding:"required"`
}

// AddKeyword registers a search keyword for a client.
func (h *Handler) AddKeyword(c *gin.Context) {
	clientID, ok := clientIDParam(c)
	if !ok {
		return
	}

	var req addKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	keyword, err := h.registry.AddKeyword(c.Request.Context(), clientID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrClientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrDuplicateKeyword):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, keyword)
}

// History returns the rank observation log for one (client, keyword).
func (h *Handler) History(c *gin.Context) {
	clientID, ok := clientIDParam(c)
	if !ok {
		return
	}

	keyword := c.Query("keyword")
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keyword query parameter is required"})
		return
	}

	days := 14
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}

	since := time.Now().AddDate(0, 0, -days)
	history, err := h.registry.History(c.Request.Context(), clientID, keyword, since)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"keyword": keyword, "days": days, "observations": history})
}

// clientIDParam parses the :id path parameter, writing a 400 on failure.
func clientIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
		return 0, false
	}
	return id, true
}
