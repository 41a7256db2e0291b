package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/auroramart/personalization/internal/domain"
	"github.com/auroramart/personalization/internal/observability"
	"github.com/auroramart/personalization/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// CustomerHeader carries the authenticated customer id, set by the upstream storefront
const CustomerHeader = "X-Customer-ID"

// RecommendationService is the recommender as seen by the HTTP layer
type RecommendationService interface {
	Recommend(ctx context.Context, req domain.RecommendationRequest) (*domain.RecommendationResult, error)
	RecommendForCart(ctx context.Context, customerID uint, metric domain.RankingMetric, topN int) (*domain.RecommendationResult, error)
	PlacementSize(placement string) (int, error)
}

// PreferenceService predicts and stores preferred categories
type PreferenceService interface {
	PredictForCustomer(ctx context.Context, customerID uint) (*usecase.CategoryAssignment, error)
	AssignPreferredCategory(ctx context.Context, customerID uint) (*usecase.CategoryAssignment, error)
}

// AssistantService answers chat messages
type AssistantService interface {
	Ask(ctx context.Context, sessionID, customerID uint, text string) (*domain.ChatReply, error)
}

// Handler holds dependencies for HTTP handlers. Any service may be nil; its endpoints then answer 503.
type Handler struct {
	recommender RecommendationService
	preferences PreferenceService
	assistant   AssistantService
	log         zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(recommender RecommendationService, preferences PreferenceService, assistant AssistantService, log zerolog.Logger) *Handler {
	return &Handler{
		recommender: recommender,
		preferences: preferences,
		assistant:   assistant,
		log:         observability.Component(log, "http"),
	}
}

// RecommendationResponse is the body of both recommendation endpoints
type RecommendationResponse struct {
	SKUs     []string                    `json:"skus"`
	Products []domain.Product            `json:"products"`
	Source   domain.RecommendationSource `json:"source"`
}

// ChatRequest is the body of a chat message post
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "auroramart-personalization",
		"version": "1.0.0",
	})
}

// GetRecommendations handles GET /api/v1/recommendations?items=A,B&metric=lift&top_n=5&placement=cart
func (h *Handler) GetRecommendations(c *gin.Context) {
	if h.recommender == nil {
		h.unavailable(c, "recommender")
		return
	}

	topN, err := h.listSize(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	result, err := h.recommender.Recommend(c.Request.Context(), domain.RecommendationRequest{
		Items:  queryList(c, "items"),
		Metric: domain.RankingMetric(c.Query("metric")),
		TopN:   topN,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecommendationResponse(result))
}

// GetCartRecommendations handles GET /api/v1/customers/:id/cart/recommendations
func (h *Handler) GetCartRecommendations(c *gin.Context) {
	if h.recommender == nil {
		h.unavailable(c, "recommender")
		return
	}

	customerID, err := parseID(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	topN, err := h.listSize(c)
	if err != nil {
		h.writeError(c, err)
		return
	}

	result, err := h.recommender.RecommendForCart(c.Request.Context(), customerID, domain.RankingMetric(c.Query("metric")), topN)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecommendationResponse(result))
}

// GetPreferredCategory handles GET /api/v1/customers/:id/preferred-category
func (h *Handler) GetPreferredCategory(c *gin.Context) {
	h.preferredCategory(c, false)
}

// AssignPreferredCategory handles POST /api/v1/customers/:id/preferred-category
func (h *Handler) AssignPreferredCategory(c *gin.Context) {
	h.preferredCategory(c, true)
}

func (h *Handler) preferredCategory(c *gin.Context, persist bool) {
	if h.preferences == nil {
		h.unavailable(c, "category predictor")
		return
	}

	customerID, err := parseID(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	var assignment *usecase.CategoryAssignment
	if persist {
		assignment, err = h.preferences.AssignPreferredCategory(c.Request.Context(), customerID)
	} else {
		assignment, err = h.preferences.PredictForCustomer(c.Request.Context(), customerID)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// PostChatMessage handles POST /api/v1/chat/sessions/:id/messages
func (h *Handler) PostChatMessage(c *gin.Context) {
	if h.assistant == nil {
		h.unavailable(c, "assistant")
		return
	}

	sessionID, err := parseID(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	customerID, err := parseID(c.GetHeader(CustomerHeader))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid " + CustomerHeader + " header"})
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	reply, err := h.assistant.Ask(c.Request.Context(), sessionID, customerID, req.Message)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// listSize resolves the requested list length: top_n wins over placement, zero means the service default
func (h *Handler) listSize(c *gin.Context) (int, error) {
	if raw := c.Query("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%w: top_n must be a positive integer", domain.ErrInvalidRequest)
		}
		return n, nil
	}
	if placement := c.Query("placement"); placement != "" {
		return h.recommender.PlacementSize(placement)
	}
	return 0, nil
}

func (h *Handler) unavailable(c *gin.Context, service string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": service + " not configured"})
}

// writeError maps domain errors to status codes. Unrecognized errors are logged and hidden behind a 500.
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidMetric):
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrModelUnavailable), errors.Is(err, domain.ErrInvalidArtifact):
		status = http.StatusServiceUnavailable
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", domain.ErrInvalidRequest)
	}
	return uint(id), nil
}

// queryList accepts both repeated parameters and comma separated values
func queryList(c *gin.Context, key string) []string {
	var values []string
	for _, raw := range c.QueryArray(key) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
	}
	return values
}

func toRecommendationResponse(result *domain.RecommendationResult) RecommendationResponse {
	products := result.Products
	if products == nil {
		products = []domain.Product{}
	}
	return RecommendationResponse{
		SKUs:     result.SKUs(),
		Products: products,
		Source:   result.Source,
	}
}
