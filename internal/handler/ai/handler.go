package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/clinicore/decision-api/internal/handler"
	"github.com/clinicore/decision-api/internal/middleware"
	"github.com/clinicore/decision-api/internal/model"
	"github.com/clinicore/decision-api/internal/repository"
	"github.com/clinicore/decision-api/internal/service/diagnosis"
	"github.com/clinicore/decision-api/pkg/metrics"
)

// Service interfaces consumed by the handler; the concrete services in
// internal/service satisfy them.
type (
	DiagnosisService interface {
		Diagnose(ctx context.Context, req *model.DiagnosisRequest) (*model.DiagnosisResult, error)
	}

	AMRService interface {
		Assess(ctx context.Context, patientID uuid.UUID) (*model.AMRAssessment, error)
	}

	AssistantService interface {
		Respond(ctx context.Context, userID uuid.UUID, req *model.ChatRequest) (*model.ChatResponse, string, error)
		History(ctx context.Context, sessionID string) ([]*model.ChatTurn, error)
	}

	ImagingService interface {
		Analyze(ctx context.Context, userID uuid.UUID, imageBytes []byte) (*model.SkinAnalysis, error)
	}
)

type Handler struct {
	diagnosisSvc DiagnosisService
	amrSvc       AMRService
	assistantSvc AssistantService
	imagingSvc   ImagingService
	outboxRepo   repository.OutboxRepository
	metrics      *metrics.Metrics
}

func NewHandler(
	diagnosisSvc DiagnosisService,
	amrSvc AMRService,
	assistantSvc AssistantService,
	imagingSvc ImagingService,
	outboxRepo repository.OutboxRepository,
	m *metrics.Metrics,
) *Handler {
	return &Handler{
		diagnosisSvc: diagnosisSvc,
		amrSvc:       amrSvc,
		assistantSvc: assistantSvc,
		imagingSvc:   imagingSvc,
		outboxRepo:   outboxRepo,
		metrics:      m,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	ai := r.Group("/ai")
	{
		ai.POST("/diagnosis", h.Diagnose)
		ai.POST("/chat", h.Chat)
		ai.GET("/chat/history/:sessionId", h.ChatHistory)
		ai.POST("/skin-analysis", h.SkinAnalysis)
		ai.GET("/amr/risk/:patientId", h.AMRRisk)
	}
}

func (h *Handler) Diagnose(c *gin.Context) {
	var req model.DiagnosisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.diagnosisSvc.Diagnose(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.metrics.DiagnosesTotal.WithLabelValues(diagnosis.MatchedRule(req.Symptoms)).Inc()
	h.createOutboxEvent(c, model.EventDiagnosisIssued, gin.H{
		"patient_id":  req.PatientID,
		"suggestions": result.Suggestions,
		"warnings":    result.Warnings,
	})

	c.JSON(http.StatusOK, handler.NewSuccessResponse(result))
}

func (h *Handler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	resp, topic, err := h.assistantSvc.Respond(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.metrics.ChatRepliesTotal.WithLabelValues(topic).Inc()
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) ChatHistory(c *gin.Context) {
	turns, err := h.assistantSvc.History(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"messages": turns}))
}

func (h *Handler) SkinAnalysis(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("image file is required"))
		return
	}
	defer file.Close()

	imageBytes, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("failed to read image file"))
		return
	}

	analysis, err := h.imagingSvc.Analyze(c.Request.Context(), middleware.UserID(c), imageBytes)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.metrics.ImageAnalysesTotal.Inc()
	c.JSON(http.StatusOK, handler.NewSuccessResponse(analysis))
}

func (h *Handler) AMRRisk(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	assessment, err := h.amrSvc.Assess(c.Request.Context(), patientID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.metrics.AssessmentsTotal.WithLabelValues(string(assessment.RiskLevel)).Inc()
	if assessment.RiskLevel == model.RiskLevelHigh {
		h.createOutboxEvent(c, model.EventAMRHighRisk, assessment)
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(assessment))
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var statusErr interface{ StatusCode() int }
	if errors.As(err, &statusErr) {
		status = statusErr.StatusCode()
	}
	c.JSON(status, handler.NewErrorResponse(err.Error()))
}

// createOutboxEvent records a clinical event for asynchronous
// publication; failures are logged, never surfaced to the caller.
func (h *Handler) createOutboxEvent(c *gin.Context, eventType string, payload interface{}) {
	if h.outboxRepo == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal outbox payload")
		return
	}
	if err := h.outboxRepo.Create(c.Request.Context(), &model.OutboxEvent{
		EventType: eventType,
		Payload:   data,
	}); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("failed to create outbox event")
	}
}
