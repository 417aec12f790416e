package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/decision-api/internal/model"
	apperrors "github.com/clinicore/decision-api/pkg/errors"
	"github.com/clinicore/decision-api/pkg/metrics"
)

type fakeDiagnosisService struct {
	result *model.DiagnosisResult
	err    error
}

func (f *fakeDiagnosisService) Diagnose(ctx context.Context, req *model.DiagnosisRequest) (*model.DiagnosisResult, error) {
	return f.result, f.err
}

type fakeAMRService struct {
	assessment *model.AMRAssessment
	err        error
}

func (f *fakeAMRService) Assess(ctx context.Context, patientID uuid.UUID) (*model.AMRAssessment, error) {
	return f.assessment, f.err
}

type fakeAssistantService struct {
	resp  *model.ChatResponse
	topic string
	turns []*model.ChatTurn
	err   error
}

func (f *fakeAssistantService) Respond(ctx context.Context, userID uuid.UUID, req *model.ChatRequest) (*model.ChatResponse, string, error) {
	return f.resp, f.topic, f.err
}

func (f *fakeAssistantService) History(ctx context.Context, sessionID string) ([]*model.ChatTurn, error) {
	return f.turns, f.err
}

type fakeImagingService struct {
	analysis *model.SkinAnalysis
	err      error
}

func (f *fakeImagingService) Analyze(ctx context.Context, userID uuid.UUID, imageBytes []byte) (*model.SkinAnalysis, error) {
	return f.analysis, f.err
}

type fakeOutboxRepo struct {
	events []*model.OutboxEvent
	err    error
}

func (f *fakeOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepo) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	return nil
}

func (f *fakeOutboxRepo) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

func testMetrics() *metrics.Metrics {
	return metrics.New("test", prometheus.NewRegistry())
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (string, string, json.RawMessage) {
	t.Helper()
	var envelope struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Status, envelope.Message, envelope.Data
}

func TestDiagnoseEndpoint(t *testing.T) {
	outbox := &fakeOutboxRepo{}
	h := NewHandler(
		&fakeDiagnosisService{result: &model.DiagnosisResult{
			Suggestions: []model.ConditionSuggestion{{Condition: "Upper Respiratory Infection", ICDCode: "J06.9", Probability: 0.85}},
			Medications: []model.Medication{{Name: "Amoxicillin"}},
			Confidence:  0.85,
			Warnings:    []string{},
		}},
		&fakeAMRService{},
		&fakeAssistantService{},
		&fakeImagingService{},
		outbox,
		testMetrics(),
	)
	engine := newTestRouter(h)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/ai/diagnosis", gin.H{
		"symptoms":   "fever and cough",
		"patient_id": uuid.New().String(),
	})

	require.Equal(t, http.StatusOK, w.Code)
	status, _, data := decodeEnvelope(t, w)
	assert.Equal(t, "success", status)

	var result model.DiagnosisResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, "J06.9", result.Suggestions[0].ICDCode)
	assert.NotNil(t, result.Warnings)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventDiagnosisIssued, outbox.events[0].EventType)
}

func TestDiagnoseEndpointMissingFields(t *testing.T) {
	h := NewHandler(&fakeDiagnosisService{}, &fakeAMRService{}, &fakeAssistantService{}, &fakeImagingService{}, nil, testMetrics())
	engine := newTestRouter(h)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/ai/diagnosis", gin.H{"symptoms": "fever"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDiagnoseEndpointServiceError(t *testing.T) {
	h := NewHandler(
		&fakeDiagnosisService{err: apperrors.Unavailable("consultation store", errors.New("down"))},
		&fakeAMRService{}, &fakeAssistantService{}, &fakeImagingService{}, nil, testMetrics(),
	)
	engine := newTestRouter(h)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/ai/diagnosis", gin.H{
		"symptoms":   "fever and cough",
		"patient_id": uuid.New().String(),
	})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	status, message, _ := decodeEnvelope(t, w)
	assert.Equal(t, "error", status)
	assert.Contains(t, message, "consultation store unavailable")
}

func TestDiagnoseEndpointOutboxFailureIgnored(t *testing.T) {
	h := NewHandler(
		&fakeDiagnosisService{result: &model.DiagnosisResult{Warnings: []string{}}},
		&fakeAMRService{}, &fakeAssistantService{}, &fakeImagingService{},
		&fakeOutboxRepo{err: errors.New("insert failed")},
		testMetrics(),
	)
	engine := newTestRouter(h)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/ai/diagnosis", gin.H{
		"symptoms":   "fever and cough",
		"patient_id": uuid.New().String(),
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChatEndpoint(t *testing.T) {
	h := NewHandler(
		&fakeDiagnosisService{}, &fakeAMRService{},
		&fakeAssistantService{
			resp:  &model.ChatResponse{Response: "canned reply", SessionID: "s1", Confidence: 0.90},
			topic: "diabetes",
		},
		&fakeImagingService{}, nil, testMetrics(),
	)
	engine := newTestRouter(h)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/ai/chat", gin.H{
		"message":    "diabetes guidelines",
		"session_id": "s1",
	})

	require.Equal(t, http.StatusOK, w.Code)
	_, _, data := decodeEnvelope(t, w)
	var resp model.ChatResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, "canned reply", resp.Response)
	assert.Equal(t, 0.90, resp.Confidence)
}

func TestChatEndpointMissingSession(t *testing.T) {
	h := NewHandler(&fakeDiagnosisService{}, &fakeAMRService{}, &fakeAssistantService{}, &fakeImagingService{}, nil, testMetrics())
	engine := newTestRouter(h)

	w := doJSON(t, engine, http.MethodPost, "/api/v1/ai/chat", gin.H{"message": "hello"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHistoryEndpoint(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	h := NewHandler(
		&fakeDiagnosisService{}, &fakeAMRService{},
		&fakeAssistantService{turns: []*model.ChatTurn{
			{ID: uuid.New(), SessionID: "s1", Role: model.ChatRoleUser, Text: "hi", Timestamp: now},
			{ID: uuid.New(), SessionID: "s1", Role: model.ChatRoleAssistant, Text: "hello", Timestamp: now},
		}},
		&fakeImagingService{}, nil, testMetrics(),
	)
	engine := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ai/chat/history/s1", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	_, _, data := decodeEnvelope(t, w)
	var body struct {
		Messages []*model.ChatTurn `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(data, &body))
	require.Len(t, body.Messages, 2)
	assert.Equal(t, model.ChatRoleUser, body.Messages[0].Role)
}

func TestSkinAnalysisEndpoint(t *testing.T) {
	h := NewHandler(
		&fakeDiagnosisService{}, &fakeAMRService{}, &fakeAssistantService{},
		&fakeImagingService{analysis: &model.SkinAnalysis{
			Findings: []model.ImageFinding{
				{Condition: "Eczema", Probability: 0.85, Severity: model.SeverityMild},
			},
			Confidence: 0.85,
		}},
		nil, testMetrics(),
	)
	engine := newTestRouter(h)

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{A: 255})
	var imgBuf bytes.Buffer
	require.NoError(t, png.Encode(&imgBuf, img))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "lesion.png")
	require.NoError(t, err)
	_, err = part.Write(imgBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/skin-analysis", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	_, _, data := decodeEnvelope(t, w)
	var analysis model.SkinAnalysis
	require.NoError(t, json.Unmarshal(data, &analysis))
	assert.Equal(t, "Eczema", analysis.Findings[0].Condition)
}

func TestSkinAnalysisEndpointMissingFile(t *testing.T) {
	h := NewHandler(&fakeDiagnosisService{}, &fakeAMRService{}, &fakeAssistantService{}, &fakeImagingService{}, nil, testMetrics())
	engine := newTestRouter(h)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/skin-analysis", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSkinAnalysisEndpointUndecodableImage(t *testing.T) {
	h := NewHandler(
		&fakeDiagnosisService{}, &fakeAMRService{}, &fakeAssistantService{},
		&fakeImagingService{err: apperrors.InvalidImage(errors.New("image: unknown format"))},
		nil, testMetrics(),
	)
	engine := newTestRouter(h)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "junk.bin")
	require.NoError(t, err)
	_, err = part.Write([]byte("not an image"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/skin-analysis", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAMRRiskEndpoint(t *testing.T) {
	patientID := uuid.New()
	outbox := &fakeOutboxRepo{}
	h := NewHandler(
		&fakeDiagnosisService{},
		&fakeAMRService{assessment: &model.AMRAssessment{
			PatientID: patientID.String(),
			RiskScore: 60,
			RiskLevel: model.RiskLevelHigh,
		}},
		&fakeAssistantService{}, &fakeImagingService{}, outbox, testMetrics(),
	)
	engine := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ai/amr/risk/"+patientID.String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	_, _, data := decodeEnvelope(t, w)
	var assessment model.AMRAssessment
	require.NoError(t, json.Unmarshal(data, &assessment))
	assert.Equal(t, 60, assessment.RiskScore)

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventAMRHighRisk, outbox.events[0].EventType)
}

func TestAMRRiskEndpointLowRiskNoEvent(t *testing.T) {
	outbox := &fakeOutboxRepo{}
	h := NewHandler(
		&fakeDiagnosisService{},
		&fakeAMRService{assessment: &model.AMRAssessment{RiskScore: 15, RiskLevel: model.RiskLevelLow}},
		&fakeAssistantService{}, &fakeImagingService{}, outbox, testMetrics(),
	)
	engine := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ai/amr/risk/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, outbox.events)
}

func TestAMRRiskEndpointInvalidID(t *testing.T) {
	h := NewHandler(&fakeDiagnosisService{}, &fakeAMRService{}, &fakeAssistantService{}, &fakeImagingService{}, nil, testMetrics())
	engine := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ai/amr/risk/not-a-uuid", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
