package consultation

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/decision-api/internal/handler"
	"github.com/clinicore/decision-api/internal/model"
	"github.com/clinicore/decision-api/internal/service/consultation"
)

type Handler struct {
	service *consultation.Service
}

func NewHandler(service *consultation.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	consultations := r.Group("/consultations")
	{
		consultations.POST("", h.CreateConsultation)
		consultations.GET("/:id", h.GetConsultation)
		consultations.PUT("/:id", h.UpdateConsultation)
		consultations.DELETE("/:id", h.DeleteConsultation)
	}
	r.GET("/patients/:id/consultations", h.ListPatientConsultations)
}

func (h *Handler) CreateConsultation(c *gin.Context) {
	var req model.CreateConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid doctor ID"))
		return
	}

	record := &model.Consultation{
		PatientID:        patientID,
		DoctorID:         doctorID,
		Symptoms:         req.Symptoms,
		Diagnosis:        req.Diagnosis,
		ICDCode:          req.ICDCode,
		Medications:      req.Medications,
		Notes:            req.Notes,
		FollowUpRequired: req.FollowUpRequired,
		FollowUpDate:     req.FollowUpDate,
	}

	if err := h.service.CreateConsultation(c.Request.Context(), record); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(record))
}

func (h *Handler) GetConsultation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid consultation ID"))
		return
	}

	record, err := h.service.GetConsultation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) UpdateConsultation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid consultation ID"))
		return
	}

	var req model.UpdateConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	record, err := h.service.GetConsultation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	applyUpdate(record, &req)

	if err := h.service.UpdateConsultation(c.Request.Context(), record); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) DeleteConsultation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid consultation ID"))
		return
	}

	if err := h.service.DeleteConsultation(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "consultation deleted"}))
}

func (h *Handler) ListPatientConsultations(c *gin.Context) {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid limit"))
			return
		}
	}

	records, err := h.service.ListByPatient(c.Request.Context(), patientID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func applyUpdate(record *model.Consultation, req *model.UpdateConsultationRequest) {
	if req.Symptoms != nil {
		record.Symptoms = *req.Symptoms
	}
	if req.Diagnosis != nil {
		record.Diagnosis = *req.Diagnosis
	}
	if req.ICDCode != nil {
		record.ICDCode = *req.ICDCode
	}
	if req.Medications != nil {
		record.Medications = req.Medications
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}
	if req.FollowUpRequired != nil {
		record.FollowUpRequired = *req.FollowUpRequired
	}
	if req.FollowUpDate != nil {
		record.FollowUpDate = req.FollowUpDate
	}
}

func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var statusErr interface{ StatusCode() int }
	if errors.As(err, &statusErr) {
		status = statusErr.StatusCode()
	}
	c.JSON(status, handler.NewErrorResponse(err.Error()))
}
