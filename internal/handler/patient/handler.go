package patient

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clinicore/decision-api/internal/handler"
	"github.com/clinicore/decision-api/internal/model"
	"github.com/clinicore/decision-api/internal/service/patient"
)

type Handler struct {
	service *patient.Service
}

func NewHandler(service *patient.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.POST("", h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeletePatient)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	record := &model.Patient{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		DateOfBirth:    req.DateOfBirth,
		Gender:         req.Gender,
		BloodGroup:     req.BloodGroup,
		Allergies:      req.Allergies,
		MedicalHistory: req.MedicalHistory,
	}

	if err := h.service.CreatePatient(c.Request.Context(), record); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(record))
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	record, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	record, err := h.service.GetPatient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	applyUpdate(record, &req)

	if err := h.service.UpdatePatient(c.Request.Context(), record); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(record))
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	if err := h.service.DeletePatient(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"message": "patient deleted"}))
}

func (h *Handler) ListPatients(c *gin.Context) {
	records, err := h.service.ListPatients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(records))
}

func applyUpdate(record *model.Patient, req *model.UpdatePatientRequest) {
	if req.FirstName != nil {
		record.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		record.LastName = *req.LastName
	}
	if req.Email != nil {
		record.Email = *req.Email
	}
	if req.Phone != nil {
		record.Phone = *req.Phone
	}
	if req.DateOfBirth != nil {
		record.DateOfBirth = *req.DateOfBirth
	}
	if req.Gender != nil {
		record.Gender = *req.Gender
	}
	if req.BloodGroup != nil {
		record.BloodGroup = *req.BloodGroup
	}
	if req.Allergies != nil {
		record.Allergies = req.Allergies
	}
	if req.MedicalHistory != nil {
		record.MedicalHistory = req.MedicalHistory
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
