package consultation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/decision-api/internal/model"
	"github.com/clinicore/decision-api/internal/repository"
	apperrors "github.com/clinicore/decision-api/pkg/errors"
)

const defaultListLimit = 50

type Service struct {
	repo repository.ConsultationRepository
}

func NewService(repo repository.ConsultationRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateConsultation(ctx context.Context, consultation *model.Consultation) error {
	if err := s.validateConsultation(consultation); err != nil {
		return err
	}

	consultation.ID = uuid.New()
	consultation.CreatedAt = time.Now()
	consultation.UpdatedAt = time.Now()

	if err := s.marshalJSONFields(consultation); err != nil {
		return fmt.Errorf("failed to marshal JSON fields: %w", err)
	}

	if err := s.repo.Create(ctx, consultation); err != nil {
		return fmt.Errorf("failed to create consultation: %w", err)
	}
	return nil
}

func (s *Service) GetConsultation(ctx context.Context, id uuid.UUID) (*model.Consultation, error) {
	consultation, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.unmarshalJSONFields(consultation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON fields: %w", err)
	}
	return consultation, nil
}

func (s *Service) UpdateConsultation(ctx context.Context, consultation *model.Consultation) error {
	if err := s.validateConsultation(consultation); err != nil {
		return err
	}

	consultation.UpdatedAt = time.Now()

	if err := s.marshalJSONFields(consultation); err != nil {
		return fmt.Errorf("failed to marshal JSON fields: %w", err)
	}

	if err := s.repo.Update(ctx, consultation); err != nil {
		return fmt.Errorf("failed to update consultation: %w", err)
	}
	return nil
}

func (s *Service) DeleteConsultation(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete consultation: %w", err)
	}
	return nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*model.Consultation, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	consultations, err := s.repo.ListByPatient(ctx, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}

	for _, consultation := range consultations {
		if err := s.unmarshalJSONFields(consultation); err != nil {
			return nil, fmt.Errorf("failed to unmarshal consultation %s: %w", consultation.ID, err)
		}
	}
	return consultations, nil
}

func (s *Service) validateConsultation(consultation *model.Consultation) error {
	if consultation.PatientID == uuid.Nil {
		return apperrors.InvalidInput("patient ID is required")
	}
	if consultation.DoctorID == uuid.Nil {
		return apperrors.InvalidInput("doctor ID is required")
	}
	if consultation.Symptoms == "" {
		return apperrors.InvalidInput("symptoms are required")
	}
	if consultation.Diagnosis == "" {
		return apperrors.InvalidInput("diagnosis is required")
	}
	return nil
}

func (s *Service) marshalJSONFields(consultation *model.Consultation) error {
	if consultation.Medications == nil {
		consultation.Medications = []model.Medication{}
	}
	medicationsJSON, err := json.Marshal(consultation.Medications)
	if err != nil {
		return err
	}
	consultation.MedicationsJSON = medicationsJSON
	return nil
}

func (s *Service) unmarshalJSONFields(consultation *model.Consultation) error {
	if len(consultation.MedicationsJSON) == 0 {
		consultation.Medications = []model.Medication{}
		return nil
	}
	return json.Unmarshal(consultation.MedicationsJSON, &consultation.Medications)
}
