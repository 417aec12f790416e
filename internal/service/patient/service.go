package patient

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

type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePatient(ctx context.Context, patient *model.Patient) error {
	if err := s.validatePatient(patient); err != nil {
		return err
	}

	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	if err := s.marshalJSONFields(patient); err != nil {
		return fmt.Errorf("failed to marshal JSON fields: %w", err)
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.unmarshalJSONFields(patient); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON fields: %w", err)
	}
	return patient, nil
}

func (s *Service) UpdatePatient(ctx context.Context, patient *model.Patient) error {
	if err := s.validatePatient(patient); err != nil {
		return err
	}

	patient.UpdatedAt = time.Now()

	if err := s.marshalJSONFields(patient); err != nil {
		return fmt.Errorf("failed to marshal JSON fields: %w", err)
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

func (s *Service) ListPatients(ctx context.Context) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}

	for _, patient := range patients {
		if err := s.unmarshalJSONFields(patient); err != nil {
			return nil, fmt.Errorf("failed to unmarshal patient %s: %w", patient.ID, err)
		}
	}
	return patients, nil
}

func (s *Service) validatePatient(patient *model.Patient) error {
	if patient.FirstName == "" || patient.LastName == "" {
		return apperrors.InvalidInput("patient name is required")
	}
	if patient.Email == "" {
		return apperrors.InvalidInput("patient email is required")
	}
	return nil
}

func (s *Service) marshalJSONFields(patient *model.Patient) error {
	if patient.Allergies == nil {
		patient.Allergies = []string{}
	}
	if patient.MedicalHistory == nil {
		patient.MedicalHistory = []string{}
	}

	allergiesJSON, err := json.Marshal(patient.Allergies)
	if err != nil {
		return err
	}
	patient.AllergiesJSON = allergiesJSON

	historyJSON, err := json.Marshal(patient.MedicalHistory)
	if err != nil {
		return err
	}
	patient.MedicalHistoryJSON = historyJSON
	return nil
}

func (s *Service) unmarshalJSONFields(patient *model.Patient) error {
	patient.Allergies = []string{}
	patient.MedicalHistory = []string{}

	if len(patient.AllergiesJSON) > 0 {
		if err := json.Unmarshal(patient.AllergiesJSON, &patient.Allergies); err != nil {
			return err
		}
	}
	if len(patient.MedicalHistoryJSON) > 0 {
		if err := json.Unmarshal(patient.MedicalHistoryJSON, &patient.MedicalHistory); err != nil {
			return err
		}
	}
	return nil
}
