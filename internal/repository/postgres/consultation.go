package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	apperrors "github.com/clinicore/decision-api/pkg/errors"

	"github.com/clinicore/decision-api/internal/model"
	"github.com/clinicore/decision-api/internal/repository"
)

type consultationRepository struct {
	db *sqlx.DB
}

func NewConsultationRepository(db *sqlx.DB) repository.ConsultationRepository {
	return &consultationRepository{db: db}
}

func (r *consultationRepository) Create(ctx context.Context, consultation *model.Consultation) error {
	query := `
		INSERT INTO consultations (id, patient_id, doctor_id, symptoms, diagnosis, icd_code, medications, notes, follow_up_required, follow_up_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	consultation.CreatedAt = time.Now()
	consultation.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		consultation.ID,
		consultation.PatientID,
		consultation.DoctorID,
		consultation.Symptoms,
		consultation.Diagnosis,
		consultation.ICDCode,
		consultation.MedicationsJSON,
		consultation.Notes,
		consultation.FollowUpRequired,
		consultation.FollowUpDate,
		consultation.CreatedAt,
		consultation.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create consultation: %w", err)
	}
	return nil
}

func (r *consultationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Consultation, error) {
	query := `SELECT * FROM consultations WHERE id = $1`
	var consultation model.Consultation
	err := r.db.GetContext(ctx, &consultation, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("consultation", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get consultation: %w", err)
	}
	return &consultation, nil
}

func (r *consultationRepository) Update(ctx context.Context, consultation *model.Consultation) error {
	query := `
		UPDATE consultations
		SET symptoms = $1, diagnosis = $2, icd_code = $3, medications = $4, notes = $5, follow_up_required = $6, follow_up_date = $7, updated_at = $8
		WHERE id = $9
	`
	_, err := r.db.ExecContext(ctx, query,
		consultation.Symptoms,
		consultation.Diagnosis,
		consultation.ICDCode,
		consultation.MedicationsJSON,
		consultation.Notes,
		consultation.FollowUpRequired,
		consultation.FollowUpDate,
		time.Now(),
		consultation.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update consultation: %w", err)
	}
	return nil
}

func (r *consultationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM consultations WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *consultationRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*model.Consultation, error) {
	query := `
		SELECT * FROM consultations
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	var consultations []*model.Consultation
	err := r.db.SelectContext(ctx, &consultations, query, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultations: %w", err)
	}
	return consultations, nil
}
