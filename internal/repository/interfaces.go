package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicore/decision-api/internal/model"
)

// All repository interfaces in one file
type (
	// PatientRepository handles patient record operations
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	// ConsultationRepository is the consultation store; ListByPatient is
	// the lookup the decision engine depends on.
	ConsultationRepository interface {
		Create(ctx context.Context, consultation *model.Consultation) error
		Get(ctx context.Context, id uuid.UUID) (*model.Consultation, error)
		Update(ctx context.Context, consultation *model.Consultation) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*model.Consultation, error)
	}

	// ChatRepository is the append-only chat store.
	ChatRepository interface {
		AppendTurn(ctx context.Context, turn *model.ChatTurn) error
		ListTurns(ctx context.Context, sessionID string) ([]*model.ChatTurn, error)
	}

	// ImageRepository archives skin analyses; archived records are not
	// read back by the decision engine.
	ImageRepository interface {
		SaveAnalysis(ctx context.Context, record *model.SkinAnalysisRecord) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
