package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicore/decision-api/internal/model"
	"github.com/clinicore/decision-api/internal/repository"
)

type imageRepository struct {
	db *sqlx.DB
}

func NewImageRepository(db *sqlx.DB) repository.ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) SaveAnalysis(ctx context.Context, record *model.SkinAnalysisRecord) error {
	query := `
		INSERT INTO skin_analyses (id, user_id, image_base64, findings, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	record.ID = uuid.New()
	record.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.ImageBase64,
		record.FindingsJSON,
		record.Confidence,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save skin analysis: %w", err)
	}
	return nil
}
