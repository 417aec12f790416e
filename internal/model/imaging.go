package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// FindingSeverity grades an image finding.
type FindingSeverity string

const (
	SeverityNone     FindingSeverity = "none"
	SeverityMild     FindingSeverity = "mild"
	SeverityModerate FindingSeverity = "moderate"
	SeveritySevere   FindingSeverity = "severe"
)

type ImageFinding struct {
	Condition   string          `json:"condition"`
	Probability float64         `json:"probability"`
	Severity    FindingSeverity `json:"severity"`
}

type SkinAnalysis struct {
	Findings       []ImageFinding `json:"findings"`
	Confidence     float64        `json:"confidence"`
	Recommendation string         `json:"recommendation"`
}

// SkinAnalysisRecord is the archived form of an analysis, stored through
// the image store and never read back by the decision core.
type SkinAnalysisRecord struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	UserID       uuid.UUID       `db:"user_id" json:"user_id"`
	ImageBase64  string          `db:"image_base64" json:"-"`
	FindingsJSON json.RawMessage `db:"findings" json:"findings"`
	Confidence   float64         `db:"confidence" json:"confidence"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
