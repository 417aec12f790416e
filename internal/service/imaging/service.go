package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"

	"github.com/clinicore/decision-api/internal/model"
	"github.com/clinicore/decision-api/internal/repository"
	apperrors "github.com/clinicore/decision-api/pkg/errors"
)

// analysisConfidence mirrors the probability of the leading finding.
const analysisConfidence = 0.85

// fixedFindings is the stub finding set returned for every decodable
// image until a real classifier is plugged in behind the same contract.
var fixedFindings = []model.ImageFinding{
	{Condition: "Eczema", Probability: 0.85, Severity: model.SeverityMild},
	{Condition: "Dermatitis", Probability: 0.12, Severity: model.SeverityMild},
	{Condition: "Normal skin", Probability: 0.03, Severity: model.SeverityNone},
}

const fixedRecommendation = `Based on the analysis, this appears to be eczema with mild severity.

**Recommendations:**
• Apply moisturizer regularly
• Use mild, fragrance-free soap
• Avoid known triggers
• Consider topical corticosteroid if symptoms persist

**When to see a doctor:**
• Symptoms worsen or don't improve in 1-2 weeks
• Signs of infection (pus, increased redness, warmth)
• Severe itching affecting sleep`

type Service struct {
	images repository.ImageRepository
}

func NewService(images repository.ImageRepository) *Service {
	return &Service{images: images}
}

// Analyze validates that the bytes decode as a supported raster format,
// returns the stub finding set, and archives the analysis through the
// image store.
func (s *Service) Analyze(ctx context.Context, userID uuid.UUID, imageBytes []byte) (*model.SkinAnalysis, error) {
	if _, _, err := image.Decode(bytes.NewReader(imageBytes)); err != nil {
		return nil, apperrors.InvalidImage(err)
	}

	analysis := &model.SkinAnalysis{
		Findings:       append([]model.ImageFinding(nil), fixedFindings...),
		Confidence:     analysisConfidence,
		Recommendation: fixedRecommendation,
	}

	findingsJSON, err := json.Marshal(analysis.Findings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal findings: %w", err)
	}

	record := &model.SkinAnalysisRecord{
		UserID:       userID,
		ImageBase64:  base64.StdEncoding.EncodeToString(imageBytes),
		FindingsJSON: findingsJSON,
		Confidence:   analysis.Confidence,
	}
	if err := s.images.SaveAnalysis(ctx, record); err != nil {
		return nil, apperrors.Unavailable("image store", fmt.Errorf("failed to archive analysis: %w", err))
	}

	return analysis, nil
}
