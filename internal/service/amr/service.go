package amr

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinicore/decision-api/internal/model"
	"github.com/clinicore/decision-api/internal/repository"
	apperrors "github.com/clinicore/decision-api/pkg/errors"
	"github.com/clinicore/decision-api/pkg/logger"
)

const (
	// historyLimit caps how many consultations feed one assessment.
	historyLimit = 50

	pointsPerCourse = 15
	maxScore        = 100
	highThreshold   = 50
	mediumThreshold = 30

	unknownDuration = "unknown"
)

// surveillanceAntibiotics is the set counted by the risk scorer. It is a
// superset of the set checked on the diagnosis path; the asymmetry is
// kept as-is pending product review.
var surveillanceAntibiotics = map[string]struct{}{
	"Amoxicillin":   {},
	"Ciprofloxacin": {},
	"Azithromycin":  {},
	"Ceftriaxone":   {},
	"Doxycycline":   {},
}

var stewardshipRecommendations = []string{
	"Consider culture and sensitivity testing before prescribing antibiotics",
	"Use narrow-spectrum antibiotics when possible",
	"Ensure appropriate duration of treatment",
	"Monitor for resistance patterns",
}

var standardPracticeRecommendation = []string{
	"Continue standard antibiotic stewardship practices",
}

// Notifier delivers stewardship alerts for high-risk assessments.
// Delivery failures never fail the assessment.
type Notifier interface {
	StewardshipAlert(ctx context.Context, assessment *model.AMRAssessment) error
}

type Service struct {
	consultations repository.ConsultationRepository
	notifier      Notifier
	logger        *logger.Logger
}

func NewService(consultations repository.ConsultationRepository, notifier Notifier, logger *logger.Logger) *Service {
	return &Service{
		consultations: consultations,
		notifier:      notifier,
		logger:        logger,
	}
}

// Assess fetches the patient's recent consultations and scores them.
func (s *Service) Assess(ctx context.Context, patientID uuid.UUID) (*model.AMRAssessment, error) {
	consultations, err := s.consultations.ListByPatient(ctx, patientID, historyLimit)
	if err != nil {
		return nil, apperrors.Unavailable("consultation store", fmt.Errorf("failed to fetch patient history: %w", err))
	}

	assessment := Score(patientID.String(), consultations)

	if assessment.RiskLevel == model.RiskLevelHigh && s.notifier != nil {
		if err := s.notifier.StewardshipAlert(ctx, assessment); err != nil {
			s.logger.Error(err, "failed to send stewardship alert", "patient_id", patientID.String())
		}
	}

	return assessment, nil
}

// Score is a pure function of the supplied consultations: every
// surveillance antibiotic across them becomes one course, and the score
// is a capped linear function of the course count. Consultation order
// does not affect the result.
func Score(patientID string, consultations []*model.Consultation) *model.AMRAssessment {
	courses := []model.AntibioticCourse{}
	for _, consultation := range consultations {
		for _, med := range consultation.MedicationList() {
			if _, ok := surveillanceAntibiotics[med.Name]; !ok {
				continue
			}
			duration := med.Duration
			if duration == "" {
				duration = unknownDuration
			}
			courses = append(courses, model.AntibioticCourse{
				Antibiotic: med.Name,
				Date:       consultation.CreatedAt,
				Duration:   duration,
			})
		}
	}

	score := len(courses) * pointsPerCourse
	if score > maxScore {
		score = maxScore
	}

	level := model.RiskLevelLow
	switch {
	case score >= highThreshold:
		level = model.RiskLevelHigh
	case score >= mediumThreshold:
		level = model.RiskLevelMedium
	}

	recommendations := standardPracticeRecommendation
	if score >= mediumThreshold {
		recommendations = stewardshipRecommendations
	}

	return &model.AMRAssessment{
		PatientID:         patientID,
		RiskScore:         score,
		RiskLevel:         level,
		AntibioticCourses: courses,
		Recommendations:   append([]string(nil), recommendations...),
	}
}
