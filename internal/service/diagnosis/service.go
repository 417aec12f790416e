package diagnosis

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/clinicore/decision-api/internal/model"
	"github.com/clinicore/decision-api/internal/repository"
	apperrors "github.com/clinicore/decision-api/pkg/errors"
)

const (
	// historyLimit bounds how many recent consultations are inspected
	// when an antibiotic is about to be suggested.
	historyLimit = 10

	// repeatCourseThreshold is the number of historical antibiotic
	// courses that triggers the stewardship warning.
	repeatCourseThreshold = 3

	stewardshipWarning = "Patient has received multiple antibiotic courses recently. Consider culture test."
)

// antibioticNames is the set checked on the diagnosis path. The AMR
// scorer surveils a wider set; the two are intentionally kept separate
// pending product review.
var antibioticNames = map[string]struct{}{
	"Amoxicillin":   {},
	"Ciprofloxacin": {},
	"Azithromycin":  {},
}

type Service struct {
	consultations repository.ConsultationRepository
}

func NewService(consultations repository.ConsultationRepository) *Service {
	return &Service{consultations: consultations}
}

// Diagnose matches the symptom text against the rule table and, when an
// antibiotic is among the suggested medications, checks the patient's
// recent consultations for repeated antibiotic courses.
func (s *Service) Diagnose(ctx context.Context, req *model.DiagnosisRequest) (*model.DiagnosisResult, error) {
	if strings.TrimSpace(req.Symptoms) == "" {
		return nil, apperrors.InvalidInput("symptoms text is required")
	}

	rule := matchRule(req.Symptoms)

	result := &model.DiagnosisResult{
		Suggestions: append([]model.ConditionSuggestion(nil), rule.Conditions...),
		Medications: append([]model.Medication(nil), rule.Medications...),
		Confidence:  matchConfidence,
		Warnings:    []string{},
	}

	if !suggestsAntibiotic(result.Medications) {
		return result, nil
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid patient ID")
	}

	courses, err := s.countAntibioticCourses(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if courses >= repeatCourseThreshold {
		result.Warnings = append(result.Warnings, stewardshipWarning)
	}

	return result, nil
}

// MatchedRule exposes the rule name for a symptom text; used for metric
// labels.
func MatchedRule(symptoms string) string {
	return matchRule(symptoms).Name
}

func (s *Service) countAntibioticCourses(ctx context.Context, patientID uuid.UUID) (int, error) {
	consultations, err := s.consultations.ListByPatient(ctx, patientID, historyLimit)
	if err != nil {
		return 0, apperrors.Unavailable("consultation store", fmt.Errorf("failed to fetch patient history: %w", err))
	}

	count := 0
	for _, consultation := range consultations {
		for _, med := range consultation.MedicationList() {
			if _, ok := antibioticNames[med.Name]; ok {
				count++
			}
		}
	}
	return count, nil
}

func suggestsAntibiotic(medications []model.Medication) bool {
	for _, med := range medications {
		if _, ok := antibioticNames[med.Name]; ok {
			return true
		}
	}
	return false
}
