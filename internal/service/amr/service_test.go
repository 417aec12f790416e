package amr

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/decision-api/internal/model"
	apperrors "github.com/clinicore/decision-api/pkg/errors"
	"github.com/clinicore/decision-api/pkg/logger"
)

type fakeConsultationRepo struct {
	consultations []*model.Consultation
	err           error
	gotLimit      int
}

func (f *fakeConsultationRepo) Create(ctx context.Context, c *model.Consultation) error { return nil }
func (f *fakeConsultationRepo) Get(ctx context.Context, id uuid.UUID) (*model.Consultation, error) {
	return nil, nil
}
func (f *fakeConsultationRepo) Update(ctx context.Context, c *model.Consultation) error { return nil }
func (f *fakeConsultationRepo) Delete(ctx context.Context, id uuid.UUID) error          { return nil }
func (f *fakeConsultationRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*model.Consultation, error) {
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.consultations, nil
}

type fakeNotifier struct {
	alerts []*model.AMRAssessment
	err    error
}

func (f *fakeNotifier) StewardshipAlert(ctx context.Context, a *model.AMRAssessment) error {
	f.alerts = append(f.alerts, a)
	return f.err
}

func testLogger() *logger.Logger {
	return logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
}

func consultationsWithAntibiotics(names ...string) []*model.Consultation {
	out := make([]*model.Consultation, 0, len(names))
	for _, name := range names {
		out = append(out, &model.Consultation{
			Medications: []model.Medication{{Name: name, Duration: "7 days"}},
		})
	}
	return out
}

func TestScoreThreeCourses(t *testing.T) {
	patientID := uuid.New().String()
	assessment := Score(patientID, consultationsWithAntibiotics("Amoxicillin", "Ceftriaxone", "Doxycycline"))

	assert.Equal(t, patientID, assessment.PatientID)
	assert.Equal(t, 45, assessment.RiskScore)
	assert.Equal(t, model.RiskLevelMedium, assessment.RiskLevel)
	require.Len(t, assessment.AntibioticCourses, 3)
	require.Len(t, assessment.Recommendations, 4)
	assert.Equal(t, "Consider culture and sensitivity testing before prescribing antibiotics", assessment.Recommendations[0])
	assert.Equal(t, "Monitor for resistance patterns", assessment.Recommendations[3])
}

func TestScoreCapsAtHundred(t *testing.T) {
	assessment := Score(uuid.New().String(), consultationsWithAntibiotics(
		"Amoxicillin", "Amoxicillin", "Ciprofloxacin", "Azithromycin",
		"Ceftriaxone", "Doxycycline", "Amoxicillin", "Ciprofloxacin",
	))

	assert.Equal(t, 100, assessment.RiskScore)
	assert.Equal(t, model.RiskLevelHigh, assessment.RiskLevel)
	assert.Len(t, assessment.AntibioticCourses, 8)
}

func TestScoreNoHistory(t *testing.T) {
	assessment := Score(uuid.New().String(), nil)

	assert.Equal(t, 0, assessment.RiskScore)
	assert.Equal(t, model.RiskLevelLow, assessment.RiskLevel)
	assert.Empty(t, assessment.AntibioticCourses)
	assert.NotNil(t, assessment.AntibioticCourses)
	require.Len(t, assessment.Recommendations, 1)
	assert.Equal(t, "Continue standard antibiotic stewardship practices", assessment.Recommendations[0])
}

func TestScoreThresholds(t *testing.T) {
	two := Score("p", consultationsWithAntibiotics("Amoxicillin", "Ceftriaxone"))
	assert.Equal(t, 30, two.RiskScore)
	assert.Equal(t, model.RiskLevelMedium, two.RiskLevel)

	four := Score("p", consultationsWithAntibiotics("Amoxicillin", "Ceftriaxone", "Doxycycline", "Azithromycin"))
	assert.Equal(t, 60, four.RiskScore)
	assert.Equal(t, model.RiskLevelHigh, four.RiskLevel)
}

func TestScoreIgnoresNonSurveilledMedications(t *testing.T) {
	assessment := Score("p", []*model.Consultation{
		{Medications: []model.Medication{
			{Name: "Paracetamol"},
			{Name: "Omeprazole"},
			{Name: "Amoxicillin", Duration: "5 days"},
		}},
	})

	assert.Equal(t, 15, assessment.RiskScore)
	require.Len(t, assessment.AntibioticCourses, 1)
	assert.Equal(t, "Amoxicillin", assessment.AntibioticCourses[0].Antibiotic)
}

func TestScoreCourseDetails(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	consultation := &model.Consultation{
		Medications: []model.Medication{{Name: "Ciprofloxacin"}},
	}
	consultation.CreatedAt = created

	assessment := Score("p", []*model.Consultation{consultation})

	require.Len(t, assessment.AntibioticCourses, 1)
	course := assessment.AntibioticCourses[0]
	assert.Equal(t, "Ciprofloxacin", course.Antibiotic)
	assert.Equal(t, created, course.Date)
	assert.Equal(t, "unknown", course.Duration)
}

func TestScoreIdempotent(t *testing.T) {
	consultations := consultationsWithAntibiotics("Amoxicillin", "Doxycycline")

	first := Score("p", consultations)
	second := Score("p", consultations)

	assert.Equal(t, first, second)
}

func TestAssessFetchesFiftyConsultations(t *testing.T) {
	repo := &fakeConsultationRepo{}
	svc := NewService(repo, nil, testLogger())

	_, err := svc.Assess(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 50, repo.gotLimit)
}

func TestAssessStoreFailure(t *testing.T) {
	repo := &fakeConsultationRepo{err: errors.New("connection refused")}
	svc := NewService(repo, nil, testLogger())

	_, err := svc.Assess(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.ErrUnavailable))
}

func TestAssessHighRiskTriggersAlert(t *testing.T) {
	repo := &fakeConsultationRepo{
		consultations: consultationsWithAntibiotics("Amoxicillin", "Ceftriaxone", "Doxycycline", "Azithromycin"),
	}
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, testLogger())

	assessment, err := svc.Assess(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.RiskLevelHigh, assessment.RiskLevel)
	require.Len(t, notifier.alerts, 1)
	assert.Equal(t, assessment, notifier.alerts[0])
}

func TestAssessMediumRiskNoAlert(t *testing.T) {
	repo := &fakeConsultationRepo{
		consultations: consultationsWithAntibiotics("Amoxicillin", "Ceftriaxone"),
	}
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, testLogger())

	assessment, err := svc.Assess(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.RiskLevelMedium, assessment.RiskLevel)
	assert.Empty(t, notifier.alerts)
}

func TestAssessAlertFailureDoesNotFailAssessment(t *testing.T) {
	repo := &fakeConsultationRepo{
		consultations: consultationsWithAntibiotics("Amoxicillin", "Ceftriaxone", "Doxycycline", "Azithromycin"),
	}
	notifier := &fakeNotifier{err: errors.New("smtp timeout")}
	svc := NewService(repo, notifier, testLogger())

	assessment, err := svc.Assess(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.RiskLevelHigh, assessment.RiskLevel)
}
