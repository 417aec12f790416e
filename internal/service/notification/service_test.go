package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/clinicore/decision-api/internal/model"
)

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func highRiskAssessment() *model.AMRAssessment {
	return &model.AMRAssessment{
		PatientID: "3f2f4e1a-1111-2222-3333-444455556666",
		RiskScore: 60,
		RiskLevel: model.RiskLevelHigh,
		AntibioticCourses: []model.AntibioticCourse{
			{Antibiotic: "Amoxicillin", Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Duration: "7 days"},
		},
		Recommendations: []string{"Use narrow-spectrum antibiotics when possible"},
	}
}

func TestStewardshipAlertSendsEmail(t *testing.T) {
	sender := &fakeSender{}
	svc := NewServiceWithSender(Config{
		Enabled:    true,
		From:       "alerts@clinicore.example.com",
		Recipients: []string{"stewardship@clinicore.example.com"},
	}, sender)

	require.NoError(t, svc.StewardshipAlert(context.Background(), highRiskAssessment()))
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].GetHeader("Subject")[0], "AMR high-risk alert")
}

func TestStewardshipAlertDisabled(t *testing.T) {
	sender := &fakeSender{}
	svc := NewServiceWithSender(Config{Enabled: false, Recipients: []string{"x@example.com"}}, sender)

	require.NoError(t, svc.StewardshipAlert(context.Background(), highRiskAssessment()))
	assert.Empty(t, sender.sent)
}

func TestStewardshipAlertNoRecipients(t *testing.T) {
	sender := &fakeSender{}
	svc := NewServiceWithSender(Config{Enabled: true}, sender)

	require.NoError(t, svc.StewardshipAlert(context.Background(), highRiskAssessment()))
	assert.Empty(t, sender.sent)
}

func TestStewardshipAlertSendFailure(t *testing.T) {
	sender := &fakeSender{err: errors.New("dial tcp: timeout")}
	svc := NewServiceWithSender(Config{
		Enabled:    true,
		Recipients: []string{"stewardship@clinicore.example.com"},
	}, sender)

	err := svc.StewardshipAlert(context.Background(), highRiskAssessment())
	require.Error(t, err)
}

func TestAlertBodyContents(t *testing.T) {
	svc := NewServiceWithSender(Config{}, &fakeSender{})
	body := svc.alertBody(highRiskAssessment())

	assert.Contains(t, body, "risk score 60 (High)")
	assert.Contains(t, body, "Amoxicillin on 2026-02-01 (7 days)")
	assert.Contains(t, body, "Use narrow-spectrum antibiotics when possible")
}
