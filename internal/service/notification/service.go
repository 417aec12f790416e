package notification

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/clinicore/decision-api/internal/model"
)

// Config holds SMTP settings for stewardship alerts.
type Config struct {
	Enabled    bool     `mapstructure:"enabled"`
	Host       string   `mapstructure:"host"`
	Port       int      `mapstructure:"port"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	From       string   `mapstructure:"from"`
	Recipients []string `mapstructure:"recipients"`
}

// Sender abstracts gomail's dialer for tests.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Service struct {
	cfg    Config
	sender Sender
}

func NewService(cfg Config) *Service {
	return &Service{
		cfg:    cfg,
		sender: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// NewServiceWithSender is used by tests to inject a fake dialer.
func NewServiceWithSender(cfg Config, sender Sender) *Service {
	return &Service{cfg: cfg, sender: sender}
}

// StewardshipAlert emails the stewardship team when a patient assesses
// as high AMR risk.
func (s *Service) StewardshipAlert(ctx context.Context, assessment *model.AMRAssessment) error {
	if !s.cfg.Enabled || len(s.cfg.Recipients) == 0 {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.Recipients...)
	m.SetHeader("Subject", fmt.Sprintf("AMR high-risk alert: patient %s", assessment.PatientID))
	m.SetBody("text/plain", s.alertBody(assessment))

	if err := s.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send stewardship alert: %w", err)
	}
	return nil
}

func (s *Service) alertBody(assessment *model.AMRAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patient %s assessed at AMR risk score %d (%s).\n\n",
		assessment.PatientID, assessment.RiskScore, assessment.RiskLevel)
	fmt.Fprintf(&b, "Antibiotic courses on record: %d\n", len(assessment.AntibioticCourses))
	for _, course := range assessment.AntibioticCourses {
		fmt.Fprintf(&b, "  - %s on %s (%s)\n",
			course.Antibiotic, course.Date.Format("2006-01-02"), course.Duration)
	}
	b.WriteString("\nRecommendations:\n")
	for _, rec := range assessment.Recommendations {
		fmt.Fprintf(&b, "  - %s\n", rec)
	}
	return b.String()
}
