package model

import "time"

// RiskLevel is the AMR risk tier for a patient.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "Low"
	RiskLevelMedium RiskLevel = "Medium"
	RiskLevelHigh   RiskLevel = "High"
)

// AntibioticCourse is one historical antibiotic prescription counted
// toward the risk score.
type AntibioticCourse struct {
	Antibiotic string    `json:"antibiotic"`
	Date       time.Time `json:"date"`
	Duration   string    `json:"duration"`
}

// AMRAssessment is recomputed on every request from the medication
// records visible at query time; it is never cached or stored.
type AMRAssessment struct {
	PatientID         string             `json:"patient_id"`
	RiskScore         int                `json:"risk_score"`
	RiskLevel         RiskLevel          `json:"risk_level"`
	AntibioticCourses []AntibioticCourse `json:"antibiotic_courses"`
	Recommendations   []string           `json:"recommendations"`
}
