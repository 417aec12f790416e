package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Medication is a single prescribed item on a consultation.
type Medication struct {
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions,omitempty"`
}

type Consultation struct {
	Base
	PatientID        uuid.UUID       `db:"patient_id" json:"patient_id"`
	DoctorID         uuid.UUID       `db:"doctor_id" json:"doctor_id"`
	Symptoms         string          `db:"symptoms" json:"symptoms"`
	Diagnosis        string          `db:"diagnosis" json:"diagnosis"`
	ICDCode          string          `db:"icd_code" json:"icd_code,omitempty"`
	MedicationsJSON  json.RawMessage `db:"medications" json:"-"`
	Medications      []Medication    `json:"medications"`
	Notes            string          `db:"notes" json:"notes,omitempty"`
	FollowUpRequired bool            `db:"follow_up_required" json:"follow_up_required"`
	FollowUpDate     *time.Time      `db:"follow_up_date" json:"follow_up_date,omitempty"`
}

// MedicationList returns the decoded medications, falling back to the
// raw JSON column when the struct field has not been populated.
func (c *Consultation) MedicationList() []Medication {
	if len(c.Medications) > 0 || len(c.MedicationsJSON) == 0 {
		return c.Medications
	}
	var meds []Medication
	if err := json.Unmarshal(c.MedicationsJSON, &meds); err != nil {
		return nil
	}
	return meds
}

type CreateConsultationRequest struct {
	PatientID        string       `json:"patient_id" binding:"required,uuid"`
	DoctorID         string       `json:"doctor_id" binding:"required,uuid"`
	Symptoms         string       `json:"symptoms" binding:"required"`
	Diagnosis        string       `json:"diagnosis" binding:"required"`
	ICDCode          string       `json:"icd_code" binding:"omitempty,icd10"`
	Medications      []Medication `json:"medications"`
	Notes            string       `json:"notes"`
	FollowUpRequired bool         `json:"follow_up_required"`
	FollowUpDate     *time.Time   `json:"follow_up_date"`
}

type UpdateConsultationRequest struct {
	Symptoms         *string      `json:"symptoms"`
	Diagnosis        *string      `json:"diagnosis"`
	ICDCode          *string      `json:"icd_code"`
	Medications      []Medication `json:"medications"`
	Notes            *string      `json:"notes"`
	FollowUpRequired *bool        `json:"follow_up_required"`
	FollowUpDate     *time.Time   `json:"follow_up_date"`
}
