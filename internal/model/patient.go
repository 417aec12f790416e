package model

import (
	"encoding/json"
	"time"
)

type Patient struct {
	Base
	FirstName          string          `db:"first_name" json:"first_name"`
	LastName           string          `db:"last_name" json:"last_name"`
	Email              string          `db:"email" json:"email"`
	Phone              string          `db:"phone" json:"phone"`
	DateOfBirth        time.Time       `db:"date_of_birth" json:"date_of_birth"`
	Gender             string          `db:"gender" json:"gender"`
	BloodGroup         string          `db:"blood_group" json:"blood_group,omitempty"`
	AllergiesJSON      json.RawMessage `db:"allergies" json:"-"`
	MedicalHistoryJSON json.RawMessage `db:"medical_history" json:"-"`
	Allergies          []string        `json:"allergies"`
	MedicalHistory     []string        `json:"medical_history"`
}

type CreatePatientRequest struct {
	FirstName      string    `json:"first_name" binding:"required"`
	LastName       string    `json:"last_name" binding:"required"`
	Email          string    `json:"email" binding:"required,email"`
	Phone          string    `json:"phone"`
	DateOfBirth    time.Time `json:"date_of_birth" binding:"required"`
	Gender         string    `json:"gender" binding:"omitempty,oneof=male female other"`
	BloodGroup     string    `json:"blood_group"`
	Allergies      []string  `json:"allergies"`
	MedicalHistory []string  `json:"medical_history"`
}

type UpdatePatientRequest struct {
	FirstName      *string    `json:"first_name"`
	LastName       *string    `json:"last_name"`
	Email          *string    `json:"email" binding:"omitempty,email"`
	Phone          *string    `json:"phone"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Gender         *string    `json:"gender" binding:"omitempty,oneof=male female other"`
	BloodGroup     *string    `json:"blood_group"`
	Allergies      []string   `json:"allergies"`
	MedicalHistory []string   `json:"medical_history"`
}
