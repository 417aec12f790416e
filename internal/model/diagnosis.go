package model

// ConditionSuggestion is one ranked condition candidate.
type ConditionSuggestion struct {
	Condition   string  `json:"condition"`
	ICDCode     string  `json:"icd_code"`
	Probability float64 `json:"probability"`
}

// SymptomRule maps a keyword set to a condition/medication bundle. Rules
// are evaluated in declaration order; all keywords of a rule must be
// present in the symptom text for the rule to match.
type SymptomRule struct {
	Name        string
	Keywords    []string
	Conditions  []ConditionSuggestion
	Medications []Medication
}

type DiagnosisRequest struct {
	Symptoms       string   `json:"symptoms" binding:"required"`
	PatientID      string   `json:"patient_id" binding:"required,uuid"`
	MedicalHistory []string `json:"medical_history"`
}

type DiagnosisResult struct {
	Suggestions []ConditionSuggestion `json:"suggestions"`
	Medications []Medication          `json:"medications"`
	Confidence  float64               `json:"confidence"`
	Warnings    []string              `json:"warnings"`
}
