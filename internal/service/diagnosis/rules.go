package diagnosis

import (
	"strings"

	"github.com/clinicore/decision-api/internal/model"
)

// matchConfidence is returned for every diagnosis regardless of which
// rule matched. Keeping it a constant avoids implying precision the rule
// table does not have.
const matchConfidence = 0.85

// ruleTable is evaluated in declaration order; the first rule whose full
// keyword set is contained in the symptom text wins. It is never mutated
// after process start.
var ruleTable = []model.SymptomRule{
	{
		Name:     "Upper Respiratory Infection",
		Keywords: []string{"fever", "cough"},
		Conditions: []model.ConditionSuggestion{
			{Condition: "Upper Respiratory Infection", ICDCode: "J06.9", Probability: 0.85},
			{Condition: "Bacterial Pneumonia", ICDCode: "J15.9", Probability: 0.10},
			{Condition: "Influenza", ICDCode: "J11.1", Probability: 0.05},
		},
		Medications: []model.Medication{
			{Name: "Amoxicillin", Dosage: "500mg", Frequency: "3 times daily", Duration: "7 days"},
			{Name: "Paracetamol", Dosage: "500mg", Frequency: "as needed", Duration: "for fever"},
		},
	},
	{
		Name:     "Tension Headache",
		Keywords: []string{"headache"},
		Conditions: []model.ConditionSuggestion{
			{Condition: "Tension Headache", ICDCode: "G44.2", Probability: 0.70},
			{Condition: "Migraine", ICDCode: "G43.9", Probability: 0.20},
			{Condition: "Sinus Headache", ICDCode: "G44.82", Probability: 0.10},
		},
		Medications: []model.Medication{
			{Name: "Ibuprofen", Dosage: "400mg", Frequency: "every 6 hours", Duration: "as needed"},
			{Name: "Paracetamol", Dosage: "1000mg", Frequency: "every 6 hours", Duration: "as needed"},
		},
	},
	{
		Name:     "Gastritis",
		Keywords: []string{"stomach"},
		Conditions: []model.ConditionSuggestion{
			{Condition: "Gastritis", ICDCode: "K29.7", Probability: 0.60},
			{Condition: "Peptic Ulcer", ICDCode: "K27.9", Probability: 0.25},
			{Condition: "Gastroenteritis", ICDCode: "K52.9", Probability: 0.15},
		},
		Medications: []model.Medication{
			{Name: "Omeprazole", Dosage: "20mg", Frequency: "once daily", Duration: "14 days"},
			{Name: "Antacid", Dosage: "10ml", Frequency: "as needed", Duration: "for symptoms"},
		},
	},
	{
		// Same bundle as the stomach rule; a separate entry keeps the
		// all-keywords-must-match semantic of the table.
		Name:     "Gastritis",
		Keywords: []string{"abdominal"},
		Conditions: []model.ConditionSuggestion{
			{Condition: "Gastritis", ICDCode: "K29.7", Probability: 0.60},
			{Condition: "Peptic Ulcer", ICDCode: "K27.9", Probability: 0.25},
			{Condition: "Gastroenteritis", ICDCode: "K52.9", Probability: 0.15},
		},
		Medications: []model.Medication{
			{Name: "Omeprazole", Dosage: "20mg", Frequency: "once daily", Duration: "14 days"},
			{Name: "Antacid", Dosage: "10ml", Frequency: "as needed", Duration: "for symptoms"},
		},
	},
}

// fallbackRule is returned when nothing in the table matches.
var fallbackRule = model.SymptomRule{
	Name:     "General Symptoms",
	Keywords: nil,
	Conditions: []model.ConditionSuggestion{
		{Condition: "General Symptoms", ICDCode: "R68.89", Probability: 0.50},
	},
	Medications: []model.Medication{
		{Name: "Symptomatic Treatment", Dosage: "as appropriate", Frequency: "as needed", Duration: "as needed"},
	},
}

// matchRule returns the first rule whose keywords are all contained in
// the lowercased symptom text. Containment is substring based, not
// token based.
func matchRule(symptoms string) *model.SymptomRule {
	text := strings.ToLower(symptoms)
	for i := range ruleTable {
		if containsAll(text, ruleTable[i].Keywords) {
			return &ruleTable[i]
		}
	}
	return &fallbackRule
}

func containsAll(text string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(text, kw) {
			return false
		}
	}
	return true
}
