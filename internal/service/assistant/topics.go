package assistant

import (
	"fmt"
	"strings"
)

// replyConfidence is fixed for every branch, matched or fallback.
const replyConfidence = 0.90

// fallbackTopic labels replies that matched no topic.
const fallbackTopic = "general"

type topic struct {
	Name     string
	Keywords []string
	Reply    string
}

// topicTable is tested in declaration order; a topic matches when any of
// its keywords appears in the lowercased message.
var topicTable = []topic{
	{
		Name:     "drug_interactions",
		Keywords: []string{"drug interaction", "medication"},
		Reply: `I can help you check for drug interactions. Please provide the specific medications you'd like me to analyze. I'll check for:

• Contraindications
• Dosage conflicts
• Side effect interactions
• Alternative medications

Please list the medications separated by commas.`,
	},
	{
		Name:     "diabetes",
		Keywords: []string{"diabetes"},
		Reply: `For diabetes management, current guidelines recommend:

• **HbA1c target**: <7% for most adults
• **Blood pressure**: <140/90 mmHg
• **Lifestyle modifications**: Diet and exercise
• **Medication**: Metformin as first-line therapy

Would you like more specific information about any of these areas?`,
	},
	{
		Name:     "hypertension",
		Keywords: []string{"hypertension"},
		Reply: `For hypertension management:

• **Target BP**: <140/90 mmHg for most adults
• **Lifestyle**: Low sodium diet, regular exercise
• **First-line medications**: ACE inhibitors, ARBs, thiazide diuretics
• **Monitoring**: Regular BP checks and medication adjustments

Need specific medication recommendations?`,
	},
	{
		Name:     "fever",
		Keywords: []string{"fever", "temperature"},
		Reply: `For fever management:

• **Adults**: Paracetamol 500-1000mg every 4-6 hours (max 4g/day)
• **Children**: Paracetamol 10-15mg/kg every 4-6 hours
• **Alternative**: Ibuprofen 400mg every 6-8 hours
• **Non-medication**: Cool baths, adequate hydration

Monitor for warning signs: difficulty breathing, severe headache, persistent vomiting.`,
	},
}

// Reply matches the message against the topic table and returns the
// topic name and the canned reply. The fallback echoes the original,
// non-lowercased message. Pure function; it never touches the chat
// store.
func Reply(message string) (string, string) {
	lower := strings.ToLower(message)
	for i := range topicTable {
		if containsAny(lower, topicTable[i].Keywords) {
			return topicTable[i].Name, topicTable[i].Reply
		}
	}

	reply := fmt.Sprintf(`I'm here to help with medical questions. Based on your message, I can provide guidance on:

• Diagnostic considerations
• Treatment protocols
• Drug interactions
• Patient care guidelines

For "%s", would you like me to provide more specific information about any particular aspect?`, message)
	return fallbackTopic, reply
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
