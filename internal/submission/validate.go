package submission

import (
	"strings"

	"leadpipe/internal/common/validation"
)

// leadSchema rejects the whole request when any required field is
// missing or the advisory score falls outside the rubric range.
const leadSchema = `{
	"type": "object",
	"required": ["name", "email", "phone", "businessType", "monthlyRevenue", "workHoursDaily", "mainStruggle", "sourceSection"],
	"properties": {
		"leadId": {"type": "string"},
		"name": {"type": "string", "minLength": 1},
		"email": {"type": "string", "minLength": 3},
		"phone": {"type": "string", "minLength": 1},
		"businessType": {"type": "string", "minLength": 1},
		"gender": {"type": "string"},
		"age": {"type": "integer", "minimum": 0},
		"monthlyRevenue": {"type": "string", "minLength": 1},
		"workHoursDaily": {"type": "integer", "minimum": 0},
		"mainStruggle": {"type": "string", "minLength": 1},
		"delegationStruggle": {"type": "string"},
		"feminineEnergyImportance": {"type": "string"},
		"leadershipInterest": {"type": "string"},
		"transformationReadiness": {"type": "integer", "minimum": 0},
		"amandaScore": {"type": "integer", "minimum": 0, "maximum": 100},
		"sourceSection": {"type": "string", "minLength": 1},
		"ctaId": {"type": "string"},
		"trafficSource": {"type": "string"}
	}
}`

const questionnaireSchema = `{
	"type": "object",
	"required": ["leadId", "email", "teamSize", "currentChallenges", "timeCommitment"],
	"properties": {
		"leadId": {"type": "string", "minLength": 1},
		"email": {"type": "string", "minLength": 3},
		"timeCommitment": {"type": "integer", "minimum": 1},
		"investmentCapacity": {"type": "string"},
		"urgencyLevel": {"type": "string"},
		"supportSystem": {"type": "string"},
		"previousMentoring": {"type": "string"},
		"teamSize": {"type": "integer", "minimum": 0},
		"currentChallenges": {"type": "array", "items": {"type": "string"}, "minItems": 1},
		"expectedOutcomes": {"type": "array", "items": {"type": "string"}},
		"amanda_match_score": {"type": "integer", "minimum": 0, "maximum": 100}
	}
}`

// validateLead runs schema validation plus the email format check.
// Returns a joined detail string for the error body, empty when valid.
func validateLead(doc map[string]interface{}) string {
	result := validation.ValidateAgainstSchema(doc, leadSchema)
	if !result.Valid {
		return strings.Join(result.ErrorStrings(), "; ")
	}
	if email, _ := doc["email"].(string); !validation.IsValidEmail(email) {
		return "email: invalid format"
	}
	return ""
}

func validateQuestionnaire(doc map[string]interface{}) string {
	result := validation.ValidateAgainstSchema(doc, questionnaireSchema)
	if !result.Valid {
		return strings.Join(result.ErrorStrings(), "; ")
	}
	if email, _ := doc["email"].(string); !validation.IsValidEmail(email) {
		return "email: invalid format"
	}
	return ""
}
