package submission

import "leadpipe/internal/models"

// LeadRequest is the inbound lead-submit payload. The client may send
// an advisory Amanda score and a pre-minted lead id; both are optional.
type LeadRequest struct {
	LeadID string `json:"leadId,omitempty"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`

	BusinessType             string `json:"businessType"`
	Gender                   string `json:"gender,omitempty"`
	Age                      int    `json:"age,omitempty"`
	MonthlyRevenue           string `json:"monthlyRevenue"`
	WorkHoursDaily           int    `json:"workHoursDaily"`
	MainStruggle             string `json:"mainStruggle"`
	DelegationStruggle       string `json:"delegationStruggle,omitempty"`
	FeminineEnergyImportance string `json:"feminineEnergyImportance,omitempty"`
	LeadershipInterest       string `json:"leadershipInterest,omitempty"`
	TransformationReadiness  int    `json:"transformationReadiness,omitempty"`

	AmandaScore *int `json:"amandaScore,omitempty"`

	SourceSection string `json:"sourceSection"`
	CTAID         string `json:"ctaId,omitempty"`
	TrafficSource string `json:"trafficSource,omitempty"`
}

// Answers maps the flat request fields onto the scored answer set.
func (r *LeadRequest) Answers() models.QualificationAnswers {
	return models.QualificationAnswers{
		Gender:                   r.Gender,
		Age:                      r.Age,
		MonthlyRevenue:           r.MonthlyRevenue,
		WorkHoursDaily:           r.WorkHoursDaily,
		MainStruggle:             r.MainStruggle,
		DelegationStruggle:       r.DelegationStruggle,
		FeminineEnergyImportance: r.FeminineEnergyImportance,
		LeadershipInterest:       r.LeadershipInterest,
		TransformationReadiness:  r.TransformationReadiness,
	}
}

// LeadResponse is the lead-submit success body. Partial sink failure
// still produces this response; only the counts reveal it.
type LeadResponse struct {
	Success             bool                  `json:"success"`
	LeadID              string                `json:"leadId"`
	AmandaScore         int                   `json:"amandaScore"`
	AmandaScoreTier     string                `json:"amandaScoreTier"`
	QualificationResult string                `json:"qualificationResult"`
	Message             string                `json:"message"`
	WebhookResults      models.WebhookResults `json:"webhookResults"`
}

// QuestionnaireRequest is the inbound questionnaire-submit payload.
// The Amanda score is optional; when absent it is recovered from the
// lead cache.
type QuestionnaireRequest struct {
	LeadID string `json:"leadId"`
	Email  string `json:"email"`

	TimeCommitment     int      `json:"timeCommitment"`
	InvestmentCapacity string   `json:"investmentCapacity,omitempty"`
	UrgencyLevel       string   `json:"urgencyLevel,omitempty"`
	SupportSystem      string   `json:"supportSystem,omitempty"`
	PreviousMentoring  string   `json:"previousMentoring,omitempty"`
	TeamSize           int      `json:"teamSize"`
	CurrentChallenges  []string `json:"currentChallenges"`
	ExpectedOutcomes   []string `json:"expectedOutcomes,omitempty"`

	AmandaScore *int `json:"amanda_match_score,omitempty"`
}

// Answers maps the request onto the readiness-scored answer set.
func (r *QuestionnaireRequest) Answers() models.QuestionnaireAnswers {
	return models.QuestionnaireAnswers{
		TimeCommitment:     r.TimeCommitment,
		InvestmentCapacity: r.InvestmentCapacity,
		UrgencyLevel:       r.UrgencyLevel,
		SupportSystem:      r.SupportSystem,
		PreviousMentoring:  r.PreviousMentoring,
		TeamSize:           r.TeamSize,
		CurrentChallenges:  r.CurrentChallenges,
		ExpectedOutcomes:   r.ExpectedOutcomes,
	}
}

// QuestionnaireResponse is the questionnaire-submit success body.
// CalendlyURL is null unless the lead routed to calendar booking.
type QuestionnaireResponse struct {
	Success             bool    `json:"success"`
	TransformationScore int     `json:"transformationScore"`
	NextStep            string  `json:"nextStep"`
	CalendlyURL         *string `json:"calendlyUrl"`
	Message             string  `json:"message"`
}

// ErrorResponse is the error body shared by both endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
