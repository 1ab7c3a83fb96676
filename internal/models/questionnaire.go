package models

// QuestionnaireAnswers is the second-stage qualification questionnaire,
// keyed by an existing lead id.
type QuestionnaireAnswers struct {
	TimeCommitment     int      `json:"timeCommitment"` // hours per week
	InvestmentCapacity string   `json:"investmentCapacity"`
	UrgencyLevel       string   `json:"urgencyLevel"`
	SupportSystem      string   `json:"supportSystem"`
	PreviousMentoring  string   `json:"previousMentoring"`
	TeamSize           int      `json:"teamSize"`
	CurrentChallenges  []string `json:"currentChallenges"`
	ExpectedOutcomes   []string `json:"expectedOutcomes,omitempty"`
}

// QuestionnaireUpdate is the finalized second-stage record fanned out to
// the sinks that support updates.
type QuestionnaireUpdate struct {
	LeadID                  string               `json:"leadId"`
	Email                   string               `json:"email"`
	Answers                 QuestionnaireAnswers `json:"answers"`
	TransformationReadiness int                  `json:"transformationReadiness"`
	ReadinessCategory       string               `json:"readinessCategory"`
	NextStep                string               `json:"nextStep"`
	CompletionTimestamp     string               `json:"completionTimestamp"`
}
