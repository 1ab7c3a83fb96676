package models

// QualificationAnswers is the fixed answer set scored by the Amanda rubric.
// Every field contributes independently and additively; missing or
// unrecognized values simply score zero for that item.
type QualificationAnswers struct {
	Gender                   string `json:"gender"`
	Age                      int    `json:"age"`
	MonthlyRevenue           string `json:"monthlyRevenue"`
	WorkHoursDaily           int    `json:"workHoursDaily"`
	MainStruggle             string `json:"mainStruggle"`
	DelegationStruggle       string `json:"delegationStruggle"`
	FeminineEnergyImportance string `json:"feminineEnergyImportance"`
	LeadershipInterest       string `json:"leadershipInterest"`
	TransformationReadiness  int    `json:"transformationReadiness"`
}

// LeadRecord is the finalized, authoritative lead built once per form
// submission. Immutable after creation; sinks receive copies only.
type LeadRecord struct {
	LeadID string `json:"leadId"`

	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	BusinessType string               `json:"businessType"`
	Answers      QualificationAnswers `json:"answers"`

	AmandaScore         int    `json:"amandaScore"`
	AmandaScoreTier     string `json:"amandaScoreTier"`
	QualificationResult string `json:"qualificationResult"`

	TrafficSource string `json:"trafficSource,omitempty"`
	SourceSection string `json:"sourceSection"`
	CTAID         string `json:"ctaId,omitempty"`

	SubmissionTimestamp string `json:"submissionTimestamp"`
	UserAgent           string `json:"userAgent,omitempty"`
	IPAddress           string `json:"ipAddress,omitempty"`
}

// WebhookResults summarizes the fan-out outcome for one submission.
type WebhookResults struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}
