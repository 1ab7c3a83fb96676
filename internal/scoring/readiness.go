package scoring

import "leadpipe/internal/models"

// Questionnaire answer enumerations.
const (
	InvestmentReadyNow  = "ready_now"
	InvestmentReadySoon = "ready_soon"
	InvestmentNeedInfo  = "need_info"

	UrgencyUrgent = "urgent"
	UrgencyHigh   = "high"
	UrgencyMedium = "medium"

	SupportStrong   = "strong"
	SupportModerate = "moderate"
	SupportLimited  = "limited"

	MentoringSuccessful = "successful_experience"
	ChallengeBurnout    = "exhaustion_burnout"
)

// Routing decisions for the second-stage flow.
const (
	StepCalendarBooking   = "calendar_booking"
	StepNurtureSequence   = "nurture_sequence"
	StepEducationSequence = "education_sequence"
)

// TransformationReadiness computes the 0-100 second-stage score:
// four 25-point items (time commitment, investment, urgency, support)
// plus bonus indicators, capped at 100.
func TransformationReadiness(q models.QuestionnaireAnswers) int {
	score := 0

	switch {
	case q.TimeCommitment >= 5:
		score += 25
	case q.TimeCommitment >= 3:
		score += 15
	case q.TimeCommitment >= 1:
		score += 5
	}

	switch q.InvestmentCapacity {
	case InvestmentReadyNow:
		score += 25
	case InvestmentReadySoon:
		score += 15
	case InvestmentNeedInfo:
		score += 10
	}

	switch q.UrgencyLevel {
	case UrgencyUrgent:
		score += 25
	case UrgencyHigh:
		score += 20
	case UrgencyMedium:
		score += 10
	}

	switch q.SupportSystem {
	case SupportStrong:
		score += 25
	case SupportModerate:
		score += 15
	case SupportLimited:
		score += 5
	}

	// Bonus indicators
	if q.PreviousMentoring == MentoringSuccessful {
		score += 10
	}
	if q.TeamSize >= 3 {
		score += 5
	}
	for _, c := range q.CurrentChallenges {
		if c == ChallengeBurnout {
			score += 5
			break
		}
	}

	if score > 100 {
		score = 100
	}
	return score
}

// NextStep decides the routing for a completed questionnaire.
func NextStep(readinessScore, amandaScore int) string {
	if readinessScore >= 70 && amandaScore >= 70 {
		return StepCalendarBooking
	}
	if readinessScore >= 50 {
		return StepNurtureSequence
	}
	return StepEducationSequence
}

// ReadinessCategory buckets the readiness score (same breakpoints as Tier).
func ReadinessCategory(score int) string {
	return Tier(score)
}

// ReadinessGroup maps the readiness score to the email-platform group.
func ReadinessGroup(score int) string {
	switch {
	case score >= 80:
		return "questionnaire_high_readiness"
	case score >= 60:
		return "questionnaire_medium_readiness"
	default:
		return "questionnaire_low_readiness"
	}
}

// AmandaScoreGroup maps an Amanda score to the email-platform group.
func AmandaScoreGroup(score int) string {
	switch {
	case score >= 80:
		return "amanda_high_priority"
	case score >= 60:
		return "amanda_qualified"
	default:
		return "amanda_nurture"
	}
}

// TeamSizeCategory buckets team size for segmentation tags.
func TeamSizeCategory(size int) string {
	switch {
	case size <= 0:
		return "solo"
	case size <= 2:
		return "small"
	case size <= 5:
		return "medium"
	default:
		return "large"
	}
}

// CalendarAccess reports whether a lead gets scheduling access and at
// which level. Leads below 60 stay in nurture content.
func CalendarAccess(readinessScore int) (granted bool, level string) {
	if readinessScore < 60 {
		return false, ""
	}
	if readinessScore >= 80 {
		return true, "priority"
	}
	return true, "standard"
}
