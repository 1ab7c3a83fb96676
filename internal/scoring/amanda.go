// Package scoring implements the Amanda qualification rubric and the
// second-stage transformation readiness rubric. Both are deterministic,
// total functions: unrecognized or missing answers score zero, never fail.
package scoring

import "leadpipe/internal/models"

// Answer enumerations as they appear on the wire.
const (
	GenderFemale          = "feminino"
	RevenueMidTier        = "15k_25k"
	StruggleExhaustion    = "exhaustion_overwork"
	DelegationYes         = "sim"
	FeminineVeryImportant = "muito_importante"
	LeadershipHigh        = "alto"
)

// Tier and qualification result values.
const (
	TierHigh   = "high"
	TierMedium = "medium"
	TierLow    = "low"

	ResultPriorityEnrollment    = "priority_enrollment"
	ResultQualificationRequired = "qualification_required"
	ResultRedirectAlternative   = "redirect_alternative_resources"
)

// DefaultReconcileTolerance is the max client/server delta before the
// server value silently replaces the client-reported score.
const DefaultReconcileTolerance = 5

// Score computes the Amanda qualification score.
// Demographics (20) + pain points (40) + behavioral indicators (40), capped at 100.
func Score(a models.QualificationAnswers) int {
	score := 0

	// Demographics (20 points)
	if a.Gender == GenderFemale {
		score += 10
	}
	if a.Age >= 30 && a.Age <= 40 {
		score += 5
	}
	if a.MonthlyRevenue == RevenueMidTier {
		score += 5
	}

	// Pain points (40 points)
	if a.WorkHoursDaily >= 10 {
		score += 15
	}
	if a.MainStruggle == StruggleExhaustion {
		score += 15
	}
	if a.DelegationStruggle == DelegationYes {
		score += 10
	}

	// Behavioral indicators (40 points)
	if a.FeminineEnergyImportance == FeminineVeryImportant {
		score += 15
	}
	if a.LeadershipInterest == LeadershipHigh {
		score += 15
	}
	if a.TransformationReadiness >= 8 {
		score += 10
	}

	if score > 100 {
		score = 100
	}
	return score
}

// Tier buckets a score for segmentation.
func Tier(score int) string {
	switch {
	case score >= 80:
		return TierHigh
	case score >= 60:
		return TierMedium
	default:
		return TierLow
	}
}

// QualificationResult maps a score to the routing decision.
func QualificationResult(score int) string {
	switch {
	case score >= 80:
		return ResultPriorityEnrollment
	case score >= 60:
		return ResultQualificationRequired
	default:
		return ResultRedirectAlternative
	}
}

// Reconcile applies the tolerance policy between the advisory client
// score and the authoritative server score. Within tolerance the client
// value is kept; beyond it the server value wins silently.
func Reconcile(clientScore, serverScore, tolerance int) int {
	delta := clientScore - serverScore
	if delta < 0 {
		delta = -delta
	}
	if delta <= tolerance {
		return clientScore
	}
	return serverScore
}
