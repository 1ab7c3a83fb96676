package tracking

// Traffic temperature buckets used for CTA and modal context.
const (
	TemperatureHot  = "hot"
	TemperatureWarm = "warm"
	TemperatureCold = "cold"
)

// Temperature buckets a visitor by engagement history: promoted users
// and frequent returners are hot, repeat visitors warm, first visits
// cold.
func Temperature(isReturning bool, sessionCount int) string {
	switch {
	case isReturning || sessionCount > 3:
		return TemperatureHot
	case sessionCount > 1:
		return TemperatureWarm
	default:
		return TemperatureCold
	}
}
