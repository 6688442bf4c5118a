package services

type SeverityTier string

const (
	SeverityLow      SeverityTier = "low"
	SeverityModerate SeverityTier = "moderate"
	SeverityHigh     SeverityTier = "high"
)

const (
	lowSeverityMaxReports      = 10
	moderateSeverityMaxReports = 20
)

func SeverityTierFor(totalReports int) SeverityTier {
	switch {
	case totalReports <= lowSeverityMaxReports:
		return SeverityLow
	case totalReports <= moderateSeverityMaxReports:
		return SeverityModerate
	default:
		return SeverityHigh
	}
}

// Color is the marker colour the map legend uses for the tier.
func (tier SeverityTier) Color() string {
	switch tier {
	case SeverityHigh:
		return "#ef4444"
	case SeverityModerate:
		return "#eab308"
	default:
		return "#22c55e"
	}
}
