package model

// RiskLevel is computed by the backend. The client only displays it.
type RiskLevel string

const (
	RiskHealthy   RiskLevel = "green"
	RiskAttention RiskLevel = "yellow"
	RiskHigh      RiskLevel = "red"
)

var RiskLevels = []RiskLevel{RiskHealthy, RiskAttention, RiskHigh}

// Rank orders risk levels by severity: red > yellow > green > anything else.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskAttention:
		return 2
	case RiskHealthy:
		return 1
	default:
		return 0
	}
}

func (r RiskLevel) Known() bool {
	return r.Rank() > 0
}

func (r RiskLevel) Label() string {
	switch r {
	case RiskHealthy:
		return "Healthy"
	case RiskAttention:
		return "Needs attention"
	case RiskHigh:
		return "High risk"
	default:
		return "Unknown"
	}
}
