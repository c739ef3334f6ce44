package entity

// Stage is the priority bucket derived from a lead score.
type Stage string

const (
	StageLow        Stage = "low"
	StageMedium     Stage = "medium"
	StageHigh       Stage = "high"
	StageVeryHigh   Stage = "very_high"
	StageEnterprise Stage = "enterprise"
)

// StagesDescending lists every stage from the highest priority to the lowest.
var StagesDescending = []Stage{StageEnterprise, StageVeryHigh, StageHigh, StageMedium, StageLow}

func (s Stage) Valid() bool {
	switch s {
	case StageLow, StageMedium, StageHigh, StageVeryHigh, StageEnterprise:
		return true
	}
	return false
}

// Rank orders stages; an unknown stage ranks below low.
func (s Stage) Rank() int {
	switch s {
	case StageLow:
		return 1
	case StageMedium:
		return 2
	case StageHigh:
		return 3
	case StageVeryHigh:
		return 4
	case StageEnterprise:
		return 5
	}
	return 0
}

func (s Stage) Label() string {
	switch s {
	case StageLow:
		return "Low Priority"
	case StageMedium:
		return "Medium Priority"
	case StageHigh:
		return "High Priority"
	case StageVeryHigh:
		return "Very High Priority"
	case StageEnterprise:
		return "Enterprise Target"
	}
	return "Not assigned"
}
