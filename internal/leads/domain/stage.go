package domain

// Stage is a lead's position in the sales pipeline.
type Stage string

const (
	StageNew       Stage = "new"
	StageContacted Stage = "contacted"
	StageQualified Stage = "qualified"
	StageNurturing Stage = "nurturing"
	StageConverted Stage = "converted"
	StageLost      Stage = "lost"
)

var knownStages = map[Stage]struct{}{
	StageNew:       {},
	StageContacted: {},
	StageQualified: {},
	StageNurturing: {},
	StageConverted: {},
	StageLost:      {},
}

func IsKnownStage(stage string) bool {
	_, ok := knownStages[Stage(stage)]
	return ok
}

// IsClosed reports whether the stage ends the automated pipeline. Admins may
// still move a closed lead by hand.
func (s Stage) IsClosed() bool {
	return s == StageConverted || s == StageLost
}

// Temperature is a coarse label derived from the score alone.
type Temperature string

const (
	TemperatureHot  Temperature = "hot"
	TemperatureWarm Temperature = "warm"
	TemperatureCold Temperature = "cold"
)

const (
	HotThreshold  = 70
	WarmThreshold = 40
)

// TemperatureFor classifies a score: hot at 70 and above, warm from 40, cold below.
func TemperatureFor(score int) Temperature {
	switch {
	case score >= HotThreshold:
		return TemperatureHot
	case score >= WarmThreshold:
		return TemperatureWarm
	default:
		return TemperatureCold
	}
}
