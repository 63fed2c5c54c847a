package pipeline

import "fmt"

// Stage identifies one step of the chain. Values start at 1 and follow
// execution order.
type Stage int

const (
	StageBadPoints Stage = iota + 1
	StageUnwrap
	StageDetrend
	StageMeanRemoval
	StageOutliers
	StageNormalize
	StagePicoseconds
)

var stageLabels = map[Stage]string{
	StageBadPoints:   "bad_points",
	StageUnwrap:      "unwrapped",
	StageDetrend:     "detrended",
	StageMeanRemoval: "mean_removed",
	StageOutliers:    "outliers_removed",
	StageNormalize:   "normalized",
	StagePicoseconds: "picoseconds",
}

// Stages returns every stage in execution order.
func Stages() []Stage {
	return []Stage{
		StageBadPoints,
		StageUnwrap,
		StageDetrend,
		StageMeanRemoval,
		StageOutliers,
		StageNormalize,
		StagePicoseconds,
	}
}

// String returns the snapshot label of the stage.
func (s Stage) String() string {
	if l, ok := stageLabels[s]; ok {
		return l
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Valid reports whether s is one of the seven stages.
func (s Stage) Valid() bool {
	_, ok := stageLabels[s]
	return ok
}

// ParseStage maps a snapshot label back to its Stage.
func ParseStage(label string) (Stage, error) {
	for s, l := range stageLabels {
		if l == label {
			return s, nil
		}
	}
	return 0, fmt.Errorf("pipeline: unknown stage %q", label)
}
