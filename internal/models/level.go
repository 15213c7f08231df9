package models

import "sort"

// Level is a named rank reached once a user's score meets ThresholdScore.
type Level struct {
	Name           string `json:"levelName"`
	ThresholdScore int    `json:"thresholdScore"`
}

// LevelFor returns the name of the highest level whose threshold score is
// reached, or fallback when none is.
func LevelFor(levels []Level, score int, fallback string) string {
	sorted := make([]Level, len(levels))
	copy(sorted, levels)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ThresholdScore < sorted[j].ThresholdScore })

	name := fallback
	for _, l := range sorted {
		if score >= l.ThresholdScore {
			name = l.Name
		}
	}
	return name
}
