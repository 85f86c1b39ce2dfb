package dashboard

import "math"

type StagiaireStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Upcoming  int64 `json:"upcoming"`
}

type MissionStats struct {
	Total           int64   `json:"total"`
	NotStarted      int64   `json:"notStarted"`
	InProgress      int64   `json:"inProgress"`
	Completed       int64   `json:"completed"`
	AverageProgress float64 `json:"averageProgress"`
}

type EvaluationStats struct {
	Total        int64   `json:"total"`
	Draft        int64   `json:"draft"`
	Reviewed     int64   `json:"reviewed"`
	AverageScore float64 `json:"averageScore"`
}

type Stats struct {
	Stagiaires  StagiaireStats  `json:"stagiaires"`
	Missions    MissionStats    `json:"missions"`
	Evaluations EvaluationStats `json:"evaluations"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
