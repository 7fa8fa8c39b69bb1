package engine

import "math"

// TaskState is the projection of a task the tracker needs.
type TaskState struct {
	Category Category
	Status   TaskStatus
}

// Progress is a roadmap's completion snapshot. Always derived from the task
// list, never accepted from a client.
type Progress struct {
	Overall    int              `json:"overall"`
	ByCategory map[Category]int `json:"byCategory"`
}

// RecomputeProgress derives overall and per-category completion percentages
// from the current task list. Empty denominators yield zero.
func RecomputeProgress(tasks []TaskState) Progress {
	total, completed := 0, 0
	catTotal := make(map[Category]int, len(Categories))
	catDone := make(map[Category]int, len(Categories))
	for _, t := range tasks {
		total++
		catTotal[t.Category]++
		if t.Status == TaskCompleted {
			completed++
			catDone[t.Category]++
		}
	}

	overall := 0
	if total > 0 {
		overall = int(math.Round(float64(completed) / float64(total) * 100))
	}
	byCategory := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		byCategory[c] = 0
		if catTotal[c] > 0 {
			byCategory[c] = int(math.Round(float64(catDone[c]) / float64(catTotal[c]) * 100))
		}
	}
	return Progress{Overall: overall, ByCategory: byCategory}
}
