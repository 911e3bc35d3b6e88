package progress

import (
	"sort"
	"time"

	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

// Report aggregates the progress/analytics fields of spec §4.7's
// track_progress action: completion rate, average progress, velocity,
// bottlenecks and burndown.
type Report struct {
	TotalItems      int
	CompletedItems  int
	CompletionRate  float64 // 0..1
	AverageProgress float64 // mean progress_percentage across all items in scope
	VelocityPerWeek float64 // items completed per week over the trailing window
	Bottlenecks     []Bottleneck
	BurndownDays    []BurndownPoint
}

// Bottleneck names a blocked or stalled item dragging on overall progress
// (spec §4.7 "surface items blocked the longest or with the most
// dependents").
type Bottleneck struct {
	ItemID        string
	Title         string
	BlockedDays   float64
	DependentsLen int
}

// BurndownPoint is one day's remaining-work snapshot.
type BurndownPoint struct {
	Date      time.Time
	Remaining int
}

const trendWindow = 28 * 24 * time.Hour

// Rollup computes ProgressPercentage for a parent item as the mean of its
// direct children's stored percentages; grandchildren are not folded in
// (spec open question:
// "progress rolls up as the mean of children's progress_percentage,
// recomputed lazily on read rather than stored").
func Rollup(item *store.Item, children []*store.Item) float64 {
	if len(children) == 0 {
		return item.ProgressPercentage
	}
	var sum float64
	for _, c := range children {
		sum += c.ProgressPercentage
	}
	return sum / float64(len(children))
}

// Analyze builds a Report from every item and execution record in scope
// (spec §4.7 progress analytics).
func Analyze(items []*store.Item, executions []*store.ExecutionRecord, dependentsOf func(id string) int) Report {
	report := Report{TotalItems: len(items)}
	if len(items) == 0 {
		return report
	}

	var progressSum float64
	now := time.Now().UTC()
	for _, it := range items {
		progressSum += it.ProgressPercentage
		if it.Status == store.Completed {
			report.CompletedItems++
		}
		if it.Status == store.Blocked {
			blockedSince := it.UpdatedAt
			report.Bottlenecks = append(report.Bottlenecks, Bottleneck{
				ItemID:        it.ID,
				Title:         it.Title,
				BlockedDays:   now.Sub(blockedSince).Hours() / 24,
				DependentsLen: dependentsOf(it.ID),
			})
		}
	}
	report.AverageProgress = progressSum / float64(len(items))
	report.CompletionRate = float64(report.CompletedItems) / float64(report.TotalItems)

	sort.Slice(report.Bottlenecks, func(i, j int) bool {
		if report.Bottlenecks[i].DependentsLen != report.Bottlenecks[j].DependentsLen {
			return report.Bottlenecks[i].DependentsLen > report.Bottlenecks[j].DependentsLen
		}
		return report.Bottlenecks[i].BlockedDays > report.Bottlenecks[j].BlockedDays
	})
	if len(report.Bottlenecks) > 10 {
		report.Bottlenecks = report.Bottlenecks[:10]
	}

	report.VelocityPerWeek = velocity(items, now)
	report.BurndownDays = burndown(items, now)
	return report
}

// velocity counts items that completed within the trailing trendWindow and
// normalizes to a per-week rate.
func velocity(items []*store.Item, now time.Time) float64 {
	completedInWindow := 0
	for _, it := range items {
		if it.Status != store.Completed || it.CompletedAt == nil {
			continue
		}
		if now.Sub(*it.CompletedAt) <= trendWindow {
			completedInWindow++
		}
	}
	weeks := trendWindow.Hours() / (24 * 7)
	return float64(completedInWindow) / weeks
}

// burndown produces one remaining-work point per day over the trailing
// window, counting items not yet completed as of that day.
func burndown(items []*store.Item, now time.Time) []BurndownPoint {
	days := int(trendWindow.Hours() / 24)
	points := make([]BurndownPoint, 0, days+1)
	for d := days; d >= 0; d-- {
		day := now.AddDate(0, 0, -d)
		remaining := 0
		for _, it := range items {
			if it.Status == store.Completed && it.CompletedAt != nil && it.CompletedAt.Before(day) {
				continue
			}
			remaining++
		}
		points = append(points, BurndownPoint{Date: day, Remaining: remaining})
	}
	return points
}
