package generator

import (
	"fmt"

	"social-dashboard/model"
)

// PerformanceSummary is the past-performance context given to the strategic planner.
type PerformanceSummary struct {
	TopTopics            []string `json:"topTopics"`
	BestPerformingFormat string   `json:"bestPerformingFormat"`
	HighestEngagementDay string   `json:"highestEngagementDay"`
}

var defaultSummary = PerformanceSummary{
	TopTopics:            []string{"AI in marketing", "Content strategy", "A/B testing features"},
	BestPerformingFormat: "Image with Caption on Instagram",
	HighestEngagementDay: string(model.Tuesday),
}

// SummarizePerformance derives the summary from resolved A/B tests. Without any resolved
// test it falls back to a generic summary.
func SummarizePerformance(posts []model.ScheduledPost) PerformanceSummary {
	byDay := map[model.Weekday]int{}
	byPlatform := map[model.Platform]int{}
	var topics []string

	for _, p := range posts {
		test, ok := p.ABTest()
		if !ok || test.Pending() {
			continue
		}
		total := test.Result.A.Total() + test.Result.B.Total()
		byDay[p.Day] += total
		byPlatform[p.Platform] += total

		switch test.Result.Winner {
		case model.WinnerA:
			topics = append(topics, test.VariantA.Content)
		case model.WinnerB:
			topics = append(topics, test.VariantB.Content)
		}
	}
	if len(byDay) == 0 {
		out := defaultSummary
		out.TopTopics = append([]string{}, defaultSummary.TopTopics...)
		return out
	}

	out := PerformanceSummary{
		TopTopics:            topics,
		BestPerformingFormat: defaultSummary.BestPerformingFormat,
		HighestEngagementDay: defaultSummary.HighestEngagementDay,
	}
	if len(out.TopTopics) > 3 {
		out.TopTopics = out.TopTopics[:3]
	}
	if len(out.TopTopics) == 0 {
		out.TopTopics = append([]string{}, defaultSummary.TopTopics...)
	}

	best := 0
	for _, d := range model.Weekdays {
		if byDay[d] > best {
			best = byDay[d]
			out.HighestEngagementDay = string(d)
		}
	}
	best = 0
	for _, p := range model.Platforms {
		if byPlatform[p] > best {
			best = byPlatform[p]
			out.BestPerformingFormat = fmt.Sprintf("A/B tested posts on %s", p)
		}
	}
	return out
}
