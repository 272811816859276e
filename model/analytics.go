package model

// FollowerPoint is one bucket of the follower growth chart.
type FollowerPoint struct {
	Name      string `json:"name"`
	LinkedIn  int    `json:"LinkedIn"`
	Instagram int    `json:"Instagram"`
}

// EngagementPoint is one bucket of the engagement rate chart, rate in percent.
type EngagementPoint struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// AnalyticsData carries both series; they are always replaced together.
type AnalyticsData struct {
	FollowerData   []FollowerPoint   `json:"followerData"`
	EngagementData []EngagementPoint `json:"engagementData"`
}

func (a AnalyticsData) Clone() AnalyticsData {
	return AnalyticsData{
		FollowerData:   append([]FollowerPoint{}, a.FollowerData...),
		EngagementData: append([]EngagementPoint{}, a.EngagementData...),
	}
}
