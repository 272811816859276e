package model

// SeedPosts is the example calendar shown on a fresh profile: single posts, a resolved
// A/B test and a pending one.
func SeedPosts() []ScheduledPost {
	return []ScheduledPost{
		{
			ID: 1, Platform: PlatformLinkedIn, Day: Monday, ScheduledTime: "9:00 AM",
			Body: SingleContent{Content: "Excited to share our Q3 growth report! We've seen a 25% increase in user engagement..."},
		},
		{
			ID: 4, Platform: PlatformInstagram, Day: Tuesday, ScheduledTime: "2:00 PM",
			Body: ABTest{
				VariantA: Variant{Content: "Our new A/B testing feature is a game-changer! See how it works."},
				VariantB: Variant{Content: "Boost your engagement with our powerful new A/B testing feature. Check it out."},
				Result: &ABResult{
					Winner: WinnerB,
					A:      Performance{Likes: 120, Comments: 15, Shares: 8},
					B:      Performance{Likes: 180, Comments: 25, Shares: 12},
				},
			},
		},
		{
			ID: 2, Platform: PlatformInstagram, Day: Wednesday, ScheduledTime: "12:00 PM",
			Body: SingleContent{Content: "Behind the scenes at NexusGrowth!"},
		},
		{
			ID: 3, Platform: PlatformLinkedIn, Day: Friday, ScheduledTime: "11:00 AM",
			Body: ABTest{
				VariantA: Variant{Content: "Top 5 tips for leveraging AI in your content strategy. Tip #1: Personalize at scale."},
				VariantB: Variant{Content: "Unlock the power of AI in your content strategy with these 5 essential tips."},
			},
		},
	}
}

func SeedFollowerData() []FollowerPoint {
	return []FollowerPoint{
		{Name: "Mon", LinkedIn: 4000, Instagram: 2400},
		{Name: "Tue", LinkedIn: 3000, Instagram: 1398},
		{Name: "Wed", LinkedIn: 2000, Instagram: 9800},
		{Name: "Thu", LinkedIn: 2780, Instagram: 3908},
		{Name: "Fri", LinkedIn: 1890, Instagram: 4800},
		{Name: "Sat", LinkedIn: 2390, Instagram: 3800},
		{Name: "Sun", LinkedIn: 3490, Instagram: 4300},
	}
}

func SeedEngagementData() []EngagementPoint {
	return []EngagementPoint{
		{Name: "Week 1", Rate: 2.1},
		{Name: "Week 2", Rate: 3.5},
		{Name: "Week 3", Rate: 2.9},
		{Name: "Week 4", Rate: 4.2},
	}
}
