package model

// PostIdea is one generated content idea.
type PostIdea struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Hashtags string `json:"hashtags"`
}

// StrategicPlanItem is one day of a generated weekly plan.
type StrategicPlanItem struct {
	Day       Weekday  `json:"day"`
	Time      string   `json:"time"`
	Platform  Platform `json:"platform"`
	Topic     string   `json:"topic"`
	Format    string   `json:"format"`
	Reasoning string   `json:"reasoning"`
}

// Draft turns a plan item into a scheduler handoff.
func (i StrategicPlanItem) Draft() PostDraft {
	return PostDraft{
		Day:           i.Day,
		Platform:      i.Platform,
		ScheduledTime: i.Time,
		Content: "Topic: " + i.Topic + "\nFormat: " + i.Format +
			"\n\n[Start writing your post here...]\n\n#SocialMediaStrategy #ContentMarketing",
	}
}

type Tweet struct {
	Tweet string `json:"tweet"`
}

type CarouselSlide struct {
	Slide   int    `json:"slide"`
	Content string `json:"content"`
}

// MultipliedContent is one long-form piece repurposed for every platform.
type MultipliedContent struct {
	LinkedInArticle   string          `json:"linkedInArticle"`
	TwitterThread     []Tweet         `json:"twitterThread"`
	InstagramCarousel []CarouselSlide `json:"instagramCarousel"`
}
