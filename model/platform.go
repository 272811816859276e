package model

// Platform is a social network a post can be published to.
type Platform string

const (
	PlatformLinkedIn  Platform = "LinkedIn"
	PlatformInstagram Platform = "Instagram"
	PlatformTwitter   Platform = "Twitter"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{PlatformLinkedIn, PlatformInstagram, PlatformTwitter}

func (p Platform) Valid() bool {
	switch p {
	case PlatformLinkedIn, PlatformInstagram, PlatformTwitter:
		return true
	}
	return false
}

// Weekday is the display day of a scheduled post, Monday first.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func (d Weekday) Valid() bool {
	for _, w := range Weekdays {
		if d == w {
			return true
		}
	}
	return false
}

// View is the dashboard screen currently shown.
type View string

const (
	ViewDashboard        View = "Dashboard"
	ViewContentStudio    View = "Content Studio"
	ViewScheduler        View = "Scheduler"
	ViewEngagement       View = "Engagement"
	ViewReferrals        View = "Referrals"
	ViewStrategicPlanner View = "Strategic Planner"
	ViewMultiplier       View = "Multiplier"
	ViewSettings         View = "Settings"
)

func (v View) Valid() bool {
	switch v {
	case ViewDashboard, ViewContentStudio, ViewScheduler, ViewEngagement,
		ViewReferrals, ViewStrategicPlanner, ViewMultiplier, ViewSettings:
		return true
	}
	return false
}
