package model

// BrandProfile is the user-authored context used to personalize generated content.
type BrandProfile struct {
	CompanyDescription string   `json:"companyDescription"`
	TargetAudience     string   `json:"targetAudience"`
	BrandVoice         []string `json:"brandVoice"`
	KnowledgeBase      string   `json:"knowledgeBase"`
	LinkedInConnected  bool     `json:"linkedInConnected"`
	InstagramConnected bool     `json:"instagramConnected"`
	TwitterConnected   bool     `json:"twitterConnected"`
}

// DefaultBrandProfile returns the empty first-run profile.
func DefaultBrandProfile() BrandProfile {
	return BrandProfile{BrandVoice: []string{}}
}

// Clone returns a copy that shares no slices with p.
func (p BrandProfile) Clone() BrandProfile {
	out := p
	out.BrandVoice = append([]string{}, p.BrandVoice...)
	return out
}

// IsConfigured reports whether enough context exists to personalize prompts.
func (p BrandProfile) IsConfigured() bool {
	return p.CompanyDescription != ""
}

// Connected reports the connection flag for platform.
func (p BrandProfile) Connected(platform Platform) bool {
	switch platform {
	case PlatformLinkedIn:
		return p.LinkedInConnected
	case PlatformInstagram:
		return p.InstagramConnected
	case PlatformTwitter:
		return p.TwitterConnected
	}
	return false
}

// WithConnection returns a copy of p with only the flag for platform changed.
func (p BrandProfile) WithConnection(platform Platform, connected bool) BrandProfile {
	out := p.Clone()
	switch platform {
	case PlatformLinkedIn:
		out.LinkedInConnected = connected
	case PlatformInstagram:
		out.InstagramConnected = connected
	case PlatformTwitter:
		out.TwitterConnected = connected
	}
	return out
}

// ConnectedPlatforms lists the platforms a new post may target.
func (p BrandProfile) ConnectedPlatforms() []Platform {
	var out []Platform
	for _, platform := range Platforms {
		if p.Connected(platform) {
			out = append(out, platform)
		}
	}
	return out
}
