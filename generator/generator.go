// Package generator writes social media content with a large language model. Each call
// returns the raw model text; the Parse helpers decode the JSON payloads.
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"social-dashboard/config"
	"social-dashboard/metrics"
	"social-dashboard/model"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// IdeaRequest describes the post a user wants ideas for.
type IdeaRequest struct {
	Topic    string         `json:"topic"`
	Platform model.Platform `json:"platform"`
	Tone     string         `json:"tone"`
}

// Client builds prompts from the brand profile and sends them to a TextModel.
type Client struct {
	model         TextModel
	fastModel     string
	strategyModel string
	timeout       time.Duration
}

func New(m TextModel, cfg config.GenAIConfig) *Client {
	c := &Client{
		model:         m,
		fastModel:     cfg.FastModel,
		strategyModel: cfg.StrategyModel,
		timeout:       time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	if c.fastModel == "" {
		c.fastModel = "gemini-2.5-flash"
	}
	if c.strategyModel == "" {
		c.strategyModel = "gemini-2.5-pro"
	}
	return c
}

// ContentIdeas asks for three post ideas about req.Topic.
func (c *Client) ContentIdeas(ctx context.Context, req IdeaRequest, profile *model.BrandProfile) (string, error) {
	prompt := brandPrompt(profile, strategistRole) + fmt.Sprintf(`
Write 3 different, engaging content ideas for a %s post about "%s".
Use a %s tone.
Give every idea a strong headline, the post body, and 3 to 5 relevant hashtags.
Return a JSON object.`, req.Platform, req.Topic, req.Tone)

	return c.generate(ctx, "ideas", c.fastModel, prompt, ideasSchema,
		"AI failed to generate ideas. Please try again.")
}

// CommentReply asks for three replies to a comment left on a post.
func (c *Client) CommentReply(ctx context.Context, postContent, comment string, profile *model.BrandProfile) (string, error) {
	prompt := brandPrompt(profile, managerRole) + fmt.Sprintf(`
My recent post was about: "%s".
Someone commented: "%s".
Write 3 different, positive and engaging replies. Keep them short and on-brand.
Return a JSON object whose "replies" key holds an array of strings.`, postContent, comment)

	return c.generate(ctx, "replies", c.fastModel, prompt, repliesSchema,
		"AI couldn't generate a reply right now.")
}

// PerformanceInsights asks for a plain-text reading of the analytics series.
func (c *Client) PerformanceInsights(ctx context.Context, data model.AnalyticsData, profile *model.BrandProfile) (string, error) {
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode analytics: %w", err)
	}

	prompt := brandPrompt(profile, strategistRole) + fmt.Sprintf(`
Below is my social media analytics data as JSON.
Summarize how my accounts are performing in a few sentences and explain what drives the numbers.
Point out what works and what does not.
Finish with 3 concrete recommendations for my content strategy.

Analytics Data:
%s`, payload)

	return c.generate(ctx, "insights", c.fastModel, prompt, nil,
		"Could not generate insights at this time.")
}

// StrategicPlan asks for a Monday to Sunday posting plan. It needs a configured profile.
func (c *Client) StrategicPlan(ctx context.Context, profile model.BrandProfile, summary PerformanceSummary) (string, error) {
	if !profile.IsConfigured() {
		return "", ErrMissingBrandProfile
	}

	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode performance summary: %w", err)
	}

	prompt := brandPrompt(&profile, strategistRole) + fmt.Sprintf(`
Build a proactive 7-day social media content plan.
Use my past performance below to learn what my audience responds to.
Suggest one unique post for every day from Monday to Sunday.
For each suggestion give the day, a recommended time, the platform, a specific topic,
the best format (Text-only, Poll, Image with Caption, Carousel, ...) and a short reasoning.

Past Performance Data:
%s

Return a JSON object with a single "plan" key holding an array of 7 objects.`, payload)

	return c.generate(ctx, "plan", c.strategyModel, prompt, planSchema,
		"Failed to generate strategic plan.")
}

// MultiplyContent repurposes one long-form piece into a campaign for every platform.
// It needs a configured profile.
func (c *Client) MultiplyContent(ctx context.Context, longForm string, profile model.BrandProfile) (string, error) {
	if !profile.IsConfigured() {
		return "", ErrMissingBrandProfile
	}

	prompt := brandPrompt(&profile, strategistRole) + fmt.Sprintf(`
Act as a content multiplier. Turn the long-form content below into a full multi-platform campaign:
1. A professional, insightful LinkedIn article of 3 to 4 paragraphs.
2. A punchy Twitter thread of 3 to 5 numbered tweets.
3. An Instagram carousel script with text for 4 to 6 slides.

Original Content:
---
%s
---

Return a single JSON object.`, longForm)

	return c.generate(ctx, "multiply", c.strategyModel, prompt, multiplySchema,
		"Failed to multiply content.")
}

func (c *Client) generate(ctx context.Context, op, modelName, prompt string, schema *genai.Schema, userMessage string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.model.GenerateText(ctx, modelName, prompt, schema)
	if err != nil {
		log.Error().Err(err).Str("generator", op).Str("model", modelName).Msg("Content generation failed")
		metrics.GeneratorCalls.WithLabelValues(op, metrics.OutcomeFailure).Inc()
		return "", &Error{Op: op, Message: userMessage, Err: err}
	}

	log.Debug().
		Str("generator", op).
		Str("model", modelName).
		Dur("took", time.Since(start)).
		Int("chars", len(text)).
		Msg("Content generated")
	metrics.GeneratorCalls.WithLabelValues(op, metrics.OutcomeSuccess).Inc()
	return text, nil
}

const (
	strategistRole = "world-class social media strategist"
	managerRole    = "helpful social media manager"
)

// brandPrompt opens every prompt. Without a company description the model gets the
// role only.
func brandPrompt(profile *model.BrandProfile, role string) string {
	if profile == nil || !profile.IsConfigured() {
		return "Act as a " + role + "."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Act as a %s for a specific brand.\n", role)
	b.WriteString("Brand Context:\n")
	fmt.Fprintf(&b, "- Company Description: %s\n", profile.CompanyDescription)
	fmt.Fprintf(&b, "- Target Audience: %s\n", profile.TargetAudience)
	fmt.Fprintf(&b, "- Brand Voice: %s\n", strings.Join(profile.BrandVoice, ", "))
	fmt.Fprintf(&b, "- Key Information: %s\n", profile.KnowledgeBase)
	b.WriteString("Keep every output aligned with this brand's identity and goals.\n")
	return b.String()
}
