package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"social-dashboard/model"
)

// stripFence removes a markdown code fence around a JSON payload.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func decode(raw string, target interface{}) error {
	if err := json.Unmarshal([]byte(stripFence(raw)), target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

// ParseIdeas decodes a ContentIdeas response.
func ParseIdeas(raw string) ([]model.PostIdea, error) {
	var payload struct {
		Ideas []model.PostIdea `json:"ideas"`
	}
	if err := decode(raw, &payload); err != nil {
		return nil, err
	}
	if len(payload.Ideas) == 0 {
		return nil, fmt.Errorf("%w: no ideas", ErrMalformedPayload)
	}
	return payload.Ideas, nil
}

// ParseReplies decodes a CommentReply response.
func ParseReplies(raw string) ([]string, error) {
	var payload struct {
		Replies []string `json:"replies"`
	}
	if err := decode(raw, &payload); err != nil {
		return nil, err
	}
	if len(payload.Replies) == 0 {
		return nil, fmt.Errorf("%w: no replies", ErrMalformedPayload)
	}
	return payload.Replies, nil
}

// ParsePlan decodes a StrategicPlan response. Items naming an unknown day or platform
// are rejected, since they could not be handed to the scheduler.
func ParsePlan(raw string) ([]model.StrategicPlanItem, error) {
	var payload struct {
		Plan []model.StrategicPlanItem `json:"plan"`
	}
	if err := decode(raw, &payload); err != nil {
		return nil, err
	}
	if len(payload.Plan) == 0 {
		return nil, fmt.Errorf("%w: empty plan", ErrMalformedPayload)
	}
	for i, item := range payload.Plan {
		if !item.Day.Valid() {
			return nil, fmt.Errorf("%w: item %d: unknown day %q", ErrMalformedPayload, i, item.Day)
		}
		if !item.Platform.Valid() {
			return nil, fmt.Errorf("%w: item %d: unknown platform %q", ErrMalformedPayload, i, item.Platform)
		}
	}
	return payload.Plan, nil
}

// ParseMultipliedContent decodes a MultiplyContent response.
func ParseMultipliedContent(raw string) (model.MultipliedContent, error) {
	var out model.MultipliedContent
	if err := decode(raw, &out); err != nil {
		return model.MultipliedContent{}, err
	}
	if out.LinkedInArticle == "" && len(out.TwitterThread) == 0 && len(out.InstagramCarousel) == 0 {
		return model.MultipliedContent{}, fmt.Errorf("%w: no content", ErrMalformedPayload)
	}
	return out, nil
}
