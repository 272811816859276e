package generator

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const jsonMIMEType = "application/json"

// TextModel produces text for a prompt. A non-nil schema asks for JSON matching it.
type TextModel interface {
	GenerateText(ctx context.Context, model, prompt string, schema *genai.Schema) (string, error)
}

// GenAIModel is a TextModel backed by the Gemini API.
type GenAIModel struct {
	client *genai.Client
}

// NewGenAIModel creates a Gemini client for apiKey.
func NewGenAIModel(ctx context.Context, apiKey string) (*GenAIModel, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAIModel{client: client}, nil
}

func (m *GenAIModel) GenerateText(ctx context.Context, model, prompt string, schema *genai.Schema) (string, error) {
	var cfg *genai.GenerateContentConfig
	if schema != nil {
		cfg = &genai.GenerateContentConfig{
			ResponseMIMEType: jsonMIMEType,
			ResponseSchema:   schema,
		}
	}

	resp, err := m.client.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func str() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }

func object(props map[string]*genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props}
}

func array(items *genai.Schema) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items}
}

var (
	ideasSchema = object(map[string]*genai.Schema{
		"ideas": array(object(map[string]*genai.Schema{
			"title":    str(),
			"content":  str(),
			"hashtags": str(),
		})),
	})

	repliesSchema = object(map[string]*genai.Schema{
		"replies": array(str()),
	})

	planSchema = object(map[string]*genai.Schema{
		"plan": array(object(map[string]*genai.Schema{
			"day":       str(),
			"time":      str(),
			"platform":  str(),
			"topic":     str(),
			"format":    str(),
			"reasoning": str(),
		})),
	})

	multiplySchema = object(map[string]*genai.Schema{
		"linkedInArticle": str(),
		"twitterThread": array(object(map[string]*genai.Schema{
			"tweet": str(),
		})),
		"instagramCarousel": array(object(map[string]*genai.Schema{
			"slide":   {Type: genai.TypeInteger},
			"content": str(),
		})),
	})
)
