package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultSuggestModel = "claude-sonnet-4-5-20250929"

const suggestSystemPrompt = `You classify crowd-sourced traffic-hazard reports.
Given the text content of a report, decide which hazard tags apply.
The only valid tags are: obstacle, flood, trafficjam, police.
Respond with a single JSON object and nothing else:
{"tags": ["..."], "confidence": 0.0}
Use an empty tags array when none clearly apply. Confidence is your overall
certainty in [0,1].`

type suggestResponse struct {
	Tags       []string `json:"tags"`
	Confidence float64  `json:"confidence"`
}

// TagSuggestion is an advisory hint shown in the detail view. The decision
// payload is always built from the moderator's explicit selection.
type TagSuggestion struct {
	Tags       []HazardTag
	Confidence float64
}

// SuggestHazardTags asks the model which hazard tags likely apply to a text
// report. Returns nil when suggestion is not configured or the content is
// empty.
func SuggestHazardTags(cfg Config, content string) (*TagSuggestion, error) {
	if !cfg.SuggestEnabled() {
		return nil, nil
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))

	message, err := client.Messages.New(context.Background(), anthropic.MessageNewParams{
		Model:     anthropic.Model(cfg.SuggestModel),
		MaxTokens: 256,
		System: []anthropic.TextBlockParam{
			{Text: suggestSystemPrompt, CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(content)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("suggest tags: %w", err)
	}

	var raw string
	for _, block := range message.Content {
		if block.Type == "text" {
			raw = block.Text
			break
		}
	}
	if raw == "" {
		return nil, fmt.Errorf("suggest tags: no text content in response")
	}
	log.Printf("suggest response size=%d tokens_in=%d tokens_out=%d",
		len(raw), message.Usage.InputTokens, message.Usage.OutputTokens)

	return parseSuggestion(raw)
}

// parseSuggestion extracts the JSON object from the model output, tolerating
// surrounding prose or code fences.
func parseSuggestion(raw string) (*TagSuggestion, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("suggest tags: no JSON object in response")
	}

	var resp suggestResponse
	if err := json.Unmarshal([]byte(raw[start:end+1]), &resp); err != nil {
		return nil, fmt.Errorf("suggest tags: parsing response: %w", err)
	}

	suggestion := &TagSuggestion{Confidence: resp.Confidence}
	for _, s := range resp.Tags {
		if tag := ParseHazardTag(strings.ToLower(strings.TrimSpace(s))); tag != "" {
			suggestion.Tags = append(suggestion.Tags, tag)
		}
	}
	return suggestion, nil
}

// FormatSuggestion renders the advisory hint line for the detail view.
func FormatSuggestion(s *TagSuggestion) string {
	if s == nil {
		return ""
	}
	if len(s.Tags) == 0 {
		return "Suggested tags: none"
	}
	labels := make([]string, 0, len(s.Tags))
	for _, t := range s.Tags {
		labels = append(labels, t.Label())
	}
	return fmt.Sprintf("Suggested tags: %s (confidence %.0f%%)", strings.Join(labels, ", "), s.Confidence*100)
}
