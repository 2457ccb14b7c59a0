package main

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseSuggestion(t *testing.T) {
	s, err := parseSuggestion(`{"tags": ["flood", "police"], "confidence": 0.9}`)
	if err != nil {
		t.Fatalf("parseSuggestion failed: %v", err)
	}
	if !reflect.DeepEqual(s.Tags, []HazardTag{TagFlood, TagPolice}) {
		t.Fatalf("tags = %v", s.Tags)
	}
	if s.Confidence != 0.9 {
		t.Fatalf("confidence = %v", s.Confidence)
	}
}

func TestParseSuggestionToleratesFencesAndProse(t *testing.T) {
	raw := "Here is my classification:\n```json\n{\"tags\": [\"trafficjam\"], \"confidence\": 0.6}\n```\n"
	s, err := parseSuggestion(raw)
	if err != nil {
		t.Fatalf("parseSuggestion failed: %v", err)
	}
	if !reflect.DeepEqual(s.Tags, []HazardTag{TagTrafficJam}) {
		t.Fatalf("tags = %v", s.Tags)
	}
}

func TestParseSuggestionDropsUnknownTags(t *testing.T) {
	s, err := parseSuggestion(`{"tags": ["flood", "earthquake", " POLICE "], "confidence": 0.5}`)
	if err != nil {
		t.Fatalf("parseSuggestion failed: %v", err)
	}
	if !reflect.DeepEqual(s.Tags, []HazardTag{TagFlood, TagPolice}) {
		t.Fatalf("tags = %v", s.Tags)
	}
}

func TestParseSuggestionRejectsNonJSON(t *testing.T) {
	if _, err := parseSuggestion("no idea"); err == nil {
		t.Fatal("expected an error for output without a JSON object")
	}
}

func TestSuggestDisabledWithoutKey(t *testing.T) {
	s, err := SuggestHazardTags(Config{}, "flooded underpass on ring road")
	if err != nil || s != nil {
		t.Fatalf("unconfigured suggest returned s=%v err=%v", s, err)
	}
}

func TestFormatSuggestion(t *testing.T) {
	if got := FormatSuggestion(nil); got != "" {
		t.Fatalf("nil suggestion rendered %q", got)
	}
	if got := FormatSuggestion(&TagSuggestion{}); got != "Suggested tags: none" {
		t.Fatalf("empty suggestion rendered %q", got)
	}
	got := FormatSuggestion(&TagSuggestion{Tags: []HazardTag{TagFlood, TagPolice}, Confidence: 0.85})
	if !strings.Contains(got, "Flood, Police") || !strings.Contains(got, "85%") {
		t.Fatalf("suggestion rendered %q", got)
	}
}
