package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"shopify-store-builder/internal/domain"
)

// extractJSON pulls the first JSON object out of a model reply. Models
// routinely wrap the payload in prose or a markdown fence, so we cut from
// the first '{' to the last '}' and parse that.
func extractJSON(reply string, dst interface{}) error {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("%w: no JSON object in model reply", domain.ErrEmptyGeneration)
	}
	if err := json.Unmarshal([]byte(reply[start:end+1]), dst); err != nil {
		return fmt.Errorf("parse model reply: %w", err)
	}
	return nil
}

func nicheAnalysisPrompt(description string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "E-commerce niche: %s\n", description)
	sb.WriteString(`Return JSON: {"niche_name":string,"market_opportunity":1-10,"competition_level":1-10,"recommended_colors":[hex],"target_audience":string,"key_products":[string]}`)
	return sb.String()
}

func colorSchemePrompt(niche, personality string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Niche: %s", niche)
	if personality != "" {
		fmt.Fprintf(&sb, " | Personality: %s", personality)
	}
	sb.WriteString("\n")
	sb.WriteString(`Return JSON: {"primaryColor":hex,"secondaryColor":hex,"accentColors":[hex]}`)
	return sb.String()
}

const systemPrompt = "You are an e-commerce store planning assistant that only responds with valid JSON."
