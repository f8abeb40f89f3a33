package recommend

import (
	"fmt"
	"strings"

	"github.com/quotient-labs/cartwright/internal/domain"
)

// buildPrompt renders the selection prompt for the assistant. The
// candidate list is numbered so small models can anchor on position,
// but the contract is the [ID: ...] token each line carries.
func buildPrompt(intent domain.Intent, products []domain.Product) string {
	var list strings.Builder
	for i, p := range products {
		fmt.Fprintf(&list, "%d. [ID: %s] %s | $%g | Category: %s\n", i, p.ID, p.Name, p.Price, p.Category)
	}

	description := intent.Description
	if description == "" {
		description = "General project"
	}
	budget := "Not specified"
	if intent.Budget > 0 {
		budget = fmt.Sprintf("%g", intent.Budget)
	}
	category := intent.Category
	if category == "" {
		category = "General"
	}

	return fmt.Sprintf(`You are a procurement assistant for industrial/construction projects.

Project Description: %s
Budget: $%s
Category: %s

Available products from our catalog:
%s
TASK: Select up to %d MOST RELEVANT products for this project from the list above. Consider the project description, budget, and required functionality. Match the user's request as closely as possible - if they ask for a specific product type (e.g. "sink", "drill", "toilet"), prioritize products of that type.

RESPOND ONLY WITH VALID JSON in this exact format (no markdown, no backticks, no preamble):
{
  "recommendations": [
    {
      "id": "product_id_here",
      "reasoning": "Brief explanation why this product fits the project"
    }
  ],
  "summary": "Brief 1-2 sentence overview of your recommendations"
}

CRITICAL: Return ONLY the JSON object, nothing else.`,
		description, budget, category, list.String(), maxSelections)
}
