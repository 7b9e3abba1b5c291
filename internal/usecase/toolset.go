package usecase

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/sparradar/backend/internal/domain"
)

// Capability names exposed to the resolution loop. The names are part
// of the public tool contract.
const (
	ToolSearchProducts = "searchProducts"
	ToolCalculate      = "calculate"
	ToolAnswer         = "answer"
)

// ToolSet wires the three callable capabilities of a resolution run:
// product search, arithmetic evaluation, and the terminal structured
// answer. Search and calculate are side-effect-free; answer performs no
// computation and only carries the model's final payload.
type ToolSet struct {
	catalog   domain.CatalogSearcher
	evaluator *Evaluator
	validate  *validator.Validate
}

// NewToolSet creates the capability set over the given catalog
func NewToolSet(catalog domain.CatalogSearcher, evaluator *Evaluator) *ToolSet {
	return &ToolSet{
		catalog:   catalog,
		evaluator: evaluator,
		validate:  validator.New(),
	}
}

type searchProductsInput struct {
	Query []string `json:"query"`
}

type calculateInput struct {
	Expression string `json:"expression"`
}

type answerInput struct {
	Answer domain.StructuredClaim `json:"answer"`
}

// Definitions returns the JSON-schema tool definitions sent to the model.
func (ts *ToolSet) Definitions() []domain.ToolDef {
	return []domain.ToolDef{
		{
			Type: "function",
			Function: domain.ToolFunction{
				Name:        ToolSearchProducts,
				Description: "Search for products in the dataset. Accepts an array of multiple products to search",
				Parameters: domain.ToolParameters{
					Type: "object",
					Properties: map[string]domain.ToolParamDef{
						"query": {
							Type:        "array",
							Description: "The queries to search for products",
							Items:       &domain.ToolParamDef{Type: "string"},
							MinItems:    1,
						},
					},
					Required: []string{"query"},
				},
			},
		},
		{
			Type: "function",
			Function: domain.ToolFunction{
				Name:        ToolCalculate,
				Description: "A tool to calculate math expressions",
				Parameters: domain.ToolParameters{
					Type: "object",
					Properties: map[string]domain.ToolParamDef{
						"expression": {
							Type:        "string",
							Description: "The arithmetic expression to evaluate",
						},
					},
					Required: []string{"expression"},
				},
			},
		},
		{
			Type: "function",
			Function: domain.ToolFunction{
				Name:        ToolAnswer,
				Description: "A tool for providing the final answer. Include the parsed items with productId (or null if not found) and the total price in cents",
				Parameters: domain.ToolParameters{
					Type: "object",
					Properties: map[string]domain.ToolParamDef{
						"answer": {
							Type:        "object",
							Description: "The structured shopping list with items and totalPrice",
						},
					},
					Required: []string{"answer"},
				},
			},
		},
	}
}

// Execute runs a non-terminal capability and returns its JSON output.
// Malformed input and evaluator failures come back as JSON error
// payloads for the model to react to; they never abort the run.
func (ts *ToolSet) Execute(call domain.ToolCall) string {
	switch call.Name {
	case ToolSearchProducts:
		return ts.executeSearch(call.Arguments)
	case ToolCalculate:
		return ts.executeCalculate(call.Arguments)
	default:
		log.Printf("[TOOLS] Unknown tool requested: %q", call.Name)
		return toolError(fmt.Sprintf("unknown tool %q", call.Name))
	}
}

func (ts *ToolSet) executeSearch(arguments json.RawMessage) string {
	var input searchProductsInput
	if err := json.Unmarshal(arguments, &input); err != nil {
		return toolError("invalid searchProducts input: expected {\"query\": [\"...\"]}")
	}
	if len(input.Query) == 0 {
		return toolError("at least one query is required")
	}

	results := ts.catalog.SearchMultiple(input.Query)
	log.Printf("[TOOLS] searchProducts: %d queries", len(input.Query))

	payload, err := json.Marshal(results)
	if err != nil {
		return toolError("failed to encode search results")
	}
	return string(payload)
}

func (ts *ToolSet) executeCalculate(arguments json.RawMessage) string {
	var input calculateInput
	if err := json.Unmarshal(arguments, &input); err != nil {
		return toolError("invalid calculate input: expected {\"expression\": \"...\"}")
	}
	if input.Expression == "" {
		return toolError("expression is required")
	}

	result := ts.evaluator.Evaluate(input.Expression)
	if result.Error != "" {
		log.Printf("[TOOLS] calculate failed for %q: %s", input.Expression, result.Error)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return toolError("failed to encode calculation result")
	}
	return string(payload)
}

// ParseAnswer decodes and validates a terminal answer payload.
// Validation is the only gate between the model's claim and the
// enrichment stage: non-empty names, amount >= 1, non-negative total.
func (ts *ToolSet) ParseAnswer(arguments json.RawMessage) (*domain.StructuredClaim, error) {
	var input answerInput
	if err := json.Unmarshal(arguments, &input); err != nil {
		return nil, fmt.Errorf("decoding answer payload: %w", err)
	}

	if err := ts.validate.Struct(&input.Answer); err != nil {
		return nil, fmt.Errorf("answer payload failed validation: %w", err)
	}

	return &input.Answer, nil
}

// toolError wraps a message in the tagged error shape shared by all
// capability outputs.
func toolError(message string) string {
	payload, _ := json.Marshal(map[string]string{"error": message})
	return string(payload)
}
