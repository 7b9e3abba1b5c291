package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sparradar/backend/internal/domain"
)

// defaultMaxSteps bounds the number of model decision steps per run.
// This is the only cancellation mechanism inside a run; it caps
// worst-case latency and cost against a model that loops indefinitely.
const defaultMaxSteps = 5

// systemPrompt is the fixed instruction given to the model for every
// resolution run.
const systemPrompt = `For the following loose shopping list, put the items in a structured format.
You have access to the searchProducts tool. Use it to search for products in the dataset and include an article number to the structured output.
You give the answer using the answer tool. Include the parsed products alongside the found productId's for the product (or null if not found).
Then add the total price to the answer's tool input, the field totalPrice must be calculated keeping in mind also the amount of the product, and look at the field grammage to determine a logical way to calculate the price.
For calculations you have access to the calculate tool. The total price should be returned in cents.

Rules:
- If no amount was specified, default to 1
- If a quantity is mentioned (e.g., "Six-Pack of beer"), extract the actual amount (6)
- Keep the original names and language (e.g., if German, keep German)`

// ResolverConfig holds configuration for the resolution loop
type ResolverConfig struct {
	MaxSteps int
}

// Resolver drives the bounded tool-calling conversation that turns
// free-text shopping-list lines into a StructuredClaim. The model must
// call a capability on every step until it submits via the answer
// tool; the run ends Answered, Exhausted or Failed.
type Resolver struct {
	model    domain.ChatModel
	tools    *ToolSet
	maxSteps int
}

// NewResolver creates a resolution loop over the given model and capability set
func NewResolver(model domain.ChatModel, tools *ToolSet, config ResolverConfig) *Resolver {
	maxSteps := config.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	return &Resolver{
		model:    model,
		tools:    tools,
		maxSteps: maxSteps,
	}
}

// Resolve runs one resolution over the raw lines. It returns the
// model's validated claim, ErrResolutionExhausted when the step budget
// elapses without an answer, or ErrResolutionFailed on transport
// errors. Capability failures stay inside the loop: they are fed back
// to the model as tagged error results so it can retry with corrected
// input.
func (r *Resolver) Resolve(ctx context.Context, lines []string) (*domain.StructuredClaim, error) {
	if len(lines) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	runID := uuid.NewString()[:8]
	log.Printf("[RESOLVE][%s] Starting run with %d lines", runID, len(lines))

	messages := []domain.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: strings.Join(lines, ", ")},
	}
	definitions := r.tools.Definitions()

	for step := 1; step <= r.maxSteps; step++ {
		result, err := r.model.ChatWithTools(ctx, messages, definitions)
		if err != nil {
			log.Printf("[RESOLVE][%s] Model call failed at step %d: %v", runID, step, err)
			return nil, fmt.Errorf("%w: %v", domain.ErrResolutionFailed, err)
		}

		if len(result.ToolCalls) == 0 {
			// Tool use is forced; a bare text reply still burns the step.
			log.Printf("[RESOLVE][%s] Step %d returned no tool calls", runID, step)
			messages = append(messages,
				domain.ChatMessage{Role: "assistant", Content: result.Content},
				domain.ChatMessage{Role: "user", Content: "Use the provided tools. Submit the final result with the answer tool."},
			)
			continue
		}

		claim, answerErr := r.extractAnswer(result.ToolCalls)
		if claim != nil {
			log.Printf("[RESOLVE][%s] Answered at step %d with %d items, total %.0f",
				runID, step, len(claim.Items), claim.TotalPrice)
			return claim, nil
		}

		messages = append(messages, domain.ChatMessage{
			Role:      "assistant",
			Content:   result.Content,
			ToolCalls: result.ToolCalls,
		})
		messages = append(messages, r.executeStep(runID, step, result.ToolCalls, answerErr)...)
	}

	log.Printf("[RESOLVE][%s] Exhausted after %d steps", runID, r.maxSteps)
	return nil, domain.ErrResolutionExhausted
}

// extractAnswer returns the validated claim of the first schema-valid
// answer call in the step, or the validation error of a rejected one.
func (r *Resolver) extractAnswer(calls []domain.ToolCall) (*domain.StructuredClaim, error) {
	var lastErr error
	for _, call := range calls {
		if call.Name != ToolAnswer {
			continue
		}
		claim, err := r.tools.ParseAnswer(call.Arguments)
		if err != nil {
			lastErr = err
			continue
		}
		return claim, nil
	}
	return nil, lastErr
}

// executeStep runs all non-terminal tool calls of one decision step
// concurrently and returns their result messages in call order. The
// model sees the complete joint view of the step's outputs before the
// next step begins. Rejected answer payloads are answered with their
// validation error so the model can correct and resubmit.
func (r *Resolver) executeStep(runID string, step int, calls []domain.ToolCall, answerErr error) []domain.ChatMessage {
	outputs := make([]string, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		if call.Name == ToolAnswer {
			outputs[i] = toolError(fmt.Sprintf("answer rejected: %v", answerErr))
			continue
		}
		wg.Add(1)
		go func(i int, call domain.ToolCall) {
			defer wg.Done()
			outputs[i] = r.tools.Execute(call)
		}(i, call)
	}
	wg.Wait()

	results := make([]domain.ChatMessage, 0, len(calls))
	for i, call := range calls {
		results = append(results, domain.ChatMessage{
			Role:       "tool",
			Content:    outputs[i],
			ToolCallID: call.ID,
			ToolName:   call.Name,
		})
	}

	log.Printf("[RESOLVE][%s] Step %d executed %d tool calls", runID, step, len(calls))
	return results
}
