package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sparradar/backend/internal/domain"
)

// scriptedModel replays a fixed sequence of chat results. Each call to
// ChatWithTools pops the next entry and records the messages it saw.
type scriptedModel struct {
	steps    []scriptedStep
	calls    int
	received [][]domain.ChatMessage
}

type scriptedStep struct {
	result *domain.ChatResult
	err    error
}

func (m *scriptedModel) ChatWithTools(ctx context.Context, messages []domain.ChatMessage, tools []domain.ToolDef) (*domain.ChatResult, error) {
	snapshot := make([]domain.ChatMessage, len(messages))
	copy(snapshot, messages)
	m.received = append(m.received, snapshot)

	if m.calls >= len(m.steps) {
		return nil, errors.New("scripted model ran out of steps")
	}
	step := m.steps[m.calls]
	m.calls++
	return step.result, step.err
}

func answerCall(id, payload string) domain.ToolCall {
	return domain.ToolCall{ID: id, Name: ToolAnswer, Arguments: json.RawMessage(payload)}
}

func newTestResolver(model domain.ChatModel) *Resolver {
	return NewResolver(model, newTestToolSet(), ResolverConfig{})
}

func TestResolver_Resolve(t *testing.T) {
	t.Run("rejects empty input", func(t *testing.T) {
		model := &scriptedModel{}
		resolver := newTestResolver(model)

		_, err := resolver.Resolve(context.Background(), nil)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("Resolve(nil) error = %v, want ErrInvalidRequest", err)
		}
		if model.calls != 0 {
			t.Errorf("model was called %d times for empty input", model.calls)
		}
	})

	t.Run("answers after a search step", func(t *testing.T) {
		model := &scriptedModel{steps: []scriptedStep{
			{result: &domain.ChatResult{ToolCalls: []domain.ToolCall{
				{ID: "call_1", Name: ToolSearchProducts, Arguments: json.RawMessage(`{"query": ["Bier", "Brot"]}`)},
			}}},
			{result: &domain.ChatResult{ToolCalls: []domain.ToolCall{
				answerCall("call_2", `{"answer": {"items": [
					{"name": "Bier", "amount": 6, "productId": "PROD_BIER"},
					{"name": "Brot", "amount": 1, "productId": "PROD_BROT"}
				], "totalPrice": 733}}`),
			}}},
		}}
		resolver := newTestResolver(model)

		claim, err := resolver.Resolve(context.Background(), []string{"Six-Pack Bier", "Brot"})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if len(claim.Items) != 2 || claim.TotalPrice != 733 {
			t.Errorf("claim = %+v, want 2 items with total 733", claim)
		}

		// The second model call must include the tool result for call_1.
		second := model.received[1]
		var sawToolResult bool
		for _, msg := range second {
			if msg.Role == "tool" && msg.ToolCallID == "call_1" {
				sawToolResult = true
				if !strings.Contains(msg.Content, "PROD_BIER") {
					t.Errorf("tool result does not carry search hits: %s", msg.Content)
				}
			}
		}
		if !sawToolResult {
			t.Error("second model call missing the tool result message")
		}
	})

	t.Run("joins the user lines with commas", func(t *testing.T) {
		model := &scriptedModel{steps: []scriptedStep{
			{result: &domain.ChatResult{ToolCalls: []domain.ToolCall{
				answerCall("call_1", `{"answer": {"items": [{"name": "Milch", "amount": 1}], "totalPrice": 0}}`),
			}}},
		}}
		resolver := newTestResolver(model)

		if _, err := resolver.Resolve(context.Background(), []string{"Milch", "2x Brot"}); err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		first := model.received[0]
		if len(first) != 2 || first[1].Role != "user" || first[1].Content != "Milch, 2x Brot" {
			t.Errorf("initial messages = %+v, want system + joined user line", first)
		}
	})

	t.Run("exhausts the step budget", func(t *testing.T) {
		searchStep := scriptedStep{result: &domain.ChatResult{ToolCalls: []domain.ToolCall{
			{ID: "c", Name: ToolSearchProducts, Arguments: json.RawMessage(`{"query": ["Milch"]}`)},
		}}}
		model := &scriptedModel{steps: []scriptedStep{searchStep, searchStep, searchStep, searchStep, searchStep, searchStep}}
		resolver := newTestResolver(model)

		_, err := resolver.Resolve(context.Background(), []string{"Milch"})
		if !errors.Is(err, domain.ErrResolutionExhausted) {
			t.Errorf("Resolve() error = %v, want ErrResolutionExhausted", err)
		}
		if model.calls != defaultMaxSteps {
			t.Errorf("model called %d times, want %d", model.calls, defaultMaxSteps)
		}
	})

	t.Run("wraps transport failures", func(t *testing.T) {
		model := &scriptedModel{steps: []scriptedStep{
			{err: errors.New("connection refused")},
		}}
		resolver := newTestResolver(model)

		_, err := resolver.Resolve(context.Background(), []string{"Milch"})
		if !errors.Is(err, domain.ErrResolutionFailed) {
			t.Errorf("Resolve() error = %v, want ErrResolutionFailed", err)
		}
	})

	t.Run("feeds a rejected answer back to the model", func(t *testing.T) {
		model := &scriptedModel{steps: []scriptedStep{
			{result: &domain.ChatResult{ToolCalls: []domain.ToolCall{
				answerCall("call_1", `{"answer": {"items": [{"name": "", "amount": 1}], "totalPrice": 0}}`),
			}}},
			{result: &domain.ChatResult{ToolCalls: []domain.ToolCall{
				answerCall("call_2", `{"answer": {"items": [{"name": "Milch", "amount": 1}], "totalPrice": 129}}`),
			}}},
		}}
		resolver := newTestResolver(model)

		claim, err := resolver.Resolve(context.Background(), []string{"Milch"})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if claim.TotalPrice != 129 {
			t.Errorf("totalPrice = %v, want the corrected 129", claim.TotalPrice)
		}

		second := model.received[1]
		var sawRejection bool
		for _, msg := range second {
			if msg.Role == "tool" && msg.ToolCallID == "call_1" && strings.Contains(msg.Content, "answer rejected") {
				sawRejection = true
			}
		}
		if !sawRejection {
			t.Error("rejected answer was not fed back as a tool error")
		}
	})

	t.Run("nudges after a bare text reply", func(t *testing.T) {
		model := &scriptedModel{steps: []scriptedStep{
			{result: &domain.ChatResult{Content: "Let me think about that."}},
			{result: &domain.ChatResult{ToolCalls: []domain.ToolCall{
				answerCall("call_1", `{"answer": {"items": [{"name": "Milch", "amount": 1}], "totalPrice": 129}}`),
			}}},
		}}
		resolver := newTestResolver(model)

		if _, err := resolver.Resolve(context.Background(), []string{"Milch"}); err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		second := model.received[1]
		last := second[len(second)-1]
		if last.Role != "user" || !strings.Contains(last.Content, "answer tool") {
			t.Errorf("nudge message = %+v, want a user reminder to use the tools", last)
		}
	})

	t.Run("executes joint tool calls of one step", func(t *testing.T) {
		model := &scriptedModel{steps: []scriptedStep{
			{result: &domain.ChatResult{ToolCalls: []domain.ToolCall{
				{ID: "c1", Name: ToolSearchProducts, Arguments: json.RawMessage(`{"query": ["Bier"]}`)},
				{ID: "c2", Name: ToolCalculate, Arguments: json.RawMessage(`{"expression": "6*89"}`)},
			}}},
			{result: &domain.ChatResult{ToolCalls: []domain.ToolCall{
				answerCall("c3", `{"answer": {"items": [{"name": "Bier", "amount": 6, "productId": "PROD_BIER"}], "totalPrice": 534}}`),
			}}},
		}}
		resolver := newTestResolver(model)

		if _, err := resolver.Resolve(context.Background(), []string{"Six-Pack Bier"}); err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}

		second := model.received[1]
		results := map[string]string{}
		for _, msg := range second {
			if msg.Role == "tool" {
				results[msg.ToolCallID] = msg.Content
			}
		}
		if !strings.Contains(results["c1"], "PROD_BIER") {
			t.Errorf("search result = %s, want PROD_BIER hit", results["c1"])
		}
		if !strings.Contains(results["c2"], "534") {
			t.Errorf("calculate result = %s, want 534", results["c2"])
		}
	})
}
