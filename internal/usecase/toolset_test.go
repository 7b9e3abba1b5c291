package usecase

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sparradar/backend/internal/domain"
)

func newTestToolSet() *ToolSet {
	index := NewCatalogIndex()
	index.Load(testCatalog())
	return NewToolSet(index, NewEvaluator())
}

func TestToolSet_Definitions(t *testing.T) {
	ts := newTestToolSet()
	defs := ts.Definitions()

	if len(defs) != 3 {
		t.Fatalf("Definitions() = %d tools, want 3", len(defs))
	}

	names := map[string]bool{}
	for _, def := range defs {
		if def.Type != "function" {
			t.Errorf("tool %s type = %q, want function", def.Function.Name, def.Type)
		}
		names[def.Function.Name] = true
	}
	for _, want := range []string{ToolSearchProducts, ToolCalculate, ToolAnswer} {
		if !names[want] {
			t.Errorf("missing tool definition %q", want)
		}
	}
}

func TestToolSet_ExecuteSearch(t *testing.T) {
	ts := newTestToolSet()

	t.Run("returns hits keyed by query", func(t *testing.T) {
		out := ts.Execute(domain.ToolCall{
			Name:      ToolSearchProducts,
			Arguments: json.RawMessage(`{"query": ["Milch", "Brot"]}`),
		})

		var results map[string][]domain.SearchHit
		if err := json.Unmarshal([]byte(out), &results); err != nil {
			t.Fatalf("output is not a result map: %v\n%s", err, out)
		}
		if len(results) != 2 {
			t.Fatalf("results = %d keys, want 2", len(results))
		}
		if len(results["Milch"]) == 0 || results["Milch"][0].ProductID != "PROD_MILCH" {
			t.Errorf("Milch hits = %+v, want PROD_MILCH first", results["Milch"])
		}
	})

	t.Run("empty query list is an error payload", func(t *testing.T) {
		out := ts.Execute(domain.ToolCall{
			Name:      ToolSearchProducts,
			Arguments: json.RawMessage(`{"query": []}`),
		})
		if !strings.Contains(out, "error") {
			t.Errorf("output = %s, want error payload", out)
		}
	})

	t.Run("malformed arguments are an error payload", func(t *testing.T) {
		out := ts.Execute(domain.ToolCall{
			Name:      ToolSearchProducts,
			Arguments: json.RawMessage(`{"query": "Milch"}`),
		})
		if !strings.Contains(out, "error") {
			t.Errorf("output = %s, want error payload", out)
		}
	})
}

func TestToolSet_ExecuteCalculate(t *testing.T) {
	ts := newTestToolSet()

	t.Run("successful calculation", func(t *testing.T) {
		out := ts.Execute(domain.ToolCall{
			Name:      ToolCalculate,
			Arguments: json.RawMessage(`{"expression": "6*89 + 199"}`),
		})

		var result domain.EvalResult
		if err := json.Unmarshal([]byte(out), &result); err != nil {
			t.Fatalf("output is not an EvalResult: %v", err)
		}
		if result.Result == nil || *result.Result != 733 {
			t.Errorf("result = %v, want 733", result.Result)
		}
	})

	t.Run("evaluation failure stays a tagged error", func(t *testing.T) {
		out := ts.Execute(domain.ToolCall{
			Name:      ToolCalculate,
			Arguments: json.RawMessage(`{"expression": "2 *"}`),
		})

		var result domain.EvalResult
		if err := json.Unmarshal([]byte(out), &result); err != nil {
			t.Fatalf("output is not an EvalResult: %v", err)
		}
		if result.Error == "" {
			t.Error("Error is empty, want tagged error")
		}
	})
}

func TestToolSet_ExecuteUnknownTool(t *testing.T) {
	ts := newTestToolSet()
	out := ts.Execute(domain.ToolCall{Name: "deleteEverything"})
	if !strings.Contains(out, "unknown tool") {
		t.Errorf("output = %s, want unknown tool error", out)
	}
}

func TestToolSet_ParseAnswer(t *testing.T) {
	ts := newTestToolSet()

	t.Run("accepts a valid claim", func(t *testing.T) {
		claim, err := ts.ParseAnswer(json.RawMessage(`{
			"answer": {
				"items": [
					{"name": "Bier", "amount": 6, "productId": "PROD_BIER"},
					{"name": "Brot", "amount": 1, "productId": null}
				],
				"totalPrice": 733
			}
		}`))
		if err != nil {
			t.Fatalf("ParseAnswer() error = %v", err)
		}
		if len(claim.Items) != 2 {
			t.Fatalf("items = %d, want 2", len(claim.Items))
		}
		if claim.Items[0].ProductID == nil || *claim.Items[0].ProductID != "PROD_BIER" {
			t.Errorf("productId = %v, want PROD_BIER", claim.Items[0].ProductID)
		}
		if claim.Items[1].ProductID != nil {
			t.Errorf("productId = %v, want nil", claim.Items[1].ProductID)
		}
		if claim.TotalPrice != 733 {
			t.Errorf("totalPrice = %v, want 733", claim.TotalPrice)
		}
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := ts.ParseAnswer(json.RawMessage(`{
			"answer": {"items": [{"name": "", "amount": 1}], "totalPrice": 0}
		}`))
		if err == nil {
			t.Error("ParseAnswer() accepted empty name")
		}
	})

	t.Run("rejects amount below 1", func(t *testing.T) {
		_, err := ts.ParseAnswer(json.RawMessage(`{
			"answer": {"items": [{"name": "Brot", "amount": 0}], "totalPrice": 0}
		}`))
		if err == nil {
			t.Error("ParseAnswer() accepted amount 0")
		}
	})

	t.Run("rejects negative total", func(t *testing.T) {
		_, err := ts.ParseAnswer(json.RawMessage(`{
			"answer": {"items": [{"name": "Brot", "amount": 1}], "totalPrice": -5}
		}`))
		if err == nil {
			t.Error("ParseAnswer() accepted negative totalPrice")
		}
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		_, err := ts.ParseAnswer(json.RawMessage(`{"answer": "nope"}`))
		if err == nil {
			t.Error("ParseAnswer() accepted non-object answer")
		}
	})
}
