package mcp

import (
	"context"
	"strings"
	"testing"
	"time"

	mcppkg "github.com/mark3labs/mcp-go/mcp"

	"github.com/pkrastins/factlog/internal/store"
)

func newMCPTestStore(t *testing.T) *store.Store {
	t.Helper()
	cfg := store.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Now = func() time.Time {
		return time.Date(2026, 3, 14, 14, 0, 0, 0, time.Local)
	}

	s, err := store.New(cfg)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func callResultText(t *testing.T, res *mcppkg.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatalf("expected non-empty tool result")
	}
	text, ok := mcppkg.AsTextContent(res.Content[0])
	if !ok {
		t.Fatalf("expected text content")
	}
	return text.Text
}

func callTool(t *testing.T, h func(context.Context, mcppkg.CallToolRequest) (*mcppkg.CallToolResult, error), args map[string]any) *mcppkg.CallToolResult {
	t.Helper()
	req := mcppkg.CallToolRequest{Params: mcppkg.CallToolParams{Arguments: args}}
	res, err := h(context.Background(), req)
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return res
}

func TestNewServerRegistersTools(t *testing.T) {
	s := newMCPTestStore(t)
	srv := NewServer(s)
	if srv == nil {
		t.Fatalf("expected MCP server instance")
	}
}

func TestHandleStartTracksActivity(t *testing.T) {
	s := newMCPTestStore(t)

	res := callTool(t, handleStart(s), map[string]any{
		"input": "coding@work, fixing the parser #go",
	})
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", callResultText(t, res))
	}

	text := callResultText(t, res)
	if !strings.Contains(text, "Now tracking") || !strings.Contains(text, "coding@work") {
		t.Fatalf("unexpected start output: %q", text)
	}

	open, err := s.OpenFact()
	if err != nil || open == nil {
		t.Fatalf("expected an open fact after start: %v %v", open, err)
	}
	if open.Activity != "coding" {
		t.Fatalf("expected coding tracked, got %q", open.Activity)
	}
}

func TestHandleStartRejectsEmptyActivity(t *testing.T) {
	s := newMCPTestStore(t)

	res := callTool(t, handleStart(s), map[string]any{"input": "   "})
	if !res.IsError {
		t.Fatalf("expected tool error for input with no activity")
	}
}

func TestHandleStopClosesOpenFact(t *testing.T) {
	s := newMCPTestStore(t)

	start := time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)
	if _, _, err := s.AddFact(store.AddFactParams{Input: "writing", Start: &start}); err != nil {
		t.Fatalf("seed fact: %v", err)
	}

	res := callTool(t, handleStop(s), nil)
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", callResultText(t, res))
	}
	if text := callResultText(t, res); !strings.Contains(text, `"writing"`) {
		t.Fatalf("unexpected stop output: %q", text)
	}

	open, err := s.OpenFact()
	if err != nil {
		t.Fatalf("open fact: %v", err)
	}
	if open != nil {
		t.Fatalf("expected nothing tracked after stop, got %+v", open)
	}

	res = callTool(t, handleStop(s), nil)
	if text := callResultText(t, res); !strings.Contains(text, "Nothing is being tracked") {
		t.Fatalf("expected idle message, got %q", text)
	}
}

func TestHandleRemoveUnknownFactErrors(t *testing.T) {
	s := newMCPTestStore(t)

	res := callTool(t, handleRemove(s), map[string]any{"id": float64(42)})
	if !res.IsError {
		t.Fatalf("expected tool error for unknown fact id")
	}
}

func TestHandleTodayListsTimeline(t *testing.T) {
	s := newMCPTestStore(t)

	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	end := time.Date(2026, 3, 14, 10, 30, 0, 0, time.Local)
	if _, _, err := s.AddFact(store.AddFactParams{Input: "review@work", Start: &start, End: &end}); err != nil {
		t.Fatalf("seed fact: %v", err)
	}

	res := callTool(t, handleToday(s), nil)
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", callResultText(t, res))
	}

	text := callResultText(t, res)
	if !strings.Contains(text, "review@work") || !strings.Contains(text, "1h 30min") {
		t.Fatalf("unexpected today output: %q", text)
	}
}

func TestHandleLogParsesDatesAndSearch(t *testing.T) {
	s := newMCPTestStore(t)

	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	end := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	if _, _, err := s.AddFact(store.AddFactParams{Input: "coding@work #go", Start: &start, End: &end}); err != nil {
		t.Fatalf("seed fact: %v", err)
	}

	res := callTool(t, handleLog(s), map[string]any{"date": "2026-03-14", "search": "go"})
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", callResultText(t, res))
	}
	if text := callResultText(t, res); !strings.Contains(text, "coding@work") {
		t.Fatalf("unexpected log output: %q", text)
	}

	res = callTool(t, handleLog(s), map[string]any{"date": "not-a-date"})
	if !res.IsError {
		t.Fatalf("expected tool error for malformed date")
	}
}

func TestHandleStatsReportsTotals(t *testing.T) {
	s := newMCPTestStore(t)

	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)
	end := time.Date(2026, 3, 14, 10, 0, 0, 0, time.Local)
	if _, _, err := s.AddFact(store.AddFactParams{Input: "coding@work #go", Start: &start, End: &end}); err != nil {
		t.Fatalf("seed fact: %v", err)
	}

	res := callTool(t, handleStats(s), nil)
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", callResultText(t, res))
	}
	text := callResultText(t, res)
	if !strings.Contains(text, "Facts: 1") || !strings.Contains(text, "Categories: 1") {
		t.Fatalf("unexpected stats output: %q", text)
	}
}
