// Package mcp implements the Model Context Protocol server for factlog.
//
// This exposes time-tracking tools via MCP stdio transport so any agent
// (Claude Code, OpenCode, Cursor, etc.) can start, stop and query the
// tracker just by adding factlog as an MCP server.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pkrastins/factlog/internal/store"
)

// serverInstructions tells MCP clients when to reach for factlog's tools.
const serverInstructions = `Factlog tracks what the user spends time on. Use these tools to: start ` +
	`tracking an activity when the user begins something (fact_start); stop the ` +
	`running activity (fact_stop); review today's timeline (facts_today); search ` +
	`past days (facts_log); remove a mistaken entry (fact_remove). Activity input ` +
	`follows the form "activity@category, description #tag" with an optional ` +
	`leading time like "12:30" or "-20" for twenty minutes ago.`

func NewServer(s *store.Store) *server.MCPServer {
	srv := server.NewMCPServer(
		"factlog",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
	)

	registerTools(srv, s)
	return srv
}

func registerTools(srv *server.MCPServer, s *store.Store) {
	// ─── fact_start ─────────────────────────────────────────────────────
	srv.AddTool(
		mcp.NewTool("fact_start",
			mcp.WithDescription(`Start tracking an activity. The running activity, if any, is closed at the new one's start.

The input string carries everything: "coding@work, fixing the parser #go" tracks activity "coding" in category "work" with a description and a tag. A leading "12:30" sets the start time, "12:30-13:00" records a closed interval, and "-20" means it started twenty minutes ago. Re-starting the identical activity is a no-op.`),
			mcp.WithTitleAnnotation("Start Tracking"),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(false),
			mcp.WithString("input",
				mcp.Required(),
				mcp.Description(`Free-form fact: "[time] activity[@category][, description] [#tag ...]"`),
			),
			mcp.WithString("description",
				mcp.Description("Explicit description, overrides one parsed from input"),
			),
			mcp.WithString("category",
				mcp.Description("Explicit category, overrides one parsed from input"),
			),
		),
		handleStart(s),
	)

	// ─── fact_stop ──────────────────────────────────────────────────────
	srv.AddTool(
		mcp.NewTool("fact_stop",
			mcp.WithDescription("Stop the running activity. Closes the open fact at the current time; an entry shorter than a minute is discarded."),
			mcp.WithTitleAnnotation("Stop Tracking"),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(false),
		),
		handleStop(s),
	)

	// ─── fact_remove ────────────────────────────────────────────────────
	srv.AddTool(
		mcp.NewTool("fact_remove",
			mcp.WithDescription("Remove a tracked fact by id. Use facts_today or facts_log first to find the id."),
			mcp.WithDeferLoading(true),
			mcp.WithTitleAnnotation("Remove Fact"),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithDestructiveHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(false),
			mcp.WithOpenWorldHintAnnotation(false),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Fact id to remove"),
			),
		),
		handleRemove(s),
	)

	// ─── facts_today ────────────────────────────────────────────────────
	srv.AddTool(
		mcp.NewTool("facts_today",
			mcp.WithDescription("Show today's timeline: every fact of the current logical day with times, durations and the running activity."),
			mcp.WithTitleAnnotation("Today's Facts"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(false),
		),
		handleToday(s),
	)

	// ─── facts_log ──────────────────────────────────────────────────────
	srv.AddTool(
		mcp.NewTool("facts_log",
			mcp.WithDescription("List facts over a date range, optionally filtered. Search terms: comma separates alternatives, spaces require all words; words match activity, category or tag exactly and description by substring."),
			mcp.WithDeferLoading(true),
			mcp.WithTitleAnnotation("Fact Log"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(false),
			mcp.WithString("date",
				mcp.Description("Start date, YYYY-MM-DD (default: today)"),
			),
			mcp.WithString("end_date",
				mcp.Description("End date, YYYY-MM-DD (default: same as date)"),
			),
			mcp.WithString("search",
				mcp.Description(`Filter terms, e.g. "coding work" or "lunch, meeting"`),
			),
		),
		handleLog(s),
	)

	// ─── tracker_stats ──────────────────────────────────────────────────
	srv.AddTool(
		mcp.NewTool("tracker_stats",
			mcp.WithDescription("Show tracker statistics — total facts, activities, categories and tags, and when tracking began."),
			mcp.WithDeferLoading(true),
			mcp.WithTitleAnnotation("Tracker Stats"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(false),
		),
		handleStats(s),
	)
}

// ─── Tool Handlers ───────────────────────────────────────────────────────────

func handleStart(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input, _ := req.GetArguments()["input"].(string)
		description, _ := req.GetArguments()["description"].(string)
		category, _ := req.GetArguments()["category"].(string)

		id, _, err := s.AddFact(store.AddFactParams{
			Input:       input,
			Description: description,
			Category:    category,
		})
		if err != nil {
			return mcp.NewToolResultError("Failed to start tracking: " + err.Error()), nil
		}
		if id == 0 {
			return mcp.NewToolResultError(fmt.Sprintf("No activity recognized in %q", input)), nil
		}

		f, err := s.GetFact(id)
		if err != nil || f == nil {
			return mcp.NewToolResultText(fmt.Sprintf("Tracking started (fact #%d)", id)), nil
		}
		return mcp.NewToolResultText("Now tracking: " + formatFact(f)), nil
	}
}

func handleStop(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		open, err := s.OpenFact()
		if err != nil {
			return mcp.NewToolResultError("Failed to stop: " + err.Error()), nil
		}
		if open == nil {
			return mcp.NewToolResultText("Nothing is being tracked."), nil
		}

		if _, err := s.StopTracking(nil); err != nil {
			return mcp.NewToolResultError("Failed to stop: " + err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Stopped tracking %q.", open.Activity)), nil
	}
}

func handleRemove(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := int64(intArg(req, "id", 0))
		if id == 0 {
			return mcp.NewToolResultError("id is required"), nil
		}

		change, err := s.RemoveFact(id)
		if err != nil {
			return mcp.NewToolResultError("Failed to remove fact: " + err.Error()), nil
		}
		if change.Zero() {
			return mcp.NewToolResultError(fmt.Sprintf("Fact #%d not found", id)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Fact #%d removed", id)), nil
	}
}

func handleToday(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		facts, err := s.GetTodaysFacts()
		if err != nil {
			return mcp.NewToolResultError("Failed to load today's facts: " + err.Error()), nil
		}
		if len(facts) == 0 {
			return mcp.NewToolResultText("Nothing tracked today yet."), nil
		}

		var b strings.Builder
		var total time.Duration
		fmt.Fprintf(&b, "Today (%s):\n\n", s.Today().Format("2006-01-02"))
		for i := range facts {
			b.WriteString("  " + formatFact(&facts[i]) + "\n")
			total += facts[i].Delta
		}
		fmt.Fprintf(&b, "\nTotal: %s", formatDelta(total))

		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleLog(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date := s.Today()
		if v, _ := req.GetArguments()["date"].(string); v != "" {
			parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Bad date %q, expected YYYY-MM-DD", v)), nil
			}
			date = parsed
		}
		endDate := date
		if v, _ := req.GetArguments()["end_date"].(string); v != "" {
			parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Bad end_date %q, expected YYYY-MM-DD", v)), nil
			}
			endDate = parsed
		}
		search, _ := req.GetArguments()["search"].(string)

		facts, err := s.GetFacts(date, endDate, search)
		if err != nil {
			return mcp.NewToolResultError("Failed to load facts: " + err.Error()), nil
		}
		if len(facts) == 0 {
			return mcp.NewToolResultText("No facts matched."), nil
		}

		var b strings.Builder
		var day time.Time
		var total time.Duration
		for i := range facts {
			if !facts[i].Date.Equal(day) {
				day = facts[i].Date
				fmt.Fprintf(&b, "%s:\n", day.Format("2006-01-02"))
			}
			b.WriteString("  " + formatFact(&facts[i]) + "\n")
			total += facts[i].Delta
		}
		fmt.Fprintf(&b, "\n%d facts, %s total", len(facts), formatDelta(total))

		return mcp.NewToolResultText(b.String()), nil
	}
}

func handleStats(s *store.Store) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := s.Stats()
		if err != nil {
			return mcp.NewToolResultError("Failed to get stats: " + err.Error()), nil
		}

		first := "never"
		if stats.FirstFact != "" {
			first = stats.FirstFact
		}
		result := fmt.Sprintf("Tracker Stats:\n- Facts: %d\n- Activities: %d\n- Categories: %d\n- Tags: %d\n- Tracking since: %s",
			stats.TotalFacts, stats.TotalActivities, stats.TotalCategories, stats.TotalTags, first)

		return mcp.NewToolResultText(result), nil
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func formatFact(f *store.Fact) string {
	var b strings.Builder

	fmt.Fprintf(&b, "#%d %s", f.ID, f.Start.Format("15:04"))
	if f.End != nil {
		b.WriteString("-" + f.End.Format("15:04"))
	} else {
		b.WriteString("-now")
	}

	fmt.Fprintf(&b, " %s", f.Activity)
	if f.CategoryID != store.UnsortedID {
		b.WriteString("@" + f.Category)
	}
	if f.Description != "" {
		b.WriteString(", " + f.Description)
	}
	for _, tag := range f.Tags {
		b.WriteString(" #" + tag)
	}
	if f.Delta > 0 {
		fmt.Fprintf(&b, " (%s)", formatDelta(f.Delta))
	}
	return b.String()
}

func formatDelta(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dmin", minutes)
	}
	return fmt.Sprintf("%dh %dmin", minutes/60, minutes%60)
}

func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
