// Factlog — Personal time tracking from the command line.
//
// Usage:
//
//	factlog start <fact>   Start tracking an activity
//	factlog stop           Stop tracking
//	factlog today          Show today's timeline
//	factlog log            Browse past days
//	factlog stats          Show tracker statistics
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkrastins/factlog/internal/config"
	"github.com/pkrastins/factlog/internal/mcp"
	"github.com/pkrastins/factlog/internal/store"
	"github.com/pkrastins/factlog/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	appCfg, err := config.Load()
	if err != nil {
		fatal(err)
	}

	cfg := store.DefaultConfig()
	cfg.DataDir = appCfg.DataDir
	cfg.DayStart = appCfg.DayStart()

	switch os.Args[1] {
	case "start":
		cmdStart(cfg)
	case "stop":
		cmdStop(cfg)
	case "today":
		cmdToday(cfg)
	case "log":
		cmdLog(cfg)
	case "remove":
		cmdRemove(cfg)
	case "activities":
		cmdActivities(cfg)
	case "categories":
		cmdCategories(cfg)
	case "tags":
		cmdTags(cfg)
	case "stats":
		cmdStats(cfg)
	case "export":
		cmdExport(cfg)
	case "import":
		cmdImport(cfg)
	case "mcp":
		cmdMCP(cfg)
	case "tui":
		cmdTUI(cfg)
	case "version", "--version", "-v":
		fmt.Printf("factlog %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// ─── Commands ────────────────────────────────────────────────────────────────

func cmdStart(cfg store.Config) {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, `usage: factlog start "<activity>[@category][, description] [#tag ...]"`)
		os.Exit(1)
	}

	input := strings.Join(os.Args[2:], " ")

	s, err := store.New(cfg)
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	id, _, err := s.AddFact(store.AddFactParams{Input: input})
	if err != nil {
		fatal(err)
	}
	if id == 0 {
		fmt.Println("Nothing to track.")
		return
	}

	fact, err := s.GetFact(id)
	if err != nil {
		fatal(err)
	}
	if fact.Open() {
		fmt.Printf("Now tracking %s (since %s)\n", factLabel(fact), fact.Start.Format("15:04"))
	} else {
		fmt.Printf("Recorded %s, %s - %s\n", factLabel(fact),
			fact.Start.Format("15:04"), fact.End.Format("15:04"))
	}
}

func cmdStop(cfg store.Config) {
	s, err := store.New(cfg)
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	open, err := s.OpenFact()
	if err != nil {
		fatal(err)
	}
	if open == nil {
		fmt.Println("Nothing is being tracked.")
		return
	}

	// Optional end time: factlog stop 17:30
	var end *time.Time
	if len(os.Args) > 2 {
		clock, err := time.ParseInLocation("15:04", os.Args[2], time.Local)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid time %q, want HH:MM\n", os.Args[2])
			os.Exit(1)
		}
		now := time.Now()
		at := time.Date(now.Year(), now.Month(), now.Day(),
			clock.Hour(), clock.Minute(), 0, 0, time.Local)
		end = &at
	}

	if _, err := s.StopTracking(end); err != nil {
		fatal(err)
	}
	fmt.Printf("Stopped tracking %s\n", factLabel(open))
}

func cmdToday(cfg store.Config) {
	s, err := store.New(cfg)
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	facts, err := s.GetTodaysFacts()
	if err != nil {
		fatal(err)
	}

	printFactList(s.Today().Format("Mon 2 Jan"), facts)
}

func cmdLog(cfg store.Config) {
	s, err := store.New(cfg)
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	date := s.Today()
	endDate := time.Time{}
	search := ""

	var dates []string
	for i := 2; i < len(os.Args); i++ {
		switch os.Args[i] {
		case "--search":
			if i+1 < len(os.Args) {
				search = os.Args[i+1]
				i++
			}
		default:
			dates = append(dates, os.Args[i])
		}
	}

	if len(dates) > 0 {
		date, err = time.ParseInLocation("2006-01-02", dates[0], time.Local)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid date %q, want YYYY-MM-DD\n", dates[0])
			os.Exit(1)
		}
	}
	if len(dates) > 1 {
		endDate, err = time.ParseInLocation("2006-01-02", dates[1], time.Local)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid date %q, want YYYY-MM-DD\n", dates[1])
			os.Exit(1)
		}
	}
	if endDate.IsZero() {
		endDate = date
	}

	facts, err := s.GetFacts(date, endDate, search)
	if err != nil {
		fatal(err)
	}

	label := date.Format("Mon 2 Jan 2006")
	if !endDate.Equal(date) {
		label += " - " + endDate.Format("Mon 2 Jan 2006")
	}
	if search != "" {
		label += fmt.Sprintf(" matching %q", search)
	}
	printFactList(label, facts)
}

func cmdRemove(cfg store.Config) {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: factlog remove <fact_id>")
		os.Exit(1)
	}

	id, err := strconv.ParseInt(os.Args[2], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid fact id %q\n", os.Args[2])
		os.Exit(1)
	}

	s, err := store.New(cfg)
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	change, err := s.RemoveFact(id)
	if err != nil {
		fatal(err)
	}
	if !change.Facts {
		fmt.Printf("No fact #%d found.\n", id)
		return
	}
	fmt.Printf("Removed fact #%d\n", id)
}

func cmdActivities(cfg store.Config) {
	s, err := store.New(cfg)
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	var categoryID int64
	if len(os.Args) > 2 {
		id, ok, err := s.CategoryByName(os.Args[2])
		if err != nil {
			fatal(err)
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "error: unknown category %q\n", os.Args[2])
			os.Exit(1)
		}
		categoryID = id
	}

	activities, err := s.Activities(categoryID)
	if err != nil {
		fatal(err)
	}

	if len(activities) == 0 {
		fmt.Println("No activities yet.")
		return
	}
	for _, a := range activities {
		fmt.Printf("  %s@%s\n", a.Name, a.Category)
	}
}

func cmdCategories(cfg store.Config) {
	s, err := store.New(cfg)
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	categories, err := s.Categories()
	if err != nil {
		fatal(err)
	}

	if len(categories) == 0 {
		fmt.Println("No categories yet.")
		return
	}
	for _, c := range categories {
		fmt.Printf("  %s\n", c.Name)
	}
}

func cmdTags(cfg store.Config) {
	s, err := store.New(cfg)
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	tags, err := s.Tags(false)
	if err != nil {
		fatal(err)
	}

	if len(tags) == 0 {
		fmt.Println("No tags yet.")
		return
	}
	for _, t := range tags {
		fmt.Printf("  #%s\n", t.Name)
	}
}

func cmdStats(cfg store.Config) {
	s, err := store.New(cfg)
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	stats, err := s.Stats()
	if err != nil {
		fatal(err)
	}

	first := "none yet"
	if stats.FirstFact != "" {
		first = stats.FirstFact
	}

	fmt.Printf("Factlog Stats\n")
	fmt.Printf("  Facts:      %d\n", stats.TotalFacts)
	fmt.Printf("  Activities: %d\n", stats.TotalActivities)
	fmt.Printf("  Categories: %d\n", stats.TotalCategories)
	fmt.Printf("  Tags:       %d\n", stats.TotalTags)
	fmt.Printf("  First fact: %s\n", first)
	fmt.Printf("  Database:   %s/factlog.db\n", cfg.DataDir)
}

func cmdExport(cfg store.Config) {
	outFile := "factlog-export.json"
	if len(os.Args) > 2 {
		outFile = os.Args[2]
	}

	s, err := store.New(cfg)
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	data, err := s.Export()
	if err != nil {
		fatal(err)
	}

	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fatal(err)
	}

	if err := os.WriteFile(outFile, out, 0644); err != nil {
		fatal(err)
	}

	fmt.Printf("Exported to %s\n", outFile)
	fmt.Printf("  Facts:      %d\n", len(data.Facts))
	fmt.Printf("  Categories: %d\n", len(data.Categories))
	fmt.Printf("  Tags:       %d\n", len(data.Tags))
}

func cmdImport(cfg store.Config) {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: factlog import <file.json>")
		os.Exit(1)
	}

	inFile := os.Args[2]
	raw, err := os.ReadFile(inFile)
	if err != nil {
		fatal(fmt.Errorf("read %s: %w", inFile, err))
	}

	var data store.ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		fatal(fmt.Errorf("parse %s: %w", inFile, err))
	}

	s, err := store.New(cfg)
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	result, err := s.Import(&data)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Imported from %s\n", inFile)
	fmt.Printf("  Facts:      %d\n", result.FactsImported)
	fmt.Printf("  Categories: %d\n", result.CategoriesImported)
	fmt.Printf("  Tags:       %d\n", result.TagsImported)
}

func cmdMCP(cfg store.Config) {
	s, err := store.New(cfg)
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	mcpSrv := mcp.NewServer(s)
	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		fatal(err)
	}
}

func cmdTUI(cfg store.Config) {
	s, err := store.New(cfg)
	if err != nil {
		fatal(err)
	}
	defer s.Close()

	model := tui.New(s, version)
	p := tea.NewProgram(model)
	if _, err := p.Run(); err != nil {
		fatal(err)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func printFactList(label string, facts []store.Fact) {
	if len(facts) == 0 {
		fmt.Printf("%s: no facts recorded.\n", label)
		return
	}

	var total time.Duration
	fmt.Printf("%s\n\n", label)
	for i := range facts {
		f := &facts[i]
		total += f.Delta

		span := f.Start.Format("15:04") + " - "
		if f.End != nil {
			span += f.End.Format("15:04")
		} else {
			span += "....."
		}

		line := fmt.Sprintf("  #%-4d %s  %s", f.ID, span, factLabel(f))
		if f.Description != "" {
			line += ", " + f.Description
		}
		if len(f.Tags) > 0 {
			line += "  #" + strings.Join(f.Tags, " #")
		}
		fmt.Printf("%s  (%s)\n", line, formatDuration(f.Delta))
	}
	fmt.Printf("\nTotal: %s\n", formatDuration(total))
}

func factLabel(f *store.Fact) string {
	if f.Category == store.UnsortedName {
		return f.Activity
	}
	return f.Activity + "@" + f.Category
}

func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dmin", minutes)
	}
	return fmt.Sprintf("%dh %dmin", minutes/60, minutes%60)
}

func printUsage() {
	fmt.Printf(`factlog v%s — Personal time tracking from the command line

Usage:
  factlog <command> [arguments]

Commands:
  start <fact>       Start tracking: "activity@category, description #tag"
                     Times work too: "12:30-13:00 lunch" or "-20 reading"
  stop               Stop tracking the current activity
  today              Show today's timeline
  log [date] [end]   Show facts for a day or range (YYYY-MM-DD) [--search TERMS]
  remove <id>        Remove a fact
  activities [cat]   List activities, optionally scoped to a category
  categories         List categories
  tags               List tags
  stats              Show tracker statistics
  export [file]      Export everything to JSON (default: factlog-export.json)
  import <file>      Import facts from a JSON export file
  mcp                Start MCP server (stdio transport, for any AI agent)
  tui                Launch interactive terminal UI
  version            Print version
  help               Show this help

Environment:
  FACTLOG_DATA_DIR   Override data directory (default: ~/.factlog)
  FACTLOG_DAY_START  Day-start offset, minutes past midnight or "HH:MM" (default: 05:30)

MCP Configuration (add to your agent's config):
  {
    "mcp": {
      "factlog": {
        "type": "stdio",
        "command": "factlog",
        "args": ["mcp"]
      }
    }
  }
`, version)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "factlog: %s\n", err)
	os.Exit(1)
}
