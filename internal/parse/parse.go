// Package parse decomposes free-text fact input into structured fields.
//
// The grammar is the one users type into the tracker entry box:
//
//	[-]start[-end] activity[@category][, description] [#tag ...]
//
// where the leading time is either "HH:MM" (optionally "HH:MM-HH:MM") on
// today's date, or "-N" meaning "N minutes ago". Tags are "#word" tokens in
// the text after the time prefix; they are stripped out and deduplicated.
// Parsing is pure and total: anything unrecognized stays in the description,
// and a missing activity is reported as an empty Activity field, never as an
// error.
package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Fields is the best-effort structured view of one input string.
type Fields struct {
	Start       *time.Time
	End         *time.Time
	Activity    string
	Category    string
	Description string
	Tags        []string
}

var (
	relativeRe  = regexp.MustCompile(`^-(\d{1,3})(?:\s+|$)`)
	timeRangeRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?:-(\d{1,2}):(\d{2}))?(?:\s+|$)`)
	tagRe       = regexp.MustCompile(`#([\p{L}\d][\p{L}\d_-]*)`)
)

// Parse splits input into fields. now anchors relative and clock-only times;
// all produced times are truncated to the minute.
func Parse(input string, now time.Time) Fields {
	var f Fields
	rest := strings.TrimSpace(input)

	rest = parseTimePrefix(rest, now, &f)

	// Tags live in the trailing text. Pull them out before splitting off the
	// description so "#tag" never ends up inside activity or description.
	rest = tagRe.ReplaceAllStringFunc(rest, func(m string) string {
		name := strings.TrimPrefix(m, "#")
		for _, t := range f.Tags {
			if strings.EqualFold(t, name) {
				return ""
			}
		}
		f.Tags = append(f.Tags, name)
		return ""
	})

	head := rest
	if i := strings.Index(rest, ","); i >= 0 {
		head = rest[:i]
		f.Description = collapseSpaces(rest[i+1:])
	}

	if i := strings.Index(head, "@"); i >= 0 {
		f.Category = collapseSpaces(head[i+1:])
		head = head[:i]
	}
	f.Activity = collapseSpaces(head)

	return f
}

func parseTimePrefix(rest string, now time.Time, f *Fields) string {
	if m := relativeRe.FindStringSubmatch(rest); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		start := toMinute(now.Add(-time.Duration(minutes) * time.Minute))
		f.Start = &start
		return strings.TrimSpace(rest[len(m[0]):])
	}

	m := timeRangeRe.FindStringSubmatch(rest)
	if m == nil {
		return rest
	}
	start, ok := clockTime(m[1], m[2], now)
	if !ok {
		return rest
	}
	f.Start = &start
	if m[3] != "" {
		if end, ok := clockTime(m[3], m[4], now); ok {
			f.End = &end
		}
	}
	return strings.TrimSpace(rest[len(m[0]):])
}

// clockTime builds a time on now's date from "HH"/"MM" strings.
func clockTime(hh, mm string, now time.Time) (time.Time, bool) {
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	if h > 23 || m > 59 {
		return time.Time{}, false
	}
	return time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location()), true
}

func toMinute(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
