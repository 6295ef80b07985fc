package parse

import (
	"reflect"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 14, 13, 37, 42, 0, time.Local)

func at(h, m int) *time.Time {
	t := time.Date(2026, 3, 14, h, m, 0, 0, time.Local)
	return &t
}

func TestParseGrammar(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  Fields
	}{
		{
			name:  "bare activity",
			input: "reading",
			want:  Fields{Activity: "reading"},
		},
		{
			name:  "activity with category",
			input: "reading@leisure",
			want:  Fields{Activity: "reading", Category: "leisure"},
		},
		{
			name:  "full form",
			input: "12:30-13:00 lunch@food, with the team #office #expensed",
			want: Fields{
				Start:       at(12, 30),
				End:         at(13, 0),
				Activity:    "lunch",
				Category:    "food",
				Description: "with the team",
				Tags:        []string{"office", "expensed"},
			},
		},
		{
			name:  "start only",
			input: "9:00 standup@work",
			want:  Fields{Start: at(9, 0), Activity: "standup", Category: "work"},
		},
		{
			name:  "relative start",
			input: "-30 coffee break",
			want:  Fields{Start: at(13, 7), Activity: "coffee break"},
		},
		{
			name:  "tags without description",
			input: "deploy #prod #urgent",
			want:  Fields{Activity: "deploy", Tags: []string{"prod", "urgent"}},
		},
		{
			name:  "duplicate tags collapse",
			input: "fix, again #bug #Bug",
			want:  Fields{Activity: "fix", Description: "again", Tags: []string{"bug"}},
		},
		{
			name:  "description keeps unrecognized text",
			input: "call, about the Q3 !!! report",
			want:  Fields{Activity: "call", Description: "about the Q3 !!! report"},
		},
		{
			name:  "empty input",
			input: "   ",
			want:  Fields{},
		},
		{
			name:  "time only is not an activity",
			input: "12:30",
			want:  Fields{Start: at(12, 30)},
		},
		{
			name:  "invalid clock stays in activity",
			input: "25:99 meeting",
			want:  Fields{Activity: "25:99 meeting"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Parse(tc.input, testNow)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Parse(%q):\n got %+v\nwant %+v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseTruncatesToMinute(t *testing.T) {
	got := Parse("-0 tea", testNow)
	if got.Start == nil {
		t.Fatalf("expected a start time")
	}
	if got.Start.Second() != 0 || got.Start.Nanosecond() != 0 {
		t.Fatalf("expected minute granularity, got %v", got.Start)
	}
	if got.Start.Minute() != 37 || got.Start.Hour() != 13 {
		t.Fatalf("expected 13:37, got %v", got.Start)
	}
}

func TestParseIsPureOverRepeatedCalls(t *testing.T) {
	const input = "8:15-8:45 breakfast@home, porridge #slow"
	first := Parse(input, testNow)
	second := Parse(input, testNow)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("parse not deterministic: %+v vs %+v", first, second)
	}
}
