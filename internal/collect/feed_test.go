package collect

import (
	"testing"
	"time"

	"github.com/storypulse/storypulse/internal/model"
)

func TestMatchesKeywords(t *testing.T) {
	entry := FeedEntry{
		Title:   "Border Talks Resume in Geneva",
		Summary: "Delegations met for a second round of negotiations.",
	}

	tests := []struct {
		name     string
		keywords []string
		want     bool
	}{
		{"title match", []string{"border talks"}, true},
		{"summary match", []string{"negotiations"}, true},
		{"case insensitive", []string{"GENEVA"}, true},
		{"no match", []string{"earthquake"}, false},
		{"empty keywords", nil, false},
		{"blank keyword ignored", []string{"  ", "geneva"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := entry.MatchesKeywords(tt.keywords); got != tt.want {
				t.Errorf("MatchesKeywords(%v) = %v, want %v", tt.keywords, got, tt.want)
			}
		})
	}
}

func TestToEventsChronological(t *testing.T) {
	day := func(s string) time.Time {
		d, _ := time.Parse("2006-01-02", s)
		return d
	}
	entries := []FeedEntry{
		{URL: "https://c.com", Title: "Third", Published: day("2026-03-03")},
		{URL: "https://a.com", Title: "First", Published: day("2026-03-01")},
		{URL: "https://b.com", Title: "Second", Published: day("2026-03-02")},
	}

	events := toEvents(entries)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, want := range []string{"First", "Second", "Third"} {
		if events[i].Title != want {
			t.Errorf("position %d: expected %q, got %q", i, want, events[i].Title)
		}
	}
	if len(events[0].Sources) != 1 || events[0].Sources[0] != "https://a.com" {
		t.Errorf("expected entry URL as source, got %v", events[0].Sources)
	}
}

func TestPositionalPhase(t *testing.T) {
	tests := []struct {
		i, n  int
		phase string
	}{
		{0, 1, model.PhaseDeveloping},
		{0, 8, model.PhaseEmerging},
		{1, 8, model.PhaseEmerging},
		{3, 8, model.PhaseDeveloping},
		{7, 8, model.PhasePeak},
	}
	for _, tt := range tests {
		if got := positionalPhase(tt.i, tt.n); got != tt.phase {
			t.Errorf("positionalPhase(%d, %d) = %q, want %q", tt.i, tt.n, got, tt.phase)
		}
	}
}

func TestStripHTML(t *testing.T) {
	in := "<p>Talks &amp; negotiations <b>resume</b>&nbsp;today</p>"
	want := "Talks & negotiations resume today"
	if got := stripHTML(in); got != want {
		t.Errorf("stripHTML = %q, want %q", got, want)
	}
}

func TestExtractSourceName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://feeds.bbci.co.uk/news/world/rss.xml", "Co"},
		{"https://www.theguardian.com/world/rss", "Theguardian"},
		{"https://reuters.com/rss", "Reuters"},
	}
	for _, tt := range tests {
		if got := extractSourceName(tt.url); got != tt.want {
			t.Errorf("extractSourceName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
