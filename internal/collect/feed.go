package collect

import (
	"log"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/storypulse/storypulse/internal/model"
)

const maxPerFeed = 30

// FeedEntry represents a parsed feed entry.
type FeedEntry struct {
	URL       string
	Title     string
	Published time.Time
	Summary   string
	Source    string
}

// FeedConfig represents a single feed configuration.
type FeedConfig struct {
	URL  string
	Name string
}

// FeedParser parses RSS/Atom feeds.
type FeedParser struct {
	feeds []FeedConfig
}

// NewFeedParser creates a new FeedParser.
func NewFeedParser(feeds []FeedConfig) *FeedParser {
	return &FeedParser{feeds: feeds}
}

// ParseAll parses all configured feeds and returns entries within daysBack.
func (fp *FeedParser) ParseAll(daysBack int) []FeedEntry {
	cutoff := time.Now().AddDate(0, 0, -daysBack)
	var all []FeedEntry

	parser := gofeed.NewParser()
	for _, fc := range fp.feeds {
		name := fc.Name
		if name == "" {
			name = extractSourceName(fc.URL)
		}

		entries, err := parseFeed(parser, fc.URL, name, cutoff)
		if err != nil {
			log.Printf("Failed to parse feed %s: %v", fc.URL, err)
			continue
		}
		all = append(all, entries...)
		log.Printf("Parsed %d entries from %s (within %d days)", len(entries), name, daysBack)
	}

	return all
}

func parseFeed(parser *gofeed.Parser, feedURL, sourceName string, cutoff time.Time) ([]FeedEntry, error) {
	feed, err := parser.ParseURL(feedURL)
	if err != nil {
		return nil, err
	}

	var entries []FeedEntry
	for _, item := range feed.Items {
		if len(entries) >= maxPerFeed {
			break
		}

		entry := parseItem(item, sourceName)
		if entry == nil {
			continue
		}
		if entry.Published.IsZero() || !entry.Published.Before(cutoff) {
			entries = append(entries, *entry)
		}
	}

	return entries, nil
}

func parseItem(item *gofeed.Item, source string) *FeedEntry {
	itemURL := item.Link
	if itemURL == "" {
		itemURL = item.GUID
	}
	if itemURL == "" {
		return nil
	}

	title := strings.TrimSpace(item.Title)
	if title == "" {
		return nil
	}

	var published time.Time
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	var summary string
	if item.Description != "" {
		summary = stripHTML(item.Description)
	} else if item.Content != "" {
		summary = stripHTML(item.Content)
	}

	return &FeedEntry{
		URL:       itemURL,
		Title:     title,
		Published: published,
		Summary:   summary,
		Source:    source,
	}
}

// MatchesKeywords reports whether an entry mentions any story keyword in its
// title or summary. An empty keyword list matches nothing; a story with no
// keywords relies entirely on the intelligence provider.
func (e *FeedEntry) MatchesKeywords(keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	haystack := strings.ToLower(e.Title + " " + e.Summary)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}

// toEvents converts matched entries into timeline events in chronological
// order, assigning a narrative phase by position: the oldest quarter reads as
// emerging, the middle half as developing, the newest quarter as peak.
func toEvents(entries []FeedEntry) []model.TimelineEvent {
	sorted := make([]FeedEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Published.Before(sorted[j].Published)
	})

	events := make([]model.TimelineEvent, 0, len(sorted))
	for i, e := range sorted {
		date := e.Published
		if date.IsZero() {
			date = time.Now()
		}
		events = append(events, model.TimelineEvent{
			Date:    date,
			Title:   e.Title,
			Summary: e.Summary,
			Phase:   positionalPhase(i, len(sorted)),
			Sources: []string{e.URL},
		})
	}
	return events
}

func positionalPhase(i, n int) string {
	if n <= 1 {
		return model.PhaseDeveloping
	}
	ratio := float64(i) / float64(n-1)
	switch {
	case ratio < 0.25:
		return model.PhaseEmerging
	case ratio < 0.75:
		return model.PhaseDeveloping
	default:
		return model.PhasePeak
	}
}

func stripHTML(text string) string {
	// Simple HTML tag removal
	var result strings.Builder
	inTag := false
	for _, r := range text {
		if r == '<' {
			inTag = true
			result.WriteRune(' ')
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}

	s := result.String()
	// Decode common entities
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")

	// Normalize whitespace
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

func extractSourceName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil {
		return feedURL
	}
	host := strings.ToLower(u.Hostname())

	for _, prefix := range []string{"www.", "blog.", "blogs.", "rss.", "feeds."} {
		host = strings.TrimPrefix(host, prefix)
	}

	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		name := parts[len(parts)-2]
		return strings.ToUpper(name[:1]) + name[1:]
	}
	return strings.ToUpper(host[:1]) + host[1:]
}
