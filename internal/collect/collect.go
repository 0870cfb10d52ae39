// Package collect gathers raw material for tracked stories: timeline events
// from RSS feeds and analysis bundles from the intelligence API.
package collect

import (
	"log"

	"github.com/storypulse/storypulse/internal/config"
	"github.com/storypulse/storypulse/internal/database"
)

// Result holds the results of a collection run for one story.
type Result struct {
	TotalFound int
	NewEvents  int
	Duplicates int
	Sources    map[string]int
	IntelUsed  bool
}

// Collector orchestrates event collection from RSS feeds and the
// intelligence API.
type Collector struct {
	db         *database.DB
	feedParser *FeedParser
	intel      *IntelClient
	daysBack   int

	entries []FeedEntry
	parsed  bool
}

// NewCollector creates a new event collector.
func NewCollector(cfg *config.Config, db *database.DB, daysBack int) *Collector {
	c := &Collector{
		db:       db,
		daysBack: daysBack,
	}

	if len(cfg.Sources.Feeds) > 0 {
		feeds := make([]FeedConfig, len(cfg.Sources.Feeds))
		for i, f := range cfg.Sources.Feeds {
			feeds[i] = FeedConfig{URL: f.URL, Name: f.Name}
		}
		c.feedParser = NewFeedParser(feeds)
	}

	intelCfg := cfg.Sources.Intel
	if intelCfg.Enabled {
		c.intel = NewIntelClient(intelCfg.BaseURL, intelCfg.APIKeyEnv)
	}

	return c
}

// Collect gathers events and intel for one story. Feeds are parsed once per
// collector and reused across stories.
func (c *Collector) Collect(story *database.Story) *Result {
	r := &Result{Sources: make(map[string]int)}

	if c.feedParser != nil {
		if !c.parsed {
			log.Println("Collecting from RSS feeds...")
			c.entries = c.feedParser.ParseAll(c.daysBack)
			c.parsed = true
		}

		var matched []FeedEntry
		for _, entry := range c.entries {
			if entry.MatchesKeywords(story.Keywords) {
				matched = append(matched, entry)
			}
		}
		r.TotalFound = len(matched)

		for i, ev := range toEvents(matched) {
			id, _ := c.db.InsertEvent(story.ID, ev)
			if id > 0 {
				r.NewEvents++
				r.Sources[matched[i].Source]++
			} else {
				r.Duplicates++
			}
		}
	}

	if c.intel != nil && c.intel.IsConfigured() {
		if intel := c.intel.FetchStoryIntel(story.Slug, story.Keywords); intel != nil {
			c.applyIntel(story.ID, intel)
			r.IntelUsed = true
		}
	}

	log.Printf("Collection complete for %s: %d found, %d new, %d duplicates",
		story.Slug, r.TotalFound, r.NewEvents, r.Duplicates)
	return r
}

func (c *Collector) applyIntel(storyID int64, intel *StoryIntel) {
	var arc, synthesis *string
	if intel.NarrativeArc != "" {
		arc = &intel.NarrativeArc
	}
	if intel.SynthesisMarkdown != "" {
		synthesis = &intel.SynthesisMarkdown
	}
	if arc != nil || synthesis != nil {
		if err := c.db.UpdateStoryNarrative(storyID, arc, synthesis); err != nil {
			log.Printf("Failed to store narrative: %v", err)
		}
	}

	if err := c.db.ReplacePredictions(storyID, intel.Predictions); err != nil {
		log.Printf("Failed to store predictions: %v", err)
	}
	if err := c.db.ReplaceContradictions(storyID, intel.Contradictions); err != nil {
		log.Printf("Failed to store contradictions: %v", err)
	}
	if err := c.db.ReplaceRelations(storyID, intel.Relations); err != nil {
		log.Printf("Failed to store relations: %v", err)
	}
}
