package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/storypulse/storypulse/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(s string) *string { return &s }

func day(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func TestInsertStory(t *testing.T) {
	db := openTestDB(t)
	id, err := db.InsertStory("border-talks", "Border Talks", "politics", []string{"border", "talks"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero story ID")
	}
}

func TestInsertDuplicateStory(t *testing.T) {
	db := openTestDB(t)
	_, _ = db.InsertStory("border-talks", "First", "politics", nil)
	id, err := db.InsertStory("border-talks", "Duplicate", "politics", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 0 {
		t.Error("expected 0 for duplicate slug")
	}
}

func TestGetStoryBySlug(t *testing.T) {
	db := openTestDB(t)
	db.InsertStory("rate-decision", "Rate Decision", "economy", []string{"rates", "inflation"})

	story, err := db.GetStoryBySlug("rate-decision")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if story == nil {
		t.Fatal("expected story, got nil")
	}
	if story.Category != "economy" {
		t.Errorf("expected category economy, got %q", story.Category)
	}
	if len(story.Keywords) != 2 || story.Keywords[0] != "rates" {
		t.Errorf("unexpected keywords: %v", story.Keywords)
	}
	if !story.IsActive {
		t.Error("expected new story to be active")
	}

	missing, err := db.GetStoryBySlug("no-such-story")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown slug")
	}
}

func TestToggleStory(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertStory("border-talks", "Border Talks", "politics", nil)

	if err := db.ToggleStory(id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	story, _ := db.GetStory(id)
	if story.IsActive {
		t.Error("expected story to be inactive after toggle")
	}

	active, _ := db.GetActiveStories()
	if len(active) != 0 {
		t.Errorf("expected 0 active stories, got %d", len(active))
	}
}

func TestUpdateStoryNarrative(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertStory("border-talks", "Border Talks", "politics", nil)

	if err := db.UpdateStoryNarrative(id, ptr("peak"), ptr("## Summary")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	story, _ := db.GetStory(id)
	if story.NarrativeArc == nil || *story.NarrativeArc != "peak" {
		t.Error("expected narrative arc to be updated")
	}
	if story.SynthesisMarkdown == nil || *story.SynthesisMarkdown != "## Summary" {
		t.Error("expected synthesis markdown to be updated")
	}
}

func TestDeleteStoryCascades(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertStory("border-talks", "Border Talks", "politics", nil)
	db.InsertEvent(id, model.TimelineEvent{Date: day("2026-03-01"), Title: "Talks open"})
	db.ReplacePredictions(id, []model.Prediction{{Text: "Agreement signed", Probability: 0.6, Timeframe: model.TimeframeShort}})
	db.UpsertSnapshot(id, "{}", "{}")

	if err := db.DeleteStory(id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalStories != 0 || stats.TotalEvents != 0 || stats.Predictions != 0 || stats.Snapshots != 0 {
		t.Errorf("expected empty database after delete, got %+v", stats)
	}
}

func TestInsertEvent(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertStory("border-talks", "Border Talks", "politics", nil)

	evID, err := db.InsertEvent(id, model.TimelineEvent{
		Date:        day("2026-03-01"),
		Title:       "Talks open in Geneva",
		Summary:     "Delegations meet",
		Phase:       model.PhaseEmerging,
		FactDensity: 0.5,
		Sources:     []string{"https://example.com/a"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if evID == 0 {
		t.Error("expected non-zero event ID")
	}
}

func TestInsertDuplicateEvent(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertStory("border-talks", "Border Talks", "politics", nil)
	ev := model.TimelineEvent{Date: day("2026-03-01"), Title: "Talks open"}

	db.InsertEvent(id, ev)
	dupID, err := db.InsertEvent(id, ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dupID != 0 {
		t.Error("expected 0 for duplicate event")
	}
}

func TestGetEventsForStoryOrder(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertStory("border-talks", "Border Talks", "politics", nil)
	db.InsertEvent(id, model.TimelineEvent{Date: day("2026-03-05"), Title: "Later"})
	db.InsertEvent(id, model.TimelineEvent{Date: day("2026-03-01"), Title: "Earlier", Sources: []string{"https://a.com"}})

	events, err := db.GetEventsForStory(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Title != "Earlier" {
		t.Errorf("expected chronological order, got %q first", events[0].Title)
	}
	if len(events[0].Sources) != 1 {
		t.Errorf("expected sources to round-trip, got %v", events[0].Sources)
	}
}

func TestEventDensityLifecycle(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertStory("border-talks", "Border Talks", "politics", nil)
	evID, _ := db.InsertEvent(id, model.TimelineEvent{
		Date: day("2026-03-01"), Title: "No density", Sources: []string{"https://a.com"},
	})
	db.InsertEvent(id, model.TimelineEvent{
		Date: day("2026-03-02"), Title: "Has density", FactDensity: 0.7,
	})

	pending, err := db.GetEventsNeedingDensity(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 event needing density, got %d", len(pending))
	}
	if pending[0].Title != "No density" {
		t.Errorf("expected 'No density', got %q", pending[0].Title)
	}

	if err := db.UpdateEventDensity(evID, 0.8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pending, _ = db.GetEventsNeedingDensity(id)
	if len(pending) != 0 {
		t.Error("expected 0 pending after update")
	}

	events, _ := db.GetEventsForStory(id)
	if events[0].FactDensity != 0.8 {
		t.Errorf("expected density 0.8, got %v", events[0].FactDensity)
	}
}

func TestMarkEventDensityChecked(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertStory("border-talks", "Border Talks", "politics", nil)
	evID, _ := db.InsertEvent(id, model.TimelineEvent{Date: day("2026-03-01"), Title: "Unfetchable"})

	if err := db.MarkEventDensityChecked(evID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pending, _ := db.GetEventsNeedingDensity(id)
	if len(pending) != 0 {
		t.Error("expected checked event to drop out of pending")
	}
}

func TestReplacePredictions(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertStory("border-talks", "Border Talks", "politics", nil)

	db.ReplacePredictions(id, []model.Prediction{
		{Text: "Old prediction", Probability: 0.5, Timeframe: model.TimeframeShort},
	})
	err := db.ReplacePredictions(id, []model.Prediction{
		{Text: "Low", Probability: 0.3, Timeframe: model.TimeframeLong},
		{Text: "High", Probability: 0.8, Timeframe: model.TimeframeShort, Type: "escalation", Rationale: "momentum"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	predictions, err := db.GetPredictionsForStory(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(predictions) != 2 {
		t.Fatalf("expected 2 predictions after replace, got %d", len(predictions))
	}
	if predictions[0].Text != "High" {
		t.Errorf("expected probability-ranked order, got %q first", predictions[0].Text)
	}
	if predictions[0].Type != "escalation" || predictions[0].Rationale != "momentum" {
		t.Errorf("unexpected prediction fields: %+v", predictions[0])
	}
}

func TestReplaceContradictions(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertStory("border-talks", "Border Talks", "politics", nil)

	err := db.ReplaceContradictions(id, []model.ContradictionItem{
		{Date: day("2026-03-02"), Type: "factual", ClaimA: "Ceasefire holds", ClaimB: "Shelling continues", SourceA: "Agency A", SourceB: "Agency B"},
		{Date: day("2026-03-01"), Type: "temporal", ClaimA: "Talks began Monday", ClaimB: "Talks began Tuesday"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, err := db.GetContradictionsForStory(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 contradictions, got %d", len(items))
	}
	if items[0].Type != "temporal" {
		t.Errorf("expected date order, got %q first", items[0].Type)
	}
	if items[1].SourceA != "Agency A" {
		t.Errorf("expected sources to round-trip, got %q", items[1].SourceA)
	}
}

func TestReplaceRelations(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertStory("border-talks", "Border Talks", "politics", nil)

	err := db.ReplaceRelations(id, []model.CausalEdge{
		{Cause: "Sanctions announced", Effect: "Currency drops", Relation: model.RelationCauses, Confidence: 0.9, SourceArticles: []string{"https://a.com"}},
		{Cause: "Currency drops", Effect: "Imports stall", Relation: model.RelationTriggers, Confidence: 0.6},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	edges, err := db.GetRelationsForStory(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("expected 2 relations, got %d", len(edges))
	}
	if edges[0].Relation != model.RelationCauses {
		t.Errorf("expected causes, got %q", edges[0].Relation)
	}
	if len(edges[0].SourceArticles) != 1 {
		t.Errorf("expected source articles to round-trip, got %v", edges[0].SourceArticles)
	}
}

func TestSnapshotUpsert(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertStory("border-talks", "Border Talks", "politics", nil)

	if err := db.UpsertSnapshot(id, `{"points":[]}`, `{"nodes":[]}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.UpsertSnapshot(id, `{"points":[1]}`, `{"nodes":[1]}`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap, err := db.GetSnapshot(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap == nil {
		t.Fatal("expected snapshot, got nil")
	}
	if snap.SeriesJSON != `{"points":[1]}` {
		t.Errorf("expected upsert to overwrite, got %q", snap.SeriesJSON)
	}

	stats, _ := db.GetStats()
	if stats.Snapshots != 1 {
		t.Errorf("expected 1 snapshot row, got %d", stats.Snapshots)
	}
}

func TestGetSnapshotMissing(t *testing.T) {
	db := openTestDB(t)
	snap, err := db.GetSnapshot(42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap != nil {
		t.Error("expected nil for missing snapshot")
	}
}
