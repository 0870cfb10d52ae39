// Package pipeline orchestrates the per-story analysis run: collection,
// density enrichment, graph reconciliation, layout, tension scoring, and the
// snapshot write.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/storypulse/storypulse/internal/collect"
	"github.com/storypulse/storypulse/internal/config"
	"github.com/storypulse/storypulse/internal/database"
	"github.com/storypulse/storypulse/internal/fetch"
	"github.com/storypulse/storypulse/internal/graph"
	"github.com/storypulse/storypulse/internal/model"
	"github.com/storypulse/storypulse/internal/tension"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run for one story.
type Result struct {
	Slug  string
	Steps []StepResult
}

// GraphSnapshot is the precomputed graph payload stored per story: the
// reconciled graph, both layouts, connectivity, and the initial reveal count.
type GraphSnapshot struct {
	Nodes         []model.CausalNode        `json:"nodes"`
	Edges         []model.CausalEdge        `json:"edges"`
	Degrees       map[string]model.Degree   `json:"degrees"`
	Force         map[string]model.Position `json:"force"`
	Tree          map[string]model.Position `json:"tree"`
	Levels        map[string]int            `json:"levels"`
	InitialReveal int                       `json:"initialReveal"`
}

// Pipeline orchestrates the 6-step analysis pipeline.
type Pipeline struct {
	cfg       *config.Config
	db        *database.DB
	collector *collect.Collector
	builder   *tension.SeriesBuilder
}

// New creates a new pipeline.
func New(cfg *config.Config, db *database.DB, daysBack int) *Pipeline {
	weights := cfg.CategoryWeights()
	return &Pipeline{
		cfg:       cfg,
		db:        db,
		collector: collect.NewCollector(cfg, db, daysBack),
		builder: tension.NewSeriesBuilder(
			tension.NewScorer(weights),
			tension.NewKeywordProjector(weights),
			nil,
		),
	}
}

// Run executes the pipeline for every active story.
func (p *Pipeline) Run(ctx context.Context) []*Result {
	stories, err := p.db.GetActiveStories()
	if err != nil {
		log.Printf("Error loading active stories: %v", err)
		return nil
	}
	if len(stories) == 0 {
		log.Println("No active stories to analyze")
		return nil
	}

	var results []*Result
	for i := range stories {
		if ctx.Err() != nil {
			break
		}
		results = append(results, p.RunStory(ctx, &stories[i]))
	}
	return results
}

// RunStory executes the full 6-step pipeline for one story.
func (p *Pipeline) RunStory(ctx context.Context, story *database.Story) *Result {
	r := &Result{Slug: story.Slug}

	// Step 1: Collect
	step := p.runCollect(story)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	// Step 2: Enrich
	r.Steps = append(r.Steps, p.runEnrich(story))
	if ctx.Err() != nil {
		return r
	}

	// Step 3: Reconcile
	nodes, edges, step := p.runReconcile(story)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	// Step 4: Layout
	snapshot, step := p.runLayout(nodes, edges)
	r.Steps = append(r.Steps, step)

	// Step 5: Score
	series, step := p.runScore(story)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	// Step 6: Snapshot
	r.Steps = append(r.Steps, p.runSnapshot(story, series, snapshot))
	return r
}

// DryRun shows what would be done without executing.
func (p *Pipeline) DryRun(story *database.Story) *Result {
	r := &Result{Slug: story.Slug}

	events, _ := p.db.GetEventsForStory(story.ID)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("[dry-run] %d events already in DB for %s", len(events), story.Slug),
	})

	pending, _ := p.db.GetEventsNeedingDensity(story.ID)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Enrich",
		Summary: fmt.Sprintf("[dry-run] %d events need density estimation", len(pending)),
	})

	relations, _ := p.db.GetRelationsForStory(story.ID)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Reconcile",
		Summary: fmt.Sprintf("[dry-run] %d relations to reconcile", len(relations)),
	})
	r.Steps = append(r.Steps, StepResult{
		Name:    "Layout",
		Summary: "[dry-run] Would compute force and tree layouts",
	})

	predictions, _ := p.db.GetPredictionsForStory(story.ID)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Score",
		Summary: fmt.Sprintf("[dry-run] %d events, %d predictions to score", len(events), len(predictions)),
	})

	snap, _ := p.db.GetSnapshot(story.ID)
	if snap != nil {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Snapshot",
			Summary: fmt.Sprintf("[dry-run] Snapshot already exists for %s, would refresh", story.Slug),
		})
	} else {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Snapshot",
			Summary: fmt.Sprintf("[dry-run] Would write first snapshot for %s", story.Slug),
		})
	}

	return r
}

func (p *Pipeline) runCollect(story *database.Story) StepResult {
	log.Printf("Step 1/6: Collecting material for %s...", story.Slug)
	result := p.collector.Collect(story)
	return StepResult{
		Name:    "Collect",
		Summary: fmt.Sprintf("Found %d new events (%d total, %d duplicates)", result.NewEvents, result.TotalFound, result.Duplicates),
	}
}

func (p *Pipeline) runEnrich(story *database.Story) StepResult {
	log.Println("Step 2/6: Estimating fact density...")
	fetcher := fetch.NewDensityFetcher(p.db, 15*time.Second)
	result := fetcher.EstimateMissingDensity(story.ID)
	return StepResult{
		Name:    "Enrich",
		Summary: fmt.Sprintf("Estimated %d events, %d failed", result.Estimated, result.Failed),
	}
}

func (p *Pipeline) runReconcile(story *database.Story) ([]model.CausalNode, []model.CausalEdge, StepResult) {
	log.Println("Step 3/6: Reconciling cause-effect graph...")
	relations, err := p.db.GetRelationsForStory(story.ID)
	if err != nil {
		return nil, nil, StepResult{Name: "Reconcile", Err: err}
	}

	nodes, edges := graph.ReconcileGraph(nil, relations)
	return nodes, edges, StepResult{
		Name:    "Reconcile",
		Summary: fmt.Sprintf("Reconciled %d nodes from %d relations", len(nodes), len(edges)),
	}
}

func (p *Pipeline) runLayout(nodes []model.CausalNode, edges []model.CausalEdge) (*GraphSnapshot, StepResult) {
	log.Println("Step 4/6: Computing layouts...")
	layout := p.cfg.Layout

	// Edges are ranked by confidence so the reveal order is the storage order.
	ranked := graph.SortEdgesByConfidence(edges)
	force := graph.Force(nodes, ranked, layout.Width, layout.Height, layout.Iterations, nil)
	tree := graph.Tree(nodes, ranked)

	snapshot := &GraphSnapshot{
		Nodes:         nodes,
		Edges:         ranked,
		Degrees:       graph.Connectivity(nodes, edges),
		Force:         force,
		Tree:          tree.Positions,
		Levels:        tree.Levels,
		InitialReveal: graph.NewRevealState(len(edges)).Revealed,
	}
	return snapshot, StepResult{
		Name:    "Layout",
		Summary: fmt.Sprintf("Placed %d nodes (force + tree)", len(nodes)),
	}
}

func (p *Pipeline) runScore(story *database.Story) (*model.SeriesResult, StepResult) {
	log.Println("Step 5/6: Scoring tension series...")

	events, err := p.db.GetEventsForStory(story.ID)
	if err != nil {
		return nil, StepResult{Name: "Score", Err: err}
	}
	predictions, err := p.db.GetPredictionsForStory(story.ID)
	if err != nil {
		return nil, StepResult{Name: "Score", Err: err}
	}
	contradictions, err := p.db.GetContradictionsForStory(story.ID)
	if err != nil {
		return nil, StepResult{Name: "Score", Err: err}
	}

	arc := ""
	if story.NarrativeArc != nil {
		arc = *story.NarrativeArc
	}

	series := p.builder.Build(events, predictions, contradictions, story.Category, arc, story.Title)
	return series, StepResult{
		Name:    "Score",
		Summary: fmt.Sprintf("Scored %d points, %d scenarios", len(series.Points), len(series.Scenarios)),
	}
}

func (p *Pipeline) runSnapshot(story *database.Story, series *model.SeriesResult, snapshot *GraphSnapshot) StepResult {
	log.Println("Step 6/6: Writing snapshot...")

	seriesJSON, err := json.Marshal(series)
	if err != nil {
		return StepResult{Name: "Snapshot", Err: err}
	}
	graphJSON, err := json.Marshal(snapshot)
	if err != nil {
		return StepResult{Name: "Snapshot", Err: err}
	}
	if err := p.db.UpsertSnapshot(story.ID, string(seriesJSON), string(graphJSON)); err != nil {
		return StepResult{Name: "Snapshot", Err: err}
	}

	return StepResult{
		Name:    "Snapshot",
		Summary: fmt.Sprintf("Snapshot written: %d series points, %d graph nodes", len(series.Points), len(snapshot.Nodes)),
	}
}
