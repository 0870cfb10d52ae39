package database

// Story is a tracked story subject.
type Story struct {
	ID                int64
	Slug              string
	Title             string
	Category          string
	NarrativeArc      *string
	SynthesisMarkdown *string
	Keywords          []string
	IsActive          bool
	CreatedAt         *string
	UpdatedAt         *string
}

// Snapshot caches a story's computed analysis as JSON blobs.
type Snapshot struct {
	StoryID     int64
	SeriesJSON  string
	GraphJSON   string
	GeneratedAt *string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalStories   int
	ActiveStories  int
	TotalEvents    int
	Predictions    int
	Contradictions int
	Relations      int
	Snapshots      int
}
