// Package server serves the story dashboard and the JSON APIs the frontend
// charts read from.
package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/storypulse/storypulse/internal/database"
	"github.com/storypulse/storypulse/internal/model"
	"github.com/storypulse/storypulse/internal/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// Server is the HTTP server for the story dashboard.
type Server struct {
	db    *database.DB
	pages map[string]*template.Template
	mux   *http.ServeMux
}

// New creates a new Server.
func New(db *database.DB) (*Server, error) {
	funcMap := template.FuncMap{
		"markdown": renderMarkdown,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"join": strings.Join,
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// For each page template, clone the base and parse the page into the clone.
	// This gives each page its own {{define "content"}} and {{define "title"}}.
	pageNames := []string{"index.html", "story.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{db: db, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Routes
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/story/", s.handleStory)
	s.mux.HandleFunc("/api/story/", s.handleAPI)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	stories, err := s.db.GetAllStories()
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	s.render(w, "index.html", map[string]any{
		"Stories": stories,
	})
}

func (s *Server) handleStory(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimPrefix(r.URL.Path, "/story/")
	if slug == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	story, err := s.db.GetStoryBySlug(slug)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if story == nil {
		http.NotFound(w, r)
		return
	}

	snap, _ := s.db.GetSnapshot(story.ID)

	s.render(w, "story.html", map[string]any{
		"Story":       story,
		"HasSnapshot": snap != nil,
	})
}

// handleAPI dispatches /api/story/{slug}/series and
// /api/story/{slug}/graph?layout=force|tree.
func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/story/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	slug, resource := parts[0], parts[1]

	story, err := s.db.GetStoryBySlug(slug)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if story == nil {
		http.NotFound(w, r)
		return
	}

	snap, err := s.db.GetSnapshot(story.ID)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if snap == nil {
		http.Error(w, "No analysis available; run the pipeline first", http.StatusNotFound)
		return
	}

	switch resource {
	case "series":
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(snap.SeriesJSON))
	case "graph":
		s.serveGraph(w, r, snap)
	default:
		http.NotFound(w, r)
	}
}

// graphResponse is the layout-specific view carved out of a stored snapshot.
type graphResponse struct {
	Nodes         []model.CausalNode        `json:"nodes"`
	Edges         []model.CausalEdge        `json:"edges"`
	Layout        string                    `json:"layout"`
	Positions     map[string]model.Position `json:"positions"`
	Levels        map[string]int            `json:"levels,omitempty"`
	Degrees       map[string]model.Degree   `json:"degrees"`
	InitialReveal int                       `json:"initialReveal"`
}

func (s *Server) serveGraph(w http.ResponseWriter, r *http.Request, snap *database.Snapshot) {
	layout := r.URL.Query().Get("layout")
	if layout == "" {
		layout = "force"
	}
	if layout != "force" && layout != "tree" {
		http.Error(w, "layout must be force or tree", http.StatusBadRequest)
		return
	}

	var stored pipeline.GraphSnapshot
	if err := json.Unmarshal([]byte(snap.GraphJSON), &stored); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := graphResponse{
		Nodes:         stored.Nodes,
		Edges:         stored.Edges,
		Layout:        layout,
		Positions:     stored.Force,
		Degrees:       stored.Degrees,
		InitialReveal: stored.InitialReveal,
	}
	if layout == "tree" {
		resp.Positions = stored.Tree
		resp.Levels = stored.Levels
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding graph response: %v", err)
	}
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Printf("Template %s not found", name)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("Error rendering template %s: %v", name, err)
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

// Serve starts the HTTP server on the given port.
func Serve(db *database.DB, port int) error {
	srv, err := New(db)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	log.Printf("Server listening on http://%s", addr)
	return http.ListenAndServe(addr, srv.Handler())
}
