package collect

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/storypulse/storypulse/internal/model"
)

// StoryIntel is the provider's analysis bundle for one story.
type StoryIntel struct {
	NarrativeArc      string
	SynthesisMarkdown string
	Predictions       []model.Prediction
	Contradictions    []model.ContradictionItem
	Relations         []model.CausalEdge
}

// IntelClient fetches story analysis from the intelligence API.
type IntelClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewIntelClient creates a new intelligence API client.
func NewIntelClient(baseURL, apiKeyEnv string) *IntelClient {
	return &IntelClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  os.Getenv(apiKeyEnv),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured returns whether the API key is available.
func (c *IntelClient) IsConfigured() bool {
	return c.apiKey != ""
}

// FetchStoryIntel fetches the analysis bundle for a story. Returns nil when
// the provider is unreachable or has nothing for the slug; collection carries
// on with feed data alone.
func (c *IntelClient) FetchStoryIntel(slug string, keywords []string) *StoryIntel {
	if c.apiKey == "" {
		log.Println("Intelligence API not configured, skipping")
		return nil
	}

	params := url.Values{
		"story":    {slug},
		"keywords": {strings.Join(keywords, ",")},
	}

	req, err := http.NewRequest("GET", c.baseURL+"/analysis?"+params.Encode(), nil)
	if err != nil {
		log.Printf("Intel request error: %v", err)
		return nil
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("Intel API error: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.Printf("Intel API has no analysis for %s", slug)
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("Intel API HTTP error: %d", resp.StatusCode)
		return nil
	}

	var result struct {
		Status            string `json:"status"`
		NarrativeArc      string `json:"narrative_arc"`
		SynthesisMarkdown string `json:"synthesis_markdown"`
		Predictions       []struct {
			Prediction  string  `json:"prediction"`
			Probability float64 `json:"probability"`
			Type        string  `json:"type"`
			Timeframe   string  `json:"timeframe"`
			Rationale   string  `json:"rationale"`
		} `json:"predictions"`
		Contradictions []struct {
			Date    string `json:"date"`
			Type    string `json:"type"`
			ClaimA  string `json:"claim_a"`
			ClaimB  string `json:"claim_b"`
			SourceA string `json:"source_a"`
			SourceB string `json:"source_b"`
		} `json:"contradictions"`
		Relations []struct {
			Cause          string   `json:"cause_text"`
			Effect         string   `json:"effect_text"`
			RelationType   string   `json:"relation_type"`
			Confidence     float64  `json:"confidence"`
			SourceArticles []string `json:"source_articles"`
		} `json:"relations"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("Intel decode error: %v", err)
		return nil
	}
	if result.Status != "" && result.Status != "ok" {
		log.Printf("Intel API status: %s", result.Status)
		return nil
	}

	intel := &StoryIntel{
		NarrativeArc:      result.NarrativeArc,
		SynthesisMarkdown: result.SynthesisMarkdown,
	}

	for _, p := range result.Predictions {
		if p.Prediction == "" {
			continue
		}
		intel.Predictions = append(intel.Predictions, model.Prediction{
			Text:        strings.TrimSpace(p.Prediction),
			Probability: p.Probability,
			Type:        p.Type,
			Timeframe:   p.Timeframe,
			Rationale:   p.Rationale,
		})
	}

	for _, c := range result.Contradictions {
		if c.ClaimA == "" || c.ClaimB == "" {
			continue
		}
		intel.Contradictions = append(intel.Contradictions, model.ContradictionItem{
			Date:    parseIntelDate(c.Date),
			Type:    c.Type,
			ClaimA:  c.ClaimA,
			ClaimB:  c.ClaimB,
			SourceA: c.SourceA,
			SourceB: c.SourceB,
		})
	}

	for _, r := range result.Relations {
		if r.Cause == "" || r.Effect == "" {
			continue
		}
		intel.Relations = append(intel.Relations, model.CausalEdge{
			Cause:          strings.TrimSpace(r.Cause),
			Effect:         strings.TrimSpace(r.Effect),
			Relation:       model.RelationType(r.RelationType),
			Confidence:     r.Confidence,
			SourceArticles: r.SourceArticles,
		})
	}

	log.Printf("Fetched intel for %s: %d predictions, %d contradictions, %d relations",
		slug, len(intel.Predictions), len(intel.Contradictions), len(intel.Relations))
	return intel
}

func parseIntelDate(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now()
}
