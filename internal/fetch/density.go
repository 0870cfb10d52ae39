// Package fetch enriches timeline events with a fact-density estimate read
// from their source articles.
package fetch

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	readability "github.com/go-shiori/go-readability"

	"github.com/storypulse/storypulse/internal/database"
)

const (
	minDensity = 0.1
	maxDensity = 0.95
)

// Result holds the results of a density estimation run.
type Result struct {
	Estimated int
	Failed    int
}

// DensityFetcher fetches article text via HTTP + readability extraction and
// estimates how fact-heavy the reporting is.
type DensityFetcher struct {
	db     *database.DB
	client *http.Client
}

// NewDensityFetcher creates a new density fetcher.
func NewDensityFetcher(db *database.DB, timeout time.Duration) *DensityFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &DensityFetcher{
		db: db,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// EstimateMissingDensity estimates fact density for a story's events that
// don't have one yet.
func (f *DensityFetcher) EstimateMissingDensity(storyID int64) *Result {
	events, err := f.db.GetEventsNeedingDensity(storyID)
	if err != nil {
		log.Printf("Error getting events needing density: %v", err)
		return &Result{}
	}

	if len(events) == 0 {
		log.Println("No events need density estimation")
		return &Result{}
	}

	result := &Result{}
	failedDomains := make(map[string]struct{})

	for _, ev := range events {
		if len(ev.Sources) == 0 {
			f.db.MarkEventDensityChecked(ev.ID)
			result.Failed++
			continue
		}
		sourceURL := ev.Sources[0]

		u, _ := url.Parse(sourceURL)
		domain := ""
		if u != nil {
			domain = strings.ToLower(u.Host)
		}

		if _, failed := failedDomains[domain]; failed {
			f.db.MarkEventDensityChecked(ev.ID)
			result.Failed++
			continue
		}

		text, httpErr := f.fetchArticleText(sourceURL)
		if httpErr != nil {
			f.db.MarkEventDensityChecked(ev.ID)
			result.Failed++
			if domain != "" {
				failedDomains[domain] = struct{}{}
			}
			log.Printf("HTTP error for %s — skipping remaining from %s", sourceURL, domain)
			continue
		}

		if text != "" {
			f.db.UpdateEventDensity(ev.ID, EstimateDensity(text))
			result.Estimated++
			log.Printf("Estimated density for: %s", ev.Title)
		} else {
			f.db.MarkEventDensityChecked(ev.ID)
			result.Failed++
			log.Printf("No extractable content from: %s", sourceURL)
		}
	}

	log.Printf("Density estimation complete: %d estimated, %d failed", result.Estimated, result.Failed)
	return result
}

func (f *DensityFetcher) fetchArticleText(articleURL string) (string, error) {
	req, err := http.NewRequest("GET", articleURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "storypulse/1.0 (news analyzer)")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil // connection error, not HTTP error
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(articleURL)
	article, err := readability.FromReader(strings.NewReader(string(bodyBytes)), parsedURL)
	if err != nil {
		return "", nil
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) > 100 {
		return text, nil
	}
	return "", nil
}

// EstimateDensity scores how fact-heavy a piece of text reads. Numbers,
// direct quotes, and proper nouns mid-sentence count as factual signals; the
// signal share of all tokens maps onto [0.1, 0.95].
func EstimateDensity(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return minDensity
	}

	signals := 0
	for i, field := range fields {
		token := strings.Trim(field, ".,;:!?()[]\"'")
		if token == "" {
			continue
		}
		if containsDigit(token) {
			signals++
			continue
		}
		// Capitalized words inside a sentence read as named entities.
		if i > 0 && isCapitalized(token) && !endsSentence(fields[i-1]) {
			signals++
		}
	}
	signals += strings.Count(text, `"`) / 2 * 3

	share := float64(signals) / float64(len(fields))
	density := minDensity + share*2.5
	if density > maxDensity {
		return maxDensity
	}
	return density
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func isCapitalized(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

func endsSentence(s string) bool {
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, "!") || strings.HasSuffix(s, "?")
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return http.StatusText(e.code)
}
