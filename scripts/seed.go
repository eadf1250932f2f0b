// Seed script that loads demo documents into the memory source.
// Run with: go run ./scripts/seed.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type document struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	URL      string   `json:"url,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

var documents = []document{
	{
		Title: "Routing strategies",
		Body:  "Memory first routing queries internal memory before reaching for web search. Balanced routing queries every source and ranks them by priority.",
	},
	{
		Title: "Quality scoring",
		Body:  "Content quality combines source reliability, freshness, relevance, completeness, accuracy, citations and user feedback into a single weighted score.",
	},
	{
		Title: "Freshness decay",
		Body:  "Freshness is 1.0 for content under a day old and decays to 0.1 for content older than a year.",
	},
	{
		Title:    "Circuit breakers",
		Body:     "A circuit breaker stops calling a failing source for a cooling-off period and lets a single trial request through before closing again.",
		Keywords: []string{"resilience", "breaker", "failsafe"},
	},
	{
		Title: "Result caching",
		Body:  "Web search results are cached in Redis keyed by source, normalized query, limit and language, so repeated questions skip the provider.",
		URL:   "https://redis.io/docs/latest/develop/use/client-side-caching/",
	},
}

func main() {
	envFile := os.Getenv("CONTENTMESH_ENV")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)
	_ = godotenv.Load(envFile + ".secret")

	baseURL := os.Getenv("CONTENTMESH_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	apiKey := os.Getenv("API_KEY")

	client := &http.Client{Timeout: 30 * time.Second}

	for _, d := range documents {
		body, err := json.Marshal(d)
		if err != nil {
			log.Fatalf("Failed to encode document: %v", err)
		}

		req, err := http.NewRequest(http.MethodPost, baseURL+"/v1/documents", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("Failed to build request: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+apiKey)
		}

		resp, err := client.Do(req)
		if err != nil {
			log.Fatalf("Failed to reach %s: %v", baseURL, err)
		}
		respBody, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			log.Fatalf("Failed to create %q: %s %s", d.Title, resp.Status, respBody)
		}

		var created struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(respBody, &created)
		fmt.Printf("Created document: %s (%s)\n", created.ID, d.Title)
	}

	fmt.Printf("\nSeeded %d documents. Try:\n", len(documents))
	fmt.Printf("  curl -s -X POST %s/v1/query -d '{\"query\":\"how does freshness decay\"}'\n", baseURL)
}
