package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
)

func TestDefaults(t *testing.T) {
	for _, k := range []string{
		"SERVER_PORT", "DATABASE_URL", "MEMORY_BACKEND", "DECISION_LOG_CAPACITY",
		"MEMORY_HIT_THRESHOLD", "SOURCE_QUERY_TIMEOUT", "CACHE_TTL", "SEARCH_PROVIDER",
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "SOURCE_MAX_RETRIES", "DOCUMENT_RETENTION_DAYS",
	} {
		t.Setenv(k, "")
	}

	if got := ServerAddr(); got != ":8080" {
		t.Errorf("ServerAddr() = %q, want :8080", got)
	}
	if got := MemoryBackend(); got != "keyword" {
		t.Errorf("MemoryBackend() = %q, want keyword", got)
	}
	if got := DecisionLogCapacity(); got != 1000 {
		t.Errorf("DecisionLogCapacity() = %d, want 1000", got)
	}
	if got := MemoryHitThreshold(); got != 0.7 {
		t.Errorf("MemoryHitThreshold() = %v, want 0.7", got)
	}
	if got := SourceQueryTimeout(); got != 15*time.Second {
		t.Errorf("SourceQueryTimeout() = %v, want 15s", got)
	}
	if got := CacheTTL(); got != time.Hour {
		t.Errorf("CacheTTL() = %v, want 1h", got)
	}
	if got := SearchProvider(); got != "mock" {
		t.Errorf("SearchProvider() = %q, want mock", got)
	}
	if got := SourceMaxRetries(); got != 2 {
		t.Errorf("SourceMaxRetries() = %d, want 2", got)
	}
	if got := DocumentRetention(); got != 0 {
		t.Errorf("DocumentRetention() = %v, want 0", got)
	}
}

func TestOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/contentmesh")
	t.Setenv("MEMORY_BACKEND", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv("SEARCH_PROVIDER", "")
	t.Setenv("CACHE_TTL", "120")
	t.Setenv("SOURCE_QUERY_TIMEOUT", "250ms")
	t.Setenv("MEMORY_HIT_THRESHOLD", "1.5")
	t.Setenv("DOCUMENT_RETENTION_DAYS", "7")

	if got := MemoryBackend(); got != "postgres" {
		t.Errorf("MemoryBackend() = %q, want postgres", got)
	}
	if got := GeminiAPIKey(); got != "g-key" {
		t.Errorf("GeminiAPIKey() = %q, want GOOGLE_API_KEY fallback", got)
	}
	if got := SearchProvider(); got != "gemini" {
		t.Errorf("SearchProvider() = %q, want gemini", got)
	}
	if got := CacheTTL(); got != 2*time.Minute {
		t.Errorf("CacheTTL() = %v, want 2m", got)
	}
	if got := SourceQueryTimeout(); got != 250*time.Millisecond {
		t.Errorf("SourceQueryTimeout() = %v, want 250ms", got)
	}
	if got := MemoryHitThreshold(); got != 0.7 {
		t.Errorf("out of range threshold should fall back, got %v", got)
	}
	if got := DocumentRetention(); got != 7*24*time.Hour {
		t.Errorf("DocumentRetention() = %v, want 168h", got)
	}
}

func TestLoad_secretSidecar(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "test.env")
	if err := os.WriteFile(envFile, []byte("WEB_SOURCE_PRIORITY=3\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(envFile+".secret", []byte("API_KEY=sidecar-key\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONTENTMESH_ENV", envFile)
	t.Setenv("WEB_SOURCE_PRIORITY", "")
	t.Setenv("API_KEY", "")
	os.Unsetenv("WEB_SOURCE_PRIORITY")
	os.Unsetenv("API_KEY")

	if err := Load(); err != nil {
		t.Fatal(err)
	}
	if got := WebSourcePriority(); got != 3 {
		t.Errorf("WebSourcePriority() = %d, want 3", got)
	}
	if got := APIKey(); got != "sidecar-key" {
		t.Errorf("APIKey() = %q, want sidecar-key", got)
	}
}

type recordingScorer struct {
	weights     []string
	reliability map[string]float64
	failOn      string
}

func (r *recordingScorer) SetFactorWeight(f domain.ScoringFactor, w float64) error {
	if string(f) == r.failOn {
		return errors.New("unknown factor")
	}
	r.weights = append(r.weights, string(f))
	return nil
}

func (r *recordingScorer) SetSourceReliability(t string, v float64) error {
	if r.reliability == nil {
		r.reliability = map[string]float64{}
	}
	r.reliability[t] = v
	return nil
}

func TestScoringProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	content := `
weights:
  relevance: 0.4
  accuracy: 0.2
reliability:
  web_search: 0.7
  internal_wiki: 0.8
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	p, err := LoadScoringProfile(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Weights["relevance"] != 0.4 || p.Reliability["internal_wiki"] != 0.8 {
		t.Errorf("unexpected profile: %+v", p)
	}

	rec := &recordingScorer{}
	if err := p.Apply(rec); err != nil {
		t.Fatal(err)
	}
	if len(rec.weights) != 2 || rec.weights[0] != "accuracy" || rec.weights[1] != "relevance" {
		t.Errorf("weights applied out of order: %v", rec.weights)
	}
	if rec.reliability["web_search"] != 0.7 {
		t.Errorf("reliability not applied: %v", rec.reliability)
	}

	rec = &recordingScorer{failOn: "relevance"}
	if err := p.Apply(rec); err == nil {
		t.Error("expected error from scorer to be returned")
	}
}

func TestLoadScoringProfile_errors(t *testing.T) {
	if _, err := LoadScoringProfile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("weights: [1, 2"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadScoringProfile(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestLLMModel(t *testing.T) {
	t.Setenv("LLM_MODEL", "")
	t.Setenv("GEMINI_MODEL", "")

	t.Setenv("LLM_PROVIDER", "gemini")
	if got := LLMModel(); got != "gemini-2.0-flash" {
		t.Errorf("LLMModel() = %q, want gemini default", got)
	}

	t.Setenv("LLM_PROVIDER", "openai")
	if got := LLMModel(); got != "" {
		t.Errorf("LLMModel() = %q, want provider default", got)
	}

	t.Setenv("LLM_MODEL", "gpt-4.1-mini")
	if got := LLMModel(); got != "gpt-4.1-mini" {
		t.Errorf("LLMModel() = %q, want gpt-4.1-mini", got)
	}
}

func TestWatchExtensions(t *testing.T) {
	t.Setenv("WATCH_EXTENSIONS", "")
	if got := WatchExtensions(); len(got) != 2 || got[0] != "md" || got[1] != "txt" {
		t.Errorf("WatchExtensions() = %v, want [md txt]", got)
	}

	t.Setenv("WATCH_EXTENSIONS", " .rst , ,adoc")
	if got := WatchExtensions(); len(got) != 2 || got[0] != ".rst" || got[1] != "adoc" {
		t.Errorf("WatchExtensions() = %v, want [.rst adoc]", got)
	}
}

func TestScoringProfilePath(t *testing.T) {
	t.Setenv("SCORING_PROFILE", "")
	if got := ScoringProfilePath(); got != "" {
		t.Errorf("ScoringProfilePath() = %q, want empty", got)
	}

	t.Setenv("SCORING_PROFILE", "/etc/contentmesh/profile.yaml")
	if got := ScoringProfilePath(); got != "/etc/contentmesh/profile.yaml" {
		t.Errorf("ScoringProfilePath() = %q, want /etc/contentmesh/profile.yaml", got)
	}
}
