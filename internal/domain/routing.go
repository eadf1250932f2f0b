package domain

import "time"

type RoutingStrategy string

const (
	StrategyMemoryFirst   RoutingStrategy = "memory_first"
	StrategyExternalFirst RoutingStrategy = "external_first"
	StrategyBalanced      RoutingStrategy = "balanced"
	StrategyMemoryOnly    RoutingStrategy = "memory_only"
	StrategyExternalOnly  RoutingStrategy = "external_only"
)

func AllStrategies() []RoutingStrategy {
	return []RoutingStrategy{
		StrategyMemoryFirst,
		StrategyExternalFirst,
		StrategyBalanced,
		StrategyMemoryOnly,
		StrategyExternalOnly,
	}
}

func ValidStrategy(s string) bool {
	for _, st := range AllStrategies() {
		if string(st) == s {
			return true
		}
	}
	return false
}

// RoutingDecision is the router's answer for one query. An empty
// SourcesToQuery is a valid outcome, not a failure.
type RoutingDecision struct {
	Strategy        RoutingStrategy `json:"strategy"`
	SourcesToQuery  []string        `json:"sources_to_query"`
	ExpectedQuality float64         `json:"expected_quality"`
	Reasoning       string          `json:"reasoning"`
}

// DecisionLogEntry records one routing decision for observability.
type DecisionLogEntry struct {
	Query           string          `json:"query"`
	Strategy        RoutingStrategy `json:"strategy"`
	Sources         []string        `json:"sources"`
	ExpectedQuality float64         `json:"expected_quality"`
	Timestamp       time.Time       `json:"timestamp"`
}

// SourceMetrics are the running counters kept per registered source.
type SourceMetrics struct {
	QueryCount      int     `json:"queries_count"`
	SuccessCount    int     `json:"successful_queries"`
	AvgResponseTime float64 `json:"avg_response_time"`
	AvgQualityScore float64 `json:"avg_quality_score"`
	HitRate         float64 `json:"hit_rate"`
}

// SourceInfo is the read-only view of a registration.
type SourceInfo struct {
	ID           string        `json:"id"`
	Type         SourceType    `json:"type"`
	Priority     int           `json:"priority"`
	RegisteredAt time.Time     `json:"registered_at"`
	Metrics      SourceMetrics `json:"metrics"`
}
