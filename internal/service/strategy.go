package service

import (
	"fmt"

	"github.com/Harshitk-cp/contentmesh/internal/domain"
)

// routingStrategy is implemented only by the strategy types in this file.
type routingStrategy interface {
	decide(reg *SourceRegistry) domain.RoutingDecision
}

type (
	memoryFirst   struct{}
	externalFirst struct{}
	balanced      struct{}
	memoryOnly    struct{}
	externalOnly  struct{}
)

func strategyFor(name domain.RoutingStrategy) (routingStrategy, error) {
	switch name {
	case domain.StrategyMemoryFirst:
		return memoryFirst{}, nil
	case domain.StrategyExternalFirst:
		return externalFirst{}, nil
	case domain.StrategyBalanced:
		return balanced{}, nil
	case domain.StrategyMemoryOnly:
		return memoryOnly{}, nil
	case domain.StrategyExternalOnly:
		return externalOnly{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

func (memoryFirst) decide(reg *SourceRegistry) domain.RoutingDecision {
	var sources []string
	reasoning := "Memory-first strategy: "

	webID, hasWeb := reg.GetByType(domain.SourceTypeWebSearch)
	if memID, ok := reg.GetByType(domain.SourceTypeMemory); ok {
		sources = append(sources, memID)
		reasoning += "querying memory first"
		if hasWeb {
			sources = append(sources, webID)
			reasoning += ", with web fallback"
		}
	} else if hasWeb {
		sources = append(sources, webID)
		reasoning = "No memory source available, using web search"
	} else {
		reasoning += "no memory or web search source available"
	}

	quality := 0.5
	if len(sources) >= 1 {
		quality = 0.8
	}
	return domain.RoutingDecision{
		Strategy:        domain.StrategyMemoryFirst,
		SourcesToQuery:  nonNil(sources),
		ExpectedQuality: quality,
		Reasoning:       reasoning,
	}
}

func (externalFirst) decide(reg *SourceRegistry) domain.RoutingDecision {
	var sources []string
	if id, ok := reg.GetByType(domain.SourceTypeWebSearch); ok {
		sources = append(sources, id)
	}
	if id, ok := reg.GetByType(domain.SourceTypeMemory); ok {
		sources = append(sources, id)
	}

	quality := 0.6
	if len(sources) == 2 {
		quality = 0.85
	}
	return domain.RoutingDecision{
		Strategy:        domain.StrategyExternalFirst,
		SourcesToQuery:  nonNil(sources),
		ExpectedQuality: quality,
		Reasoning:       fmt.Sprintf("External-first strategy: querying %d sources", len(sources)),
	}
}

func (balanced) decide(reg *SourceRegistry) domain.RoutingDecision {
	sources := reg.IDs()
	return domain.RoutingDecision{
		Strategy:        domain.StrategyBalanced,
		SourcesToQuery:  sources,
		ExpectedQuality: 0.9,
		Reasoning:       fmt.Sprintf("Balanced strategy: querying all %d sources", len(sources)),
	}
}

func (memoryOnly) decide(reg *SourceRegistry) domain.RoutingDecision {
	return single(reg, domain.SourceTypeMemory, domain.StrategyMemoryOnly, 0.75, "Memory-only strategy")
}

func (externalOnly) decide(reg *SourceRegistry) domain.RoutingDecision {
	return single(reg, domain.SourceTypeWebSearch, domain.StrategyExternalOnly, 0.7, "External-only strategy")
}

func single(reg *SourceRegistry, t domain.SourceType, s domain.RoutingStrategy, quality float64, reasoning string) domain.RoutingDecision {
	sources := []string{}
	if id, ok := reg.GetByType(t); ok {
		sources = append(sources, id)
	} else {
		quality = 0
	}
	return domain.RoutingDecision{
		Strategy:        s,
		SourcesToQuery:  sources,
		ExpectedQuality: quality,
		Reasoning:       reasoning,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
