package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Harshitk-cp/contentmesh/internal/bootstrap"
	"github.com/Harshitk-cp/contentmesh/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func offlineEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONTENTMESH_ENV", t.TempDir()+"/none.env")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MEMORY_BACKEND", "keyword")
	t.Setenv("EMBEDDING_PROVIDER", "mock")
	t.Setenv("SEARCH_PROVIDER", "mock")
	t.Setenv("CONTRADICTION_DETECTOR", "none")
	t.Setenv("REDIS_URL", "")
	t.Setenv("SCORING_PROFILE", "")
}

func run(t *testing.T, build buildFunc, args ...string) (string, error) {
	t.Helper()
	if build == nil {
		build = bootstrap.Build
	}
	cmd := newRootCmd(build)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRouteCommand(t *testing.T) {
	offlineEnv(t)

	out, err := run(t, nil, "route", "--strategy", "external_first", "what", "is", "pgvector")
	require.NoError(t, err)
	assert.Contains(t, out, "sources:          web, memory")

	out, err = run(t, nil, "-o", "json", "route", "pgvector")
	require.NoError(t, err)
	var d domain.RoutingDecision
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.Equal(t, domain.StrategyMemoryFirst, d.Strategy)

	_, err = run(t, nil, "route", "--strategy", "fastest", "q")
	assert.ErrorContains(t, err, "unknown routing strategy")
}

func TestQueryCommand(t *testing.T) {
	offlineEnv(t)

	out, err := run(t, nil, "query", "--strategy", "external_only", "--limit", "2", "go", "generics")
	require.NoError(t, err)
	assert.Contains(t, out, "strategy: external_only")
	assert.Contains(t, out, "web      success  2 results")
	assert.Contains(t, out, "quality:")

	_, err = run(t, nil, "query", "--limit", "-1", "go")
	assert.Error(t, err)
}

func TestScoreCommand(t *testing.T) {
	offlineEnv(t)

	out, err := run(t, nil, "-o", "json", "score", "--source-type", "verified_api", "--relevance", "1", "a", "verified", "fact")
	require.NoError(t, err)
	var res domain.ScoreResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Len(t, res.Components, 7)

	out, err = run(t, nil, "score", "short")
	require.NoError(t, err)
	assert.Contains(t, out, "overall:")

	_, err = run(t, nil, "score", "--created-at", "yesterday", "x")
	assert.ErrorContains(t, err, "RFC 3339")

	_, err = run(t, nil, "score", "--relevance", "5", "x")
	assert.ErrorContains(t, err, "relevance must be between 0 and 1")
}

func TestSourcesCommand(t *testing.T) {
	offlineEnv(t)

	out, err := run(t, nil, "sources")
	require.NoError(t, err)
	assert.Contains(t, out, "memory")
	assert.Contains(t, out, "web")
}

func TestInvalidOutputFormat(t *testing.T) {
	offlineEnv(t)

	_, err := run(t, nil, "-o", "yaml", "sources")
	assert.ErrorContains(t, err, "invalid output format")
}

func TestBuildFailureSurfaces(t *testing.T) {
	offlineEnv(t)
	failing := func(context.Context, *zap.Logger) (*bootstrap.Components, error) {
		return nil, errors.New("no backends")
	}

	_, err := run(t, failing, "sources")
	assert.EqualError(t, err, "no backends")
}

func TestMigrateRequiresDatabase(t *testing.T) {
	offlineEnv(t)

	_, err := run(t, nil, "migrate")
	assert.ErrorContains(t, err, "DATABASE_URL is required")
}

func TestVersionCommand(t *testing.T) {
	offlineEnv(t)

	out, err := run(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "contentctl dev")
}
