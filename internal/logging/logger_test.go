package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "info"}) })

	Info().Str("job", "fires").Msg("pipeline finished")

	out := buf.String()
	assert.Contains(t, out, `"message":"pipeline finished"`)
	assert.Contains(t, out, `"job":"fires"`)
	assert.Contains(t, out, `"level":"info"`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "info"}) })

	Info().Msg("hidden")
	Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestCtxCarriesIDs(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "info"}) })

	runID := uuid.MustParse("6f1c1a52-3c5f-4f0a-9f43-0b6f1b2c9a10")
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithRunID(ctx, runID)

	Ctx(ctx).Info().Msg("hello")

	out := buf.String()
	require.Contains(t, out, `"request_id":"req-1"`)
	require.Contains(t, out, `"run_id":"`+runID.String()+`"`)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"debug":   "debug",
		"WARNING": "warn",
		"":        "info",
		"bogus":   "info",
		"off":     "disabled",
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in).String(), "parseLevel(%q)", in)
	}
}
