package main_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/serp"
	main "github.com/fwojciec/serp/cmd/serp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnginesCmd_Run(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	deps := &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: &bytes.Buffer{},
	}

	err := (&main.EnginesCmd{}).Run(deps)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	require.Len(t, lines, len(serp.Engines())+1)
	assert.Contains(t, lines[0], "ENGINE")

	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		require.Len(t, fields, 3)
		switch serp.Engine(fields[0]) {
		case serp.EngineGoogle, serp.EngineStartpage, serp.EngineYandex:
			assert.Equal(t, "yes", fields[1], line)
		default:
			assert.Equal(t, "no", fields[1], line)
		}
	}
	assert.Contains(t, stdout.String(), "https://www.google.com/search?q=")
}
