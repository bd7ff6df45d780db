package root

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
)

func TestGuideWalksEveryStep(t *testing.T) {
	style := catalog.BreathingStyle{
		Name:  "Test Breath",
		Reps:  2,
		Steps: []catalog.BreathStep{{Type: "Inhale", Duration: 2}, {Type: "Exhale", Duration: 1}},
	}
	var out bytes.Buffer
	require.NoError(t, guide(context.Background(), &out, style, 2, 0))
	s := out.String()
	assert.Contains(t, s, "[1/2] Inhale")
	assert.Contains(t, s, "[2/2] Exhale")
}

func TestGuideStopsOnCancel(t *testing.T) {
	style := catalog.BreathingStyle{Reps: 1, Steps: []catalog.BreathStep{{Type: "Hold", Duration: 5}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := guide(ctx, &bytes.Buffer{}, style, 1, 0)
	assert.ErrorIs(t, err, context.Canceled)
}
