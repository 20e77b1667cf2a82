package clockguard

import (
	"context"
	"testing"

	"github.com/layer-3/clockguard/adapters/random"
	"github.com/layer-3/clockguard/adapters/render"
	"github.com/layer-3/clockguard/adapters/store"
	"github.com/layer-3/clockguard/core"
	"github.com/layer-3/clockguard/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine() Engine {
	rnd := random.New()
	return service.NewCaptchaService(rnd, render.NewSVGRenderer(rnd), store.NewMemoryStore(), core.DefaultPolicy())
}

func TestEngineRoundTrip(t *testing.T) {
	engine := newEngine()
	ctx := context.Background()

	issued, err := engine.Issue(ctx, core.DifficultyHard)
	require.NoError(t, err)
	assert.Equal(t, render.ContentType, issued.Image.ContentType)
	assert.Contains(t, string(issued.Image.Data), "<svg")

	img, err := engine.Image(ctx, issued.SessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, img.Data)

	// the answer is not exposed, so a blind guess is at best lucky
	res, err := engine.Verify(ctx, issued.SessionID, 0, 0)
	require.NoError(t, err)
	assert.Contains(t, []core.Outcome{core.OutcomeVerified, core.OutcomeIncorrect}, res.Outcome)
}
