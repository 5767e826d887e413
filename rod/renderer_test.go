package rod_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/prospect"
	"github.com/fwojciec/prospect/rod"
	"github.com/stretchr/testify/assert"
)

// Ensure Renderer implements prospect.Renderer.
var _ prospect.Renderer = (*rod.Renderer)(nil)

func TestRenderer_CancelledContext(t *testing.T) {
	t.Parallel()

	r := rod.NewRenderer()
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Render(ctx, "https://acme.io", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderer_CloseWithoutRender(t *testing.T) {
	t.Parallel()

	r := rod.NewRenderer()

	assert.NoError(t, r.Close())
}

func TestRenderer_RenderAfterClose(t *testing.T) {
	t.Parallel()

	r := rod.NewRenderer()
	assert.NoError(t, r.Close())

	_, err := r.Render(context.Background(), "https://acme.io", time.Second)

	assert.Equal(t, prospect.EUNAVAILABLE, prospect.ErrorCode(err))
}
