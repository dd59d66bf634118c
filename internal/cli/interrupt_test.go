package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterruptHandler_ParentCancel(t *testing.T) {
	var buf bytes.Buffer
	h := NewInterruptHandler(&buf, "")

	parent, cancel := context.WithCancel(context.Background())
	ctx := h.HandleInterrupts(parent)
	cancel()

	<-ctx.Done()
	assert.False(t, h.WasInterrupted())
	assert.Empty(t, buf.String())
}
