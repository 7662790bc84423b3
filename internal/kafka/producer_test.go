package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProducerCloseThenCancel(t *testing.T) {
	p := NewProducer([]string{"localhost:0"}, "orders", 4)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	// the api shutdown sequence: stop the inbox, then cancel the root ctx
	p.Close()
	cancel()
	p.WaitClosed()
}

func TestProducerCancelThenClose(t *testing.T) {
	p := NewProducer([]string{"localhost:0"}, "orders", 4)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	cancel()
	p.WaitClosed()

	// the ctx branch already closed the inbox; Close must stay safe
	assert.NotPanics(t, func() { p.Close() })
}
