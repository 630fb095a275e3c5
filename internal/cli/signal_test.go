//go:build !windows

package cli

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalContext(t *testing.T) {
	t.Run("cancel", func(t *testing.T) {
		ctx := NewSignalContext(context.Background())
		ctx.Cancel()
		<-ctx.Done()
		assert.Nil(t, ctx.Signal())
	})

	t.Run("sigterm", func(t *testing.T) {
		ctx := NewSignalContext(context.Background())
		defer ctx.Cancel()

		require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))
		select {
		case <-ctx.Done():
		case <-time.After(2 * time.Second):
			t.Fatal("context not cancelled by SIGTERM")
		}
		assert.Equal(t, syscall.SIGTERM, ctx.Signal())
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})
}
