package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings() Settings {
	s := DefaultSettings()
	s.MinRequests = 3
	s.Timeout = 50 * time.Millisecond
	return s
}

func TestBreaker_OpensAfterFailures(t *testing.T) {
	b := NewWithSettings("kafka-producer", testSettings())
	failure := errors.New("broker down")

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Execute(func() error { return failure }), failure)
	}
	require.Equal(t, gobreaker.StateOpen, b.State())

	called := false
	err := b.Execute(func() error {
		called = true
		return nil
	})

	assert.ErrorIs(t, err, ErrOpen)
	assert.Contains(t, err.Error(), "kafka-producer")
	assert.False(t, called, "открытый breaker не вызывает fn")
}

func TestBreaker_RecoversAfterTimeout(t *testing.T) {
	b := NewWithSettings("kafka-producer", testSettings())
	failure := errors.New("broker down")
	for i := 0; i < 3; i++ {
		_ = b.Execute(func() error { return failure })
	}
	require.Equal(t, gobreaker.StateOpen, b.State())

	require.Eventually(t, func() bool {
		return b.State() == gobreaker.StateHalfOpen
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_CanceledContextIsNotFailure(t *testing.T) {
	b := NewWithSettings("kafka-producer", testSettings())

	for i := 0; i < 5; i++ {
		err := b.Execute(func() error { return context.Canceled })
		assert.ErrorIs(t, err, context.Canceled)
	}

	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_Name(t *testing.T) {
	assert.Equal(t, "kafka-producer", New("kafka-producer").Name())
}
