package queue

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRetryableClassification(t *testing.T) {
	assert.False(t, retryable(appErrors.NewCampaignNotFound(42)))
	assert.False(t, retryable(appErrors.NewInvalidCampaignState(42, "RUNNING")))
	assert.True(t, retryable(fmt.Errorf("dial tcp: connection refused")))
}

func TestInMemoryQueueRetriesTransientFailure(t *testing.T) {
	q := NewInMemoryQueue(discardLogger())

	var (
		mu       sync.Mutex
		attempts int
	)
	done := make(chan struct{})
	q.Subscribe(func(campaignID int) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			return fmt.Errorf("broker hiccup")
		}
		close(done)
		return nil
	})

	require.NoError(t, q.PublishLaunch(7))

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("job was not retried")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, attempts)
}

func TestInMemoryQueueDropsNonRetryableJob(t *testing.T) {
	q := NewInMemoryQueue(discardLogger())

	var (
		mu       sync.Mutex
		attempts int
	)
	first := make(chan struct{})
	q.Subscribe(func(campaignID int) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts == 1 {
			close(first)
		}
		return appErrors.NewInvalidCampaignState(campaignID, "COMPLETED")
	})

	require.NoError(t, q.PublishLaunch(7))

	select {
	case <-first:
	case <-time.After(3 * time.Second):
		t.Fatal("job never ran")
	}
	// Wait out the first backoff window; a retry would land within it.
	time.Sleep(700 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, attempts, "precondition failures must not be redelivered")
}
