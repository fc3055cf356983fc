// internal/provider/mock.go
package provider

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"

	appErrors "github.com/ushanirp/messaging-platfor-twilio-poc/internal/errors"
)

// MockSender simulates the provider for local development: it returns a
// fake SID and fails a configurable fraction of sends.
type MockSender struct {
	FailureRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

func NewMockSender(failureRate float64, seed int64) *MockSender {
	return &MockSender{
		FailureRate: failureRate,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

func (s *MockSender) Send(ctx context.Context, from, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", appErrors.NewTransportError(to, err.Error())
	}
	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()
	if roll < s.FailureRate {
		return "", appErrors.NewTransportError(to, "mock send failed")
	}
	return "SM" + strings.ReplaceAll(uuid.NewString(), "-", ""), nil
}

var _ Sender = (*MockSender)(nil)
