package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/quickbite/payment-service/gateway"
	"github.com/quickbite/payment-service/notifier"
)

// fakeGateway counts intent creations and serves canned webhook events.
type fakeGateway struct {
	mu          sync.Mutex
	createCalls int
	createErr   error
	verifyErr   error
	event       *gateway.Event
	lastMeta    gateway.IntentMetadata
}

func (f *fakeGateway) CreateIntent(_ context.Context, amount int64, currency string, meta gateway.IntentMetadata) (*gateway.Intent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}
	f.createCalls++
	f.lastMeta = meta
	id := fmt.Sprintf("order_rz_%d", f.createCalls)
	return &gateway.Intent{
		ID:     id,
		Secret: "secret_" + id,
		Status: "created",
	}, nil
}

func (f *fakeGateway) VerifyAndParseEvent(_ []byte, _ string) (*gateway.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.event, nil
}

func (f *fakeGateway) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createCalls
}

func (f *fakeGateway) metadata() gateway.IntentMetadata {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastMeta
}

// fakeNotifier records outcome deliveries.
type fakeNotifier struct {
	mu       sync.Mutex
	err      error
	outcomes []notifier.Outcome
}

func (f *fakeNotifier) NotifyOutcome(_ notifier.Contact, outcome notifier.Outcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.outcomes = append(f.outcomes, outcome)
	return nil
}

func (f *fakeNotifier) delivered() []notifier.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot := make([]notifier.Outcome, len(f.outcomes))
	copy(snapshot, f.outcomes)
	return snapshot
}
