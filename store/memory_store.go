package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quickbite/payment-service/models"
)

// MemoryStore is an in-memory PaymentStore with the same uniqueness and
// conditional-write semantics as the Postgres store. Used by tests and
// local development.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   uint
	byOrder  map[string]*models.PaymentRecord
	byIntent map[string]string // gateway_order_id -> order_id
	events   []models.WebhookEventLog
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:   1,
		byOrder:  make(map[string]*models.PaymentRecord),
		byIntent: make(map[string]string),
	}
}

func (s *MemoryStore) FindByOrderID(_ context.Context, orderID string) (*models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byOrder[orderID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (s *MemoryStore) FindByGatewayOrderID(_ context.Context, gatewayOrderID string) (*models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	orderID, ok := s.byIntent[gatewayOrderID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	copied := *s.byOrder[orderID]
	return &copied, nil
}

func (s *MemoryStore) Insert(_ context.Context, record *models.PaymentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byOrder[record.OrderID]; exists {
		return ErrDuplicateOrder
	}
	if _, exists := s.byIntent[record.GatewayOrderID]; exists {
		return ErrDuplicateOrder
	}

	record.ID = s.nextID
	s.nextID++
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now

	copied := *record
	s.byOrder[record.OrderID] = &copied
	s.byIntent[record.GatewayOrderID] = record.OrderID
	return nil
}

func (s *MemoryStore) RenewForRetry(_ context.Context, orderID string, update RetryUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byOrder[orderID]
	if !ok || record.Status != models.PaymentStatusFailed {
		return false, nil
	}

	delete(s.byIntent, record.GatewayOrderID)
	record.Status = models.PaymentStatusPending
	record.Amount = update.Amount
	record.Currency = update.Currency
	record.GatewayOrderID = update.GatewayOrderID
	record.GatewaySecret = update.GatewaySecret
	record.Email = update.Email
	record.Phone = update.Phone
	record.UpdatedAt = time.Now()
	s.byIntent[record.GatewayOrderID] = orderID
	return true, nil
}

func (s *MemoryStore) TransitionStatus(_ context.Context, orderID, from, to string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.byOrder[orderID]
	if !ok || record.Status != from {
		return false, nil
	}
	record.Status = to
	record.UpdatedAt = time.Now()
	return true, nil
}

func (s *MemoryStore) RecordWebhookEvent(_ context.Context, entry *models.WebhookEventLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = uint(len(s.events) + 1)
	entry.CreatedAt = time.Now()
	s.events = append(s.events, *entry)
	return nil
}

func (s *MemoryStore) List(_ context.Context, filter ListFilter) ([]models.PaymentRecord, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []models.PaymentRecord
	for _, record := range s.byOrder {
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && record.CreatedAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && record.CreatedAt.After(filter.To) {
			continue
		}
		matched = append(matched, *record)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if filter.Limit > 0 {
		if filter.Offset >= len(matched) {
			return nil, total, nil
		}
		end := filter.Offset + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[filter.Offset:end]
	}
	return matched, total, nil
}

// WebhookEvents returns a snapshot of the recorded webhook log.
func (s *MemoryStore) WebhookEvents() []models.WebhookEventLog {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]models.WebhookEventLog, len(s.events))
	copy(snapshot, s.events)
	return snapshot
}
