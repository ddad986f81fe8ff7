package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/quickbite/payment-service/models"
)

// GormStore is the Postgres-backed PaymentStore. The unique indexes on
// order_id and gateway_order_id are the arbiter for concurrent inserts;
// status transitions are single guarded UPDATEs so concurrent writers
// cannot clobber each other.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a PaymentStore backed by the given database. The
// gorm connection must be opened with TranslateError so duplicate-key
// violations surface as gorm.ErrDuplicatedKey.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) FindByOrderID(ctx context.Context, orderID string) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *GormStore) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	err := s.db.WithContext(ctx).Where("gateway_order_id = ?", gatewayOrderID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (s *GormStore) Insert(ctx context.Context, record *models.PaymentRecord) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateOrder
		}
		return err
	}
	return nil
}

func (s *GormStore) RenewForRetry(ctx context.Context, orderID string, update RetryUpdate) (bool, error) {
	result := s.db.WithContext(ctx).Model(&models.PaymentRecord{}).
		Where("order_id = ? AND status = ?", orderID, models.PaymentStatusFailed).
		Updates(map[string]interface{}{
			"status":           models.PaymentStatusPending,
			"amount":           update.Amount,
			"currency":         update.Currency,
			"gateway_order_id": update.GatewayOrderID,
			"gateway_secret":   update.GatewaySecret,
			"email":            update.Email,
			"phone":            update.Phone,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *GormStore) TransitionStatus(ctx context.Context, orderID, from, to string) (bool, error) {
	result := s.db.WithContext(ctx).Model(&models.PaymentRecord{}).
		Where("order_id = ? AND status = ?", orderID, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *GormStore) RecordWebhookEvent(ctx context.Context, entry *models.WebhookEventLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *GormStore) List(ctx context.Context, filter ListFilter) ([]models.PaymentRecord, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.PaymentRecord{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at <= ?", filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.PaymentRecord
	query = query.Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
