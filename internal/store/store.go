package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"devocional-backend/internal/model"
)

// ErrNotFound is returned when a subscription lookup matches nothing.
var ErrNotFound = errors.New("subscription not found")

// Store defines the interface for all database operations.
type Store interface {
	// ListSubscriptions returns every subscription in insertion order.
	ListSubscriptions(ctx context.Context) ([]model.Subscription, error)
	GetSubscription(ctx context.Context, endpoint string) (*model.Subscription, error)
	FindByDeviceID(ctx context.Context, deviceID string) (*model.Subscription, error)
	// UpsertSubscription creates the subscription, or updates it in place
	// when the endpoint is already registered. DeviceID and CreatedAt are
	// never overwritten by an update.
	UpsertSubscription(ctx context.Context, sub *model.Subscription) error
	// TouchSubscription persists the refresh fields after a heartbeat.
	TouchSubscription(ctx context.Context, sub *model.Subscription) error
	DeleteByDeviceID(ctx context.Context, deviceID string) error
	DeleteByEndpoints(ctx context.Context, endpoints []string) error
	CountSubscriptions(ctx context.Context) (int64, error)

	DevotionalForDate(ctx context.Context, date string) (*model.Devotional, error)
	SaveNotificationLog(ctx context.Context, entry *model.NotificationLog) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	var subs []model.Subscription
	if err := s.db.WithContext(ctx).
		Order("created_at, endpoint").
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.Subscription, error) {
	var sub model.Subscription
	err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) FindByDeviceID(ctx context.Context, deviceID string) (*model.Subscription, error) {
	var sub model.Subscription
	err := s.db.WithContext(ctx).First(&sub, "device_id = ?", deviceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.Subscription) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"p256dh", "auth", "user_agent", "ip", "last_seen",
			"device_device_type", "device_os", "device_os_version", "device_browser", "device_icon",
			"location_country", "location_country_code", "location_city", "location_resolved",
		}),
	}).Create(sub).Error
}

func (s *gormStore) TouchSubscription(ctx context.Context, sub *model.Subscription) error {
	return s.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("endpoint = ?", sub.Endpoint).
		Updates(map[string]any{
			"last_seen":             sub.LastSeen,
			"user_agent":            sub.UserAgent,
			"ip":                    sub.IP,
			"device_device_type":    sub.Device.DeviceType,
			"device_os":             sub.Device.OS,
			"device_os_version":     sub.Device.OSVersion,
			"device_browser":        sub.Device.Browser,
			"device_icon":           sub.Device.Icon,
			"location_country":      sub.Location.Country,
			"location_country_code": sub.Location.CountryCode,
			"location_city":         sub.Location.City,
			"location_resolved":     sub.Location.Resolved,
		}).Error
}

func (s *gormStore) DeleteByDeviceID(ctx context.Context, deviceID string) error {
	res := s.db.WithContext(ctx).Delete(&model.Subscription{}, "device_id = ?", deviceID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *gormStore) DeleteByEndpoints(ctx context.Context, endpoints []string) error {
	if len(endpoints) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).
		Delete(&model.Subscription{}, "endpoint IN ?", endpoints).Error
}

func (s *gormStore) CountSubscriptions(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Subscription{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *gormStore) DevotionalForDate(ctx context.Context, date string) (*model.Devotional, error) {
	var dev model.Devotional
	err := s.db.WithContext(ctx).First(&dev, "date = ?", date).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &dev, nil
}

func (s *gormStore) SaveNotificationLog(ctx context.Context, entry *model.NotificationLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(entry).Error
}
