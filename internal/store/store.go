package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-market-backend/internal/model"
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("store: not found")

// Store defines the interface for all persistence operations.
type Store interface {
	// UpsertListings applies a batch of ingestion observations: creates
	// unseen listings, refreshes known ones, and appends a price sample
	// only when the price actually changed.
	UpsertListings(ctx context.Context, now time.Time, items []ListingUpsert) error
	ListListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error)
	FindListing(ctx context.Context, id string) (*model.Listing, error)
	FindActiveListingsByCity(ctx context.Context, city string) ([]model.Listing, error)
	DistinctActiveCities(ctx context.Context) ([]string, error)

	FindLatestSnapshot(ctx context.Context, city string) (*model.MarketSnapshot, error)
	ListSnapshots(ctx context.Context, city string, limit int) ([]model.MarketSnapshot, error)
	// AppendSnapshot writes a new snapshot record; snapshots are never
	// updated in place.
	AppendSnapshot(ctx context.Context, snap *model.MarketSnapshot) error

	SaveSubscription(ctx context.Context, sub model.AlertSubscription, cities []string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.AlertSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	SubscribersForCity(ctx context.Context, city string) ([]model.AlertSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// UpsertListings processes a batch of observations transactionally.
func (s *gormStore) UpsertListings(ctx context.Context, now time.Time, items []ListingUpsert) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if err := upsertOne(tx, now, item); err != nil {
				return fmt.Errorf("upsert listing (%s, %s): %w", item.SourcePlatform, item.ExternalID, err)
			}
		}
		return nil
	})
}

func upsertOne(tx *gorm.DB, now time.Time, item ListingUpsert) error {
	observed := item.ObservedAt
	if observed.IsZero() {
		observed = now
	}

	var listing model.Listing
	err := tx.Preload("PriceHistory").
		Where("source_platform = ? AND external_id = ?", item.SourcePlatform, item.ExternalID).
		First(&listing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		listing = model.Listing{
			ID:             uuid.NewString(),
			Name:           item.Name,
			Type:           item.Type,
			City:           item.City,
			State:          item.State,
			CurrentPrice:   item.Price,
			Rating:         item.Rating,
			SourcePlatform: item.SourcePlatform,
			ExternalID:     item.ExternalID,
			IsActive:       true,
			LastScrapedAt:  observed,
			Availability: model.Availability{
				IsAvailable:   item.Available,
				LastChecked:   observed,
				OccupancyRate: item.OccupancyRate,
			},
		}
		model.RecordPrice(&listing, model.PriceSample{
			Timestamp:     observed,
			Price:         item.Price,
			Available:     item.Available,
			OccupancyRate: item.OccupancyRate,
		}, now)
		return tx.Create(&listing).Error
	}
	if err != nil {
		return err
	}

	priceChanged := !listing.CurrentPrice.Equal(item.Price)

	listing.Name = item.Name
	listing.Type = item.Type
	listing.Rating = item.Rating
	listing.LastScrapedAt = observed
	listing.IsActive = true
	listing.Availability = model.Availability{
		IsAvailable:   item.Available,
		LastChecked:   observed,
		OccupancyRate: item.OccupancyRate,
	}

	if priceChanged {
		model.RecordPrice(&listing, model.PriceSample{
			Timestamp:     observed,
			Price:         item.Price,
			Available:     item.Available,
			OccupancyRate: item.OccupancyRate,
		}, now)

		// Persist the fresh sample and mirror the in-memory pruning.
		for i := range listing.PriceHistory {
			if listing.PriceHistory[i].ID == 0 {
				if err := tx.Create(&listing.PriceHistory[i]).Error; err != nil {
					return err
				}
			}
		}
		cutoff := now.AddDate(0, 0, -model.RetentionDays)
		if err := tx.Where("listing_id = ? AND timestamp < ?", listing.ID, cutoff).
			Delete(&model.PriceSample{}).Error; err != nil {
			return err
		}
	}

	return tx.Omit(clause.Associations).Save(&listing).Error
}

func (s *gormStore) ListListings(ctx context.Context, filter ListingFilter) ([]model.Listing, error) {
	q := s.db.WithContext(ctx).Where("is_active = ?", true)

	if filter.City != "" {
		q = q.Where("LOWER(city) = LOWER(?)", filter.City)
	}
	if filter.State != "" {
		q = q.Where("LOWER(state) = LOWER(?)", filter.State)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.MinPrice != nil {
		q = q.Where("current_price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		q = q.Where("current_price <= ?", filter.MaxPrice)
	}
	if filter.MinRating != nil {
		q = q.Where("rating_score >= ?", filter.MinRating)
	}
	if filter.AvailableOnly {
		q = q.Where("is_available = ?", true)
	}

	var listings []model.Listing
	if err := q.Order("id").Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return listings, nil
}

func (s *gormStore) FindListing(ctx context.Context, id string) (*model.Listing, error) {
	var listing model.Listing
	err := s.db.WithContext(ctx).Preload("PriceHistory").First(&listing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find listing %s: %w", id, err)
	}
	return &listing, nil
}

func (s *gormStore) FindActiveListingsByCity(ctx context.Context, city string) ([]model.Listing, error) {
	var listings []model.Listing
	err := s.db.WithContext(ctx).Preload("PriceHistory").
		Where("LOWER(city) = LOWER(?) AND is_active = ?", city, true).
		Order("id").
		Find(&listings).Error
	if err != nil {
		return nil, fmt.Errorf("find listings for %s: %w", city, err)
	}
	return listings, nil
}

func (s *gormStore) DistinctActiveCities(ctx context.Context) ([]string, error) {
	var cities []string
	err := s.db.WithContext(ctx).Model(&model.Listing{}).
		Where("is_active = ?", true).
		Distinct().
		Order("city").
		Pluck("city", &cities).Error
	if err != nil {
		return nil, fmt.Errorf("distinct cities: %w", err)
	}
	return cities, nil
}

func (s *gormStore) FindLatestSnapshot(ctx context.Context, city string) (*model.MarketSnapshot, error) {
	var snap model.MarketSnapshot
	err := s.db.WithContext(ctx).
		Where("LOWER(city) = LOWER(?)", city).
		Order("analysis_date DESC").
		First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot for %s: %w", city, err)
	}
	return &snap, nil
}

func (s *gormStore) ListSnapshots(ctx context.Context, city string, limit int) ([]model.MarketSnapshot, error) {
	var snaps []model.MarketSnapshot
	err := s.db.WithContext(ctx).
		Where("LOWER(city) = LOWER(?)", city).
		Order("analysis_date DESC").
		Limit(limit).
		Find(&snaps).Error
	if err != nil {
		return nil, fmt.Errorf("snapshot history for %s: %w", city, err)
	}
	return snaps, nil
}

func (s *gormStore) AppendSnapshot(ctx context.Context, snap *model.MarketSnapshot) error {
	if err := s.db.WithContext(ctx).Create(snap).Error; err != nil {
		return fmt.Errorf("append snapshot for %s: %w", snap.City, err)
	}
	return nil
}

func (s *gormStore) SaveSubscription(ctx context.Context, sub model.AlertSubscription, cities []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "endpoint"}},
			DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth"}),
		}).Create(&sub).Error; err != nil {
			return err
		}

		// Replace the watched-city set wholesale.
		if err := tx.Where("endpoint = ?", sub.Endpoint).
			Delete(&model.SubscriptionCity{}).Error; err != nil {
			return err
		}
		for _, city := range cities {
			sc := model.SubscriptionCity{Endpoint: sub.Endpoint, City: city}
			if err := tx.Create(&sc).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *gormStore) GetSubscription(ctx context.Context, endpoint string) (*model.AlertSubscription, error) {
	var sub model.AlertSubscription
	err := s.db.WithContext(ctx).Preload("Cities").First(&sub, "endpoint = ?", endpoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &sub, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.AlertSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

func (s *gormStore) SubscribersForCity(ctx context.Context, city string) ([]model.AlertSubscription, error) {
	var subs []model.AlertSubscription
	err := s.db.WithContext(ctx).
		Joins("JOIN subscription_cities sc ON sc.endpoint = alert_subscriptions.endpoint").
		Where("LOWER(sc.city) = LOWER(?)", city).
		Find(&subs).Error
	if err != nil {
		return nil, fmt.Errorf("subscribers for %s: %w", city, err)
	}
	return subs, nil
}
