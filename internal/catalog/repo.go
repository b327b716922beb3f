package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"qmenus-system/internal/currency"
	"qmenus-system/internal/database/models"
	"qmenus-system/internal/pricing"
)

const (
	CATALOG_CACHE_PREFIX         = "catalog:"
	CATALOG_RESTAURANT_CACHE     = "catalog:restaurant:"
	CATALOG_MENU_CACHE           = "catalog:menu:"
	CATALOG_CACHE_TTL_RESTAURANT = 30 * time.Minute
	CATALOG_CACHE_TTL_MENU       = 5 * time.Minute
)

var ErrNotFound = errors.New("catalog: not found")

// Repository is the cached read model over the catalog database. Reads go
// through redis first and fall back to the DB; cache failures degrade to
// DB reads, never to errors.
type Repository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewRepository(db *gorm.DB, redisClient *redis.Client) *Repository {
	return &Repository{
		db:    db,
		redis: redisClient,
	}
}

func MigrateCatalogDB(db *gorm.DB) error {
	db.AutoMigrate(&models.Restaurant{})
	db.AutoMigrate(&models.Tax{})
	db.AutoMigrate(&models.ExchangeRate{})
	db.AutoMigrate(&models.MenuItem{})
	db.AutoMigrate(&models.ExtraGroup{})
	db.AutoMigrate(&models.ExtraOption{})
	return nil
}

func (r *Repository) InvalidateCatalogCaches(ctx context.Context, restaurantID string) {
	_ = r.redis.Del(ctx,
		CATALOG_RESTAURANT_CACHE+restaurantID,
		CATALOG_MENU_CACHE+restaurantID,
	)
}

// Restaurant returns the pricing context: base currency, the ordered tax
// list, and active exchange rates.
func (r *Repository) Restaurant(ctx context.Context, id string) (Restaurant, error) {
	cacheKey := CATALOG_RESTAURANT_CACHE + id

	var cached Restaurant
	if ok := r.cacheGet(ctx, cacheKey, &cached); ok {
		return cached, nil
	}

	var record models.Restaurant
	err := r.db.WithContext(ctx).
		Preload("Taxes").
		Preload("ExchangeRates").
		First(&record, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return Restaurant{}, fmt.Errorf("restaurant %s: %w", id, ErrNotFound)
		}
		return Restaurant{}, fmt.Errorf("load restaurant %s: %w", id, err)
	}

	restaurant := restaurantFromRecord(record)
	r.cacheSet(ctx, cacheKey, restaurant, CATALOG_CACHE_TTL_RESTAURANT)
	return restaurant, nil
}

// Menu returns the restaurant's active menu items with their extras.
func (r *Repository) Menu(ctx context.Context, restaurantID string) ([]MenuItem, error) {
	cacheKey := CATALOG_MENU_CACHE + restaurantID

	var cached []MenuItem
	if ok := r.cacheGet(ctx, cacheKey, &cached); ok {
		return cached, nil
	}

	var records []models.MenuItem
	err := r.db.WithContext(ctx).
		Preload("ExtraGroups.Options").
		Where("restaurant_id = ? AND is_active = ?", restaurantID, true).
		Order("name ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load menu for %s: %w", restaurantID, err)
	}

	items := make([]MenuItem, 0, len(records))
	for _, record := range records {
		items = append(items, menuItemFromRecord(record))
	}
	r.cacheSet(ctx, cacheKey, items, CATALOG_CACHE_TTL_MENU)
	return items, nil
}

// MenuItem returns one active menu item by id.
func (r *Repository) MenuItem(ctx context.Context, restaurantID, itemID string) (MenuItem, error) {
	items, err := r.Menu(ctx, restaurantID)
	if err != nil {
		return MenuItem{}, err
	}
	for _, item := range items {
		if item.ID == itemID {
			return item, nil
		}
	}
	return MenuItem{}, fmt.Errorf("menu item %s: %w", itemID, ErrNotFound)
}

func (r *Repository) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if r.redis == nil {
		return false
	}
	val, err := r.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			fmt.Printf("Redis error on GET: %v. Falling back to DB.\n", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (r *Repository) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if r.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		fmt.Printf("Failed to set cache for key %s: %v\n", key, err)
	}
}

func restaurantFromRecord(record models.Restaurant) Restaurant {
	taxes := make([]pricing.Tax, 0, len(record.Taxes))
	for _, tax := range record.Taxes {
		taxes = append(taxes, pricing.Tax{
			Name:          tax.Name,
			LocalizedName: tax.LocalizedName,
			Percentage:    parseAmount(tax.Percentage),
		})
	}

	rates := make([]currency.ExchangeRate, 0, len(record.ExchangeRates))
	for _, rate := range record.ExchangeRates {
		rates = append(rates, currency.ExchangeRate{
			Currency:     rate.Currency,
			ExchangeRate: parseAmount(rate.Rate),
			IsActive:     rate.IsActive,
		})
	}

	return Restaurant{
		ID:       record.ID,
		Name:     record.Name,
		Currency: record.Currency,
		Taxes:    taxes,
		Rates:    rates,
	}
}

func menuItemFromRecord(record models.MenuItem) MenuItem {
	extras := make([]ExtraGroup, 0, len(record.ExtraGroups))
	for _, group := range record.ExtraGroups {
		options := make([]ExtraOption, 0, len(group.Options))
		for _, option := range group.Options {
			options = append(options, ExtraOption{
				ID:    option.ID,
				Name:  option.Name,
				Price: parseAmount(option.Price),
			})
		}
		extras = append(extras, ExtraGroup{
			ID:      group.ID,
			Name:    group.Name,
			Options: options,
		})
	}

	return MenuItem{
		ID:              record.ID,
		Name:            record.Name,
		Price:           parseAmount(record.Price),
		DiscountPercent: parseAmount(record.DiscountPercent),
		Extras:          extras,
	}
}

func parseAmount(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
