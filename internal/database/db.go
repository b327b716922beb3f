package database

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"qmenus-system/internal/sync"
)

type StringArray []string

func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = []string{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan StringArray: %v", value)
	}

	return json.Unmarshal(bytes, a)
}

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	return json.Marshal(a)
}

func NewConnection(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		log.Fatal("DSN is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get sql.DB: %v", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}

// Closed Order Archive

type ClosedOrder struct {
	ID           string `gorm:"primaryKey"`
	RestaurantID string `gorm:"index;not null"`
	OrderType    string `gorm:"type:varchar(16);not null"`
	TableNumber  *int
	FinalStatus  string `gorm:"type:varchar(16);not null"`

	TotalAmount string `gorm:"type:varchar(32);not null"`
	Currency    string `gorm:"type:varchar(8);not null"`

	CustomerName    string  `gorm:"type:varchar(128)"`
	CustomerPhone   string  `gorm:"type:varchar(32)"`
	CustomerAddress *string `gorm:"type:text"`
	Notes           *string `gorm:"type:text"`

	PlacedAt time.Time
	ClosedAt time.Time `gorm:"autoCreateTime"`

	Items []ClosedOrderItem `gorm:"foreignKey:OrderID"`
}

type ClosedOrderItem struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"`
	OrderID string `gorm:"index;not null"`
	ItemID  string `gorm:"not null"`

	Name         string `gorm:"type:varchar(128);not null"`
	Quantity     int    `gorm:"not null"`
	LineTotal    string `gorm:"type:varchar(32);not null"`
	Discount     string `gorm:"type:varchar(32);not null"`
	Notes        *string
	Extras       StringArray `gorm:"type:text"`
	IsCustomItem bool        `gorm:"not null"`
}

func MigrateArchiveDB(db *gorm.DB) error {
	db.AutoMigrate(&ClosedOrder{})
	db.AutoMigrate(&ClosedOrderItem{})
	return nil
}

// OrderArchiver writes orders leaving the active set into the closed
// order archive. Archiving the same order id twice is a no-op.
type OrderArchiver struct {
	db           *gorm.DB
	restaurantID string
}

func NewOrderArchiver(db *gorm.DB, restaurantID string) *OrderArchiver {
	return &OrderArchiver{db: db, restaurantID: restaurantID}
}

func (a *OrderArchiver) Archive(ctx context.Context, order sync.Order) error {
	record := ClosedOrder{
		ID:              order.ID,
		RestaurantID:    a.restaurantID,
		OrderType:       string(order.OrderType),
		TableNumber:     order.TableNumber,
		FinalStatus:     string(order.Status),
		TotalAmount:     decimal.NewFromFloat(order.TotalPrice).StringFixed(2),
		Currency:        order.Currency,
		CustomerName:    order.CustomerName,
		CustomerPhone:   order.CustomerPhone,
		CustomerAddress: strPtr(order.CustomerAddress),
		Notes:           strPtr(order.Notes),
		PlacedAt:        order.CreatedAt,
	}

	for _, item := range order.Items {
		record.Items = append(record.Items, ClosedOrderItem{
			ItemID:       item.ID,
			Name:         item.Name,
			Quantity:     item.Quantity,
			LineTotal:    decimal.NewFromFloat(item.Price).StringFixed(2),
			Discount:     decimal.NewFromFloat(item.Discount).StringFixed(2),
			Notes:        strPtr(item.Notes),
			Extras:       flattenExtras(item.Extras),
			IsCustomItem: item.IsCustomItem,
		})
	}

	if err := a.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return fmt.Errorf("archive order %s: %w", order.ID, err)
	}
	return nil
}

// ClosedOrders returns the most recent archived orders, newest first.
func (a *OrderArchiver) ClosedOrders(ctx context.Context, limit int) ([]ClosedOrder, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []ClosedOrder
	err := a.db.WithContext(ctx).
		Preload("Items").
		Where("restaurant_id = ?", a.restaurantID).
		Order("closed_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list closed orders: %w", err)
	}
	return records, nil
}

// flattenExtras turns an extras selection into sorted "group:option"
// entries, one per selected option, for archival display and querying.
func flattenExtras(extras map[string][]string) StringArray {
	if len(extras) == 0 {
		return StringArray{}
	}
	out := make(StringArray, 0, len(extras))
	for group, options := range extras {
		for _, option := range options {
			out = append(out, group+":"+option)
		}
	}
	sort.Strings(out)
	return out
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
