package models

import "time"

type Restaurant struct {
	ID       string `gorm:"primaryKey"`
	Name     string `gorm:"type:varchar(128);not null"`
	Currency string `gorm:"type:varchar(8);not null"`
	IsActive bool   `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Taxes         []Tax          `gorm:"foreignKey:RestaurantID"`
	ExchangeRates []ExchangeRate `gorm:"foreignKey:RestaurantID"`
	MenuItems     []MenuItem     `gorm:"foreignKey:RestaurantID"`
}

type Tax struct {
	ID            int32  `gorm:"primaryKey;autoIncrement"`
	RestaurantID  string `gorm:"index;not null"`
	Name          string `gorm:"type:varchar(64);not null"`
	LocalizedName string `gorm:"type:varchar(64)"`
	Percentage    string `gorm:"type:varchar(32);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type ExchangeRate struct {
	ID           int32  `gorm:"primaryKey;autoIncrement"`
	RestaurantID string `gorm:"index;not null"`
	Currency     string `gorm:"type:varchar(8);not null"`
	Rate         string `gorm:"type:varchar(32);not null"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type MenuItem struct {
	ID              string  `gorm:"primaryKey"`
	RestaurantID    string  `gorm:"index;not null"`
	Name            string  `gorm:"type:varchar(128);not null"`
	Price           string  `gorm:"type:varchar(32);not null"`
	DiscountPercent string  `gorm:"type:varchar(32);default:'0'"`
	ImageUrl        *string `gorm:"type:varchar(256)"`
	IsActive        bool    `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	ExtraGroups []ExtraGroup `gorm:"foreignKey:MenuItemID"`
}

type ExtraGroup struct {
	ID         string `gorm:"primaryKey"`
	MenuItemID string `gorm:"index;not null"`
	Name       string `gorm:"type:varchar(64);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Options []ExtraOption `gorm:"foreignKey:GroupID"`
}

type ExtraOption struct {
	ID        string `gorm:"primaryKey"`
	GroupID   string `gorm:"index;not null"`
	Name      string `gorm:"type:varchar(64);not null"`
	Price     string `gorm:"type:varchar(32);not null;default:'0'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
