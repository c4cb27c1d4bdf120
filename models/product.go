package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string  `gorm:"not null" json:"name"`
	Description  string  `json:"description"`
	SalePrice    float64 `json:"sale_price"`
	RegularPrice float64 `gorm:"not null" json:"regular_price"`
	Image        string  `json:"image"`
	Stock        int     `json:"stock"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// EffectivePrice is the price captured into a cart line: the sale price
// when one is set, otherwise the regular price.
func (p Product) EffectivePrice() float64 {
	if p.SalePrice > 0 {
		return p.SalePrice
	}
	return p.RegularPrice
}
