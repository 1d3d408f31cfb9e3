package product

import (
	"context"
	"time"
)

// Product 商品模型
// 价格单位为分，OriginalPrice 为 0 表示没有划线价。
type Product struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"size:128;not null" json:"name"`
	Description   string    `gorm:"size:512" json:"description"`
	Price         int64     `gorm:"not null" json:"price"`
	OriginalPrice int64     `json:"original_price"`
	Discount      int       `json:"discount"` // 折扣百分比，0 表示无折扣
	Stock         int64     `gorm:"not null" json:"stock"`
	Rating        float64   `json:"rating"`
	Popularity    int       `json:"popularity"`
	Category      string    `gorm:"size:32;index" json:"category"`
	Unit          string    `gorm:"size:16" json:"unit"` // kg / liter / pack / piece
	Image         string    `gorm:"size:256" json:"image"`
	Featured      bool      `gorm:"index" json:"featured"`
	Status        int       `gorm:"index" json:"status"` // 0:下架 1:在售
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	ListAll(ctx context.Context) ([]*Product, error)
	ListOnline(ctx context.Context) ([]*Product, error)
	ListByCategory(ctx context.Context, category string) ([]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
}
