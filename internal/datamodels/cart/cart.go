package cart

import (
	"context"
	"time"
)

// Item 购物车行，同一用户同一商品只保留一行
type Item struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	UserID    int64     `gorm:"index:idx_cart_user_product,unique;not null" json:"user_id"`
	ProductID int64     `gorm:"index:idx_cart_user_product,unique;not null" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository 购物车仓储接口
type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]*Item, error)
	Get(ctx context.Context, userID, productID int64) (*Item, error)
	Save(ctx context.Context, item *Item) error
	Delete(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
}
