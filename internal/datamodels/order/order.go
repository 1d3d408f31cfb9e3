package order

import (
	"context"
	"time"
)

// 订单状态。状态集合是开放的，后台可以写入其他标签。
const (
	StatusPending    = "Pending"    // 已下单，等待 worker 接单
	StatusProcessing = "Processing" // 处理中
	StatusDelivered  = "Delivered"  // 已送达
	StatusCancelled  = "Cancelled"  // 已取消
)

// Order 订单模型
// 金额单位为分。下单后除 Status/UpdatedAt 外不再变更。
// PlacedAt 为零值表示缺失下单时间（历史脏数据），聚合时按策略跳过。
type Order struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	OrderNo     string    `gorm:"uniqueIndex;size:64;not null" json:"order_no"`
	UserID      int64     `gorm:"index" json:"user_id"`
	Status      string    `gorm:"index;size:32;not null" json:"status"`
	Subtotal    int64     `json:"subtotal"`
	DeliveryFee int64     `json:"delivery_fee"`
	Tax         int64     `json:"tax"`
	Total       int64     `gorm:"not null" json:"total"`
	Email       string    `gorm:"index;size:128" json:"email"`
	FirstName   string    `gorm:"size:64" json:"first_name"`
	LastName    string    `gorm:"size:64" json:"last_name"`
	PlacedAt    time.Time `gorm:"index" json:"placed_at"`
	Items       []Item    `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Item 订单行，下单时快照商品名称/单价/分类
type Item struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	OrderID   int64  `gorm:"index;not null" json:"order_id"`
	ProductID int64  `gorm:"index;not null" json:"product_id"`
	Name      string `gorm:"size:128" json:"name"`
	Price     int64  `gorm:"not null" json:"price"`
	Category  string `gorm:"size:32" json:"category"`
	Quantity  int64  `gorm:"not null" json:"quantity"`
}

// Repository 订单仓储接口
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByOrderNo(ctx context.Context, orderNo string) (*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	ListRecent(ctx context.Context, limit int) ([]*Order, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}
