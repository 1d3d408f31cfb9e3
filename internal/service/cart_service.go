package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/example/supermarket/internal/config"
	"github.com/example/supermarket/internal/datamodels/cart"
	"github.com/example/supermarket/internal/datamodels/product"
)

// CartLine 购物车行 + 商品快照，LineTotal = 单价 * 数量
type CartLine struct {
	ProductID int64            `json:"product_id"`
	Product   *product.Product `json:"product"`
	Quantity  int64            `json:"quantity"`
	LineTotal int64            `json:"line_total"`
}

// Quote 购物车计价结果，金额单位为分
type Quote struct {
	ItemCount   int64 `json:"item_count"` // 商品件数合计
	Subtotal    int64 `json:"subtotal"`
	DeliveryFee int64 `json:"delivery_fee"`
	Tax         int64 `json:"tax"`
	Savings     int64 `json:"savings"` // 相对划线价省下的金额
	Total       int64 `json:"total"`
}

type CartService struct {
	cartRepo    cart.Repository
	productRepo product.Repository
	pricing     *config.PricingConfig
}

func NewCartService(cartRepo cart.Repository, productRepo product.Repository, pricing *config.PricingConfig) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		pricing:     pricing,
	}
}

// AddItem 加购，已存在时累加数量
func (s *CartService) AddItem(ctx context.Context, userID, productID, quantity int64) error {
	if quantity <= 0 {
		return errors.New("数量必须大于 0")
	}
	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("商品不存在: %w", err)
	}
	if p.Status != 1 {
		return errors.New("商品已下架")
	}

	item, err := s.cartRepo.Get(ctx, userID, productID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		item = &cart.Item{UserID: userID, ProductID: productID}
	}
	item.Quantity += quantity
	return s.cartRepo.Save(ctx, item)
}

// UpdateQuantity 改数量，数量 <= 0 时移除该行
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID, quantity int64) error {
	if quantity <= 0 {
		return s.cartRepo.Delete(ctx, userID, productID)
	}
	item, err := s.cartRepo.Get(ctx, userID, productID)
	if err != nil {
		return err
	}
	item.Quantity = quantity
	return s.cartRepo.Save(ctx, item)
}

// RemoveItem 移除某行
func (s *CartService) RemoveItem(ctx context.Context, userID, productID int64) error {
	return s.cartRepo.Delete(ctx, userID, productID)
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, userID int64) error {
	return s.cartRepo.Clear(ctx, userID)
}

// Lines 返回购物车行及商品快照。
// 对应商品已被删除的行直接跳过，不让脏数据拖垮整个购物车。
func (s *CartService) Lines(ctx context.Context, userID int64) ([]*CartLine, error) {
	items, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]*CartLine, 0, len(items))
	for _, item := range items {
		p, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		lines = append(lines, &CartLine{
			ProductID: item.ProductID,
			Product:   p,
			Quantity:  item.Quantity,
			LineTotal: p.Price * item.Quantity,
		})
	}
	return lines, nil
}

// Quote 对购物车计价：小计 + 运费 + 税。
// 运费规则：小计严格大于门槛时免运费，否则收固定运费；空车返回全零。
func (s *CartService) Quote(ctx context.Context, userID int64) (*Quote, error) {
	lines, err := s.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	q := s.PriceLines(lines)
	return &q, nil
}

// PriceLines 纯计价逻辑，便于单测
func (s *CartService) PriceLines(lines []*CartLine) Quote {
	var q Quote
	if len(lines) == 0 {
		return q
	}

	for _, line := range lines {
		q.ItemCount += line.Quantity
		q.Subtotal += line.LineTotal
		if line.Product.OriginalPrice > line.Product.Price {
			q.Savings += (line.Product.OriginalPrice - line.Product.Price) * line.Quantity
		}
	}

	if q.Subtotal <= s.pricing.FreeDeliveryThreshold {
		q.DeliveryFee = s.pricing.DeliveryFee
	}
	q.Tax = q.Subtotal * s.pricing.TaxRatePercent / 100
	q.Total = q.Subtotal + q.DeliveryFee + q.Tax
	return q
}
