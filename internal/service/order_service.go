package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/supermarket/internal/datamodels/cart"
	"github.com/example/supermarket/internal/datamodels/order"
	"github.com/example/supermarket/internal/datamodels/product"
	"github.com/example/supermarket/internal/datamodels/user"
)

// OrderQueue 下单事件队列
const OrderQueue = "order_queue"

// OrderMessage 下单事件，worker 消费后推进订单状态
type OrderMessage struct {
	OrderID int64  `json:"order_id"`
	OrderNo string `json:"order_no"`
	UserID  int64  `json:"user_id"`
}

type OrderService struct {
	db        *gorm.DB
	orderRepo order.Repository
	userRepo  user.Repository
	cartSvc   *CartService
	mqConn    *amqp.Connection
}

// NewOrderService 创建订单服务
func NewOrderService(db *gorm.DB, orderRepo order.Repository, userRepo user.Repository, cartSvc *CartService, mqConn *amqp.Connection) *OrderService {
	return &OrderService{
		db:        db,
		orderRepo: orderRepo,
		userRepo:  userRepo,
		cartSvc:   cartSvc,
		mqConn:    mqConn,
	}
}

// Checkout 结算购物车：生成订单（快照行项与计价）、扣减库存、清空购物车。
// 全部在一个事务里完成，提交后发布下单事件。
func (s *OrderService) Checkout(ctx context.Context, userID int64) (*order.Order, error) {
	GetMonitor().RecordCheckoutRequest()

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("用户不存在: %w", err)
	}

	lines, err := s.cartSvc.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errors.New("购物车为空")
	}
	quote := s.cartSvc.PriceLines(lines)

	o := &order.Order{
		OrderNo:     "ORD-" + uuid.NewString(),
		UserID:      userID,
		Status:      order.StatusPending,
		Subtotal:    quote.Subtotal,
		DeliveryFee: quote.DeliveryFee,
		Tax:         quote.Tax,
		Total:       quote.Total,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PlacedAt:    time.Now().UTC(),
	}
	for _, line := range lines {
		o.Items = append(o.Items, order.Item{
			ProductID: line.ProductID,
			Name:      line.Product.Name,
			Price:     line.Product.Price,
			Category:  line.Product.Category,
			Quantity:  line.Quantity,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 锁定并扣减库存
		for _, line := range lines {
			var p product.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&p, line.ProductID).Error; err != nil {
				return fmt.Errorf("商品不存在: %w", err)
			}
			if p.Stock < line.Quantity {
				return fmt.Errorf("商品 %s 库存不足", p.Name)
			}
			p.Stock -= line.Quantity
			if err := tx.Save(&p).Error; err != nil {
				return err
			}
		}

		// 2) 创建订单（级联写入行项）
		if err := tx.Create(o).Error; err != nil {
			return err
		}

		// 3) 清空购物车
		if err := tx.Where("user_id = ?", userID).
			Delete(&cart.Item{}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		GetMonitor().RecordCheckoutError()
		return nil, err
	}

	s.publishPlaced(ctx, o)
	GetMonitor().RecordCheckoutSuccess()
	zap.L().Info("order placed",
		zap.String("order_no", o.OrderNo),
		zap.Int64("user_id", userID),
		zap.Int64("total", o.Total))
	return o, nil
}

// publishPlaced 发布下单事件。MQ 未接入（为 nil）时跳过，订单停留在 Pending。
func (s *OrderService) publishPlaced(ctx context.Context, o *order.Order) {
	if s.mqConn == nil {
		return
	}
	ch, err := s.mqConn.Channel()
	if err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("open mq channel failed", zap.Error(err))
		return
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(OrderQueue, true, false, false, false, nil); err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("declare order queue failed", zap.Error(err))
		return
	}

	body, _ := json.Marshal(&OrderMessage{
		OrderID: o.ID,
		OrderNo: o.OrderNo,
		UserID:  o.UserID,
	})
	err = ch.PublishWithContext(ctx, "", OrderQueue, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		GetMonitor().RecordMQError()
		zap.L().Warn("publish order message failed", zap.Error(err))
	}
}

// UpdateStatus 后台更新订单状态，同时刷新 UpdatedAt
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string) (*order.Order, error) {
	if status == "" {
		return nil, errors.New("状态不能为空")
	}
	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.orderRepo.GetByID(ctx, id)
}

func (s *OrderService) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

func (s *OrderService) GetByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	return s.orderRepo.GetByOrderNo(ctx, orderNo)
}

// ListRecent 查询最新的订单记录
func (s *OrderService) ListRecent(ctx context.Context, limit int) ([]*order.Order, error) {
	return s.orderRepo.ListRecent(ctx, limit)
}

// ListByUser 查询指定用户的订单
func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}
