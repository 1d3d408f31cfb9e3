package main

import (
	"context"
	"encoding/json"
	stdlog "log"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/supermarket/internal/config"
	"github.com/example/supermarket/internal/datamodels/order"
	"github.com/example/supermarket/internal/infra/log"
	"github.com/example/supermarket/internal/infra/mq"
	"github.com/example/supermarket/internal/repository/mysql"
	"github.com/example/supermarket/internal/service"
)

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	log.Init()

	db := mysql.Init(&cfg.MySQL)
	mqConn := mq.Init(&cfg.RabbitMQ)

	orderRepo := mysql.NewOrderRepository(db)

	ch, err := mqConn.Channel()
	if err != nil {
		stdlog.Fatalf("failed to open channel: %v", err)
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(service.OrderQueue, true, false, false, false, nil); err != nil {
		stdlog.Fatalf("failed to declare queue: %v", err)
	}

	// 手动确认模式（auto-ack=false）
	msgs, err := ch.Consume(service.OrderQueue, "", false, false, false, false, nil)
	if err != nil {
		stdlog.Fatalf("failed to consume: %v", err)
	}

	zap.L().Info("order worker started, waiting for messages")

	for d := range msgs {
		var m service.OrderMessage
		if err := json.Unmarshal(d.Body, &m); err != nil {
			zap.L().Warn("invalid message", zap.Error(err))
			// 消息格式错误，拒绝并丢弃
			_ = d.Nack(false, false)
			continue
		}
		handleMessage(context.Background(), orderRepo, &m, d)
	}
}

// handleMessage 接单：把 Pending 订单推进到 Processing
func handleMessage(ctx context.Context, orderRepo order.Repository, m *service.OrderMessage, d amqp.Delivery) {
	o, err := orderRepo.GetByID(ctx, m.OrderID)
	if err != nil {
		zap.L().Warn("get order failed", zap.Int64("order_id", m.OrderID), zap.Error(err))
		service.GetMonitor().RecordDBError()
		service.GetMonitor().RecordWorkerFailed()
		// 订单可能尚未可见，重新入队等待重试
		_ = d.Nack(false, true)
		return
	}

	if o.Status != order.StatusPending {
		// 已经被处理过（重复投递），直接确认
		zap.L().Info("order already handled",
			zap.String("order_no", o.OrderNo),
			zap.String("status", o.Status))
		_ = d.Ack(false)
		return
	}

	if err := orderRepo.UpdateStatus(ctx, o.ID, order.StatusProcessing); err != nil {
		zap.L().Warn("update order status failed", zap.Int64("order_id", o.ID), zap.Error(err))
		service.GetMonitor().RecordDBError()
		service.GetMonitor().RecordWorkerFailed()
		_ = d.Nack(false, true)
		return
	}

	zap.L().Info("order accepted",
		zap.String("order_no", o.OrderNo),
		zap.Int64("user_id", o.UserID),
		zap.Int64("total", o.Total))
	service.GetMonitor().RecordWorkerProcessed()

	if err := d.Ack(false); err != nil {
		zap.L().Warn("failed to ack message", zap.Error(err))
	}
}
