package service

import (
	"context"
	"encoding/json"
	"time"

	radix "github.com/mediocregopher/radix/v3"
	"go.uber.org/zap"

	"github.com/example/supermarket/internal/analytics"
	"github.com/example/supermarket/internal/datamodels/order"
	"github.com/example/supermarket/internal/datamodels/user"
)

const (
	dashboardCacheKey = "analytics:dashboard"
	dashboardCacheTTL = 30 // 秒
)

// AnalyticsService 负责把仓储数据喂给聚合引擎。
// 引擎本身是纯函数，这里只做数据加载和仪表盘结果的 Redis 缓存。
type AnalyticsService struct {
	orderRepo order.Repository
	userRepo  user.Repository
	engine    *analytics.Engine
	redis     radix.Client
}

// NewAnalyticsService 创建统计服务，redis 可以为 nil（跳过缓存）
func NewAnalyticsService(orderRepo order.Repository, userRepo user.Repository, redisClient radix.Client) *AnalyticsService {
	return &AnalyticsService{
		orderRepo: orderRepo,
		userRepo:  userRepo,
		engine:    analytics.NewEngine(),
		redis:     redisClient,
	}
}

// Dashboard 仪表盘汇总，命中缓存直接返回，否则重算并写回
func (s *AnalyticsService) Dashboard(ctx context.Context) (analytics.DashboardStats, error) {
	var stats analytics.DashboardStats

	if s.redis != nil {
		var raw string
		if err := s.redis.Do(radix.Cmd(&raw, "GET", dashboardCacheKey)); err != nil {
			GetMonitor().RecordCacheError()
		} else if raw != "" {
			if err := json.Unmarshal([]byte(raw), &stats); err == nil {
				return stats, nil
			}
			// 缓存损坏，清掉重算
			_ = s.redis.Do(radix.Cmd(nil, "DEL", dashboardCacheKey))
		}
	}

	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return stats, err
	}
	customers, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return stats, err
	}
	stats = s.engine.DashboardStats(orders, customers)

	if s.redis != nil {
		body, _ := json.Marshal(stats)
		if err := s.redis.Do(radix.FlatCmd(nil, "SETEX", dashboardCacheKey, dashboardCacheTTL, body)); err != nil {
			GetMonitor().RecordCacheError()
			zap.L().Warn("cache dashboard stats failed", zap.Error(err))
		}
	}
	return stats, nil
}

// RecentOrders 最近订单（按下单时间倒序）
func (s *AnalyticsService) RecentOrders(ctx context.Context, limit int) ([]*order.Order, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.RecentOrders(orders, limit), nil
}

// SalesSeries 最近 days 天的销售序列
func (s *AnalyticsService) SalesSeries(ctx context.Context, days int) ([]analytics.SalesPoint, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.SalesSeries(orders, days), nil
}

// TopProducts 商品销售排名
func (s *AnalyticsService) TopProducts(ctx context.Context, limit int) ([]analytics.ProductSales, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.TopProducts(orders, limit), nil
}

// RevenueByCategory 分类营收
func (s *AnalyticsService) RevenueByCategory(ctx context.Context) ([]analytics.CategoryRevenue, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.RevenueByCategory(orders), nil
}

// CustomerStats 客户统计
func (s *AnalyticsService) CustomerStats(ctx context.Context) (analytics.CustomerStats, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return analytics.CustomerStats{}, err
	}
	customers, err := s.userRepo.ListAll(ctx)
	if err != nil {
		return analytics.CustomerStats{}, err
	}
	return s.engine.CustomerStats(orders, customers), nil
}

// Report 生成日期区间报表
func (s *AnalyticsService) Report(ctx context.Context, typ analytics.ReportType, start, end time.Time) (*analytics.Report, error) {
	orders, err := s.orderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.GenerateReport(orders, typ, start, end)
}
