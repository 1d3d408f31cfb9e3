package analytics

import (
	"sort"
	"time"

	"github.com/example/supermarket/internal/datamodels/order"
	"github.com/example/supermarket/internal/datamodels/user"
)

// Engine 订单/营收聚合引擎。
// 所有方法都是对传入集合的纯函数：不读写存储、不产生副作用，
// 相同输入（和时钟）产生相同输出。数据由调用方通过仓储加载后注入。
//
// 日期按 UTC 自然日截断；PlacedAt 为零值的订单视为缺失日期，
// 统一策略：跳过所有按日分桶/按日期过滤的计算，但普通合计仍然计入。
type Engine struct {
	// Now 可注入时钟，便于测试固定“今天”
	Now func() time.Time
}

// NewEngine 创建引擎，默认使用系统时钟
func NewEngine() *Engine {
	return &Engine{Now: time.Now}
}

// dayKey 将时间截断为 UTC 自然日的字符串键
func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DashboardStats 仪表盘汇总
type DashboardStats struct {
	TotalOrders       int64   `json:"total_orders"`
	TotalRevenue      int64   `json:"total_revenue"`
	TotalCustomers    int64   `json:"total_customers"`
	TodayOrders       int64   `json:"today_orders"`
	TodayRevenue      int64   `json:"today_revenue"`
	AverageOrderValue float64 `json:"average_order_value"`
}

// SalesPoint 单日销售桶
type SalesPoint struct {
	Date    string `json:"date"`
	Orders  int64  `json:"orders"`
	Revenue int64  `json:"revenue"`
}

// ProductSales 商品销售排名条目
type ProductSales struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	Revenue   int64  `json:"revenue"`
}

// CategoryRevenue 分类营收条目
type CategoryRevenue struct {
	Category string `json:"category"`
	Revenue  int64  `json:"revenue"`
}

// CustomerStats 客户统计
type CustomerStats struct {
	Total        int64 `json:"total"`
	NewThisMonth int64 `json:"new_this_month"`
	Active       int64 `json:"active"`
	Inactive     int64 `json:"inactive"`
}

// UncategorizedLabel 行项缺少分类时归入的固定标签
const UncategorizedLabel = "Uncategorized"

// DashboardStats 计算仪表盘汇总。
// “今天”取 Now() 所在的 UTC 自然日；没有订单时平均客单价为 0。
func (e *Engine) DashboardStats(orders []*order.Order, customers []*user.User) DashboardStats {
	stats := DashboardStats{
		TotalOrders:    int64(len(orders)),
		TotalCustomers: int64(len(customers)),
	}

	today := dayKey(e.Now())
	for _, o := range orders {
		stats.TotalRevenue += o.Total
		if o.PlacedAt.IsZero() {
			continue
		}
		if dayKey(o.PlacedAt) == today {
			stats.TodayOrders++
			stats.TodayRevenue += o.Total
		}
	}

	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = float64(stats.TotalRevenue) / float64(stats.TotalOrders)
	}
	return stats
}

// RecentOrders 按下单时间倒序返回最多 limit 条订单。
// 稳定排序：时间相同的订单保持输入顺序；limit <= 0 返回空。
// 缺失日期的订单排在最后（零值时间最旧）。
func (e *Engine) RecentOrders(orders []*order.Order, limit int) []*order.Order {
	if limit <= 0 {
		return []*order.Order{}
	}

	sorted := make([]*order.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PlacedAt.After(sorted[j].PlacedAt)
	})

	if limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}

// SalesSeries 返回截止今天的最近 days 个自然日的销售序列，旧日期在前。
// 没有订单的日期补零，不会缺桶。
func (e *Engine) SalesSeries(orders []*order.Order, days int) []SalesPoint {
	if days <= 0 {
		return []SalesPoint{}
	}

	today := e.Now().UTC()
	series := make([]SalesPoint, 0, days)
	index := make(map[string]int, days)
	for i := days - 1; i >= 0; i-- {
		key := dayKey(today.AddDate(0, 0, -i))
		index[key] = len(series)
		series = append(series, SalesPoint{Date: key})
	}

	for _, o := range orders {
		if o.PlacedAt.IsZero() {
			continue
		}
		if i, ok := index[dayKey(o.PlacedAt)]; ok {
			series[i].Orders++
			series[i].Revenue += o.Total
		}
	}
	return series
}

// TopProducts 按商品聚合所有订单行，营收倒序返回前 limit 名。
// 营收相同按商品 ID 升序，保证输出与输入顺序无关；limit <= 0 返回空。
func (e *Engine) TopProducts(orders []*order.Order, limit int) []ProductSales {
	if limit <= 0 {
		return []ProductSales{}
	}

	ranked := rankProducts(orders)
	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	return ranked
}

// rankProducts 聚合订单行并按营收倒序、商品 ID 升序排序
func rankProducts(orders []*order.Order) []ProductSales {
	byProduct := make(map[int64]*ProductSales)
	for _, o := range orders {
		for _, item := range o.Items {
			if item.Quantity <= 0 || item.Price < 0 {
				continue
			}
			entry, ok := byProduct[item.ProductID]
			if !ok {
				entry = &ProductSales{
					ProductID: item.ProductID,
					Name:      item.Name,
				}
				byProduct[item.ProductID] = entry
			}
			entry.Quantity += item.Quantity
			entry.Revenue += item.Price * item.Quantity
		}
	}

	ranked := make([]ProductSales, 0, len(byProduct))
	for _, entry := range byProduct {
		ranked = append(ranked, *entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Revenue != ranked[j].Revenue {
			return ranked[i].Revenue > ranked[j].Revenue
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	return ranked
}

// RevenueByCategory 按分类聚合营收，倒序返回。
// 营收相同按分类名升序；行项缺少分类归入 Uncategorized。
func (e *Engine) RevenueByCategory(orders []*order.Order) []CategoryRevenue {
	byCategory := make(map[string]int64)
	for _, o := range orders {
		for _, item := range o.Items {
			if item.Quantity <= 0 || item.Price < 0 {
				continue
			}
			category := item.Category
			if category == "" {
				category = UncategorizedLabel
			}
			byCategory[category] += item.Price * item.Quantity
		}
	}

	out := make([]CategoryRevenue, 0, len(byCategory))
	for category, revenue := range byCategory {
		out = append(out, CategoryRevenue{Category: category, Revenue: revenue})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// CustomerStats 客户活跃度统计。
// “本月新增”指注册时间晚于一个自然月前（Now().AddDate(0,-1,0)）。
// “活跃”指存在订单的客户邮箱与其邮箱完全相同（区分大小写的精确匹配）。
func (e *Engine) CustomerStats(orders []*order.Order, customers []*user.User) CustomerStats {
	stats := CustomerStats{Total: int64(len(customers))}

	ordered := make(map[string]struct{})
	for _, o := range orders {
		if o.Email != "" {
			ordered[o.Email] = struct{}{}
		}
	}

	monthAgo := e.Now().AddDate(0, -1, 0)
	for _, c := range customers {
		if !c.JoinedAt.IsZero() && c.JoinedAt.After(monthAgo) {
			stats.NewThisMonth++
		}
		if _, ok := ordered[c.Email]; ok {
			stats.Active++
		}
	}
	stats.Inactive = stats.Total - stats.Active
	return stats
}
