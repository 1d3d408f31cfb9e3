package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/supermarket/internal/datamodels/order"
	"github.com/example/supermarket/internal/datamodels/user"
)

// 固定“现在”为 2024-01-15 10:00 UTC，便于断言
var testNow = time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return &Engine{Now: func() time.Time { return testNow }}
}

// makeOrder day 传 "" 表示缺失下单时间
func makeOrder(id int64, day string, total int64, status, email string, items ...order.Item) *order.Order {
	o := &order.Order{
		ID:     id,
		Status: status,
		Total:  total,
		Email:  email,
		Items:  items,
	}
	if day != "" {
		t, err := time.Parse("2006-01-02", day)
		if err != nil {
			panic(err)
		}
		o.PlacedAt = t.Add(12 * time.Hour) // 当天中午
	}
	return o
}

func makeCustomer(id int64, email string, joined time.Time) *user.User {
	return &user.User{ID: id, Email: email, JoinedAt: joined}
}

func TestDashboardStatsEmpty(t *testing.T) {
	stats := testEngine().DashboardStats(nil, nil)
	assert.Equal(t, DashboardStats{}, stats)
}

func TestDashboardStats(t *testing.T) {
	orders := []*order.Order{
		makeOrder(1, "2024-01-15", 10000, order.StatusProcessing, "a@example.com"),
		makeOrder(2, "2024-01-15", 5000, order.StatusDelivered, "b@example.com"),
		makeOrder(3, "2024-01-14", 20000, order.StatusDelivered, "a@example.com"),
		// 缺失日期：计入总量，不计入“今天”
		makeOrder(4, "", 1000, order.StatusProcessing, ""),
	}
	customers := []*user.User{
		makeCustomer(1, "a@example.com", testNow.AddDate(0, -2, 0)),
		makeCustomer(2, "b@example.com", testNow.AddDate(0, 0, -3)),
	}

	stats := testEngine().DashboardStats(orders, customers)
	assert.Equal(t, int64(4), stats.TotalOrders)
	assert.Equal(t, int64(36000), stats.TotalRevenue)
	assert.Equal(t, int64(2), stats.TotalCustomers)
	assert.Equal(t, int64(2), stats.TodayOrders)
	assert.Equal(t, int64(15000), stats.TodayRevenue)
	assert.InDelta(t, 9000.0, stats.AverageOrderValue, 0.001)
}

func TestRecentOrders(t *testing.T) {
	orders := []*order.Order{
		makeOrder(1, "2024-01-10", 100, order.StatusDelivered, ""),
		makeOrder(2, "2024-01-14", 200, order.StatusDelivered, ""),
		makeOrder(3, "2024-01-14", 300, order.StatusDelivered, ""), // 与 2 同一时刻
		makeOrder(4, "2024-01-12", 400, order.StatusDelivered, ""),
	}

	e := testEngine()

	assert.Empty(t, e.RecentOrders(orders, 0))
	assert.Empty(t, e.RecentOrders(orders, -1))

	recent := e.RecentOrders(orders, 10)
	require.Len(t, recent, 4)
	// 时间相同的 2、3 保持输入顺序（稳定排序）
	assert.Equal(t, []int64{2, 3, 4, 1}, []int64{recent[0].ID, recent[1].ID, recent[2].ID, recent[3].ID})

	assert.Len(t, e.RecentOrders(orders, 2), 2)
}

func TestRecentOrdersMissingDateLast(t *testing.T) {
	orders := []*order.Order{
		makeOrder(1, "", 100, order.StatusDelivered, ""),
		makeOrder(2, "2024-01-14", 200, order.StatusDelivered, ""),
	}
	recent := testEngine().RecentOrders(orders, 5)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(2), recent[0].ID)
	assert.Equal(t, int64(1), recent[1].ID)
}

func TestSalesSeries(t *testing.T) {
	orders := []*order.Order{
		makeOrder(1, "2024-01-15", 10000, order.StatusProcessing, ""),
		makeOrder(2, "2024-01-13", 5000, order.StatusDelivered, ""),
		makeOrder(3, "2024-01-13", 2000, order.StatusDelivered, ""),
		makeOrder(4, "2024-01-01", 99999, order.StatusDelivered, ""), // 窗口外
		makeOrder(5, "", 7777, order.StatusDelivered, ""),            // 缺失日期
	}

	series := testEngine().SalesSeries(orders, 3)
	require.Len(t, series, 3)
	assert.Equal(t, SalesPoint{Date: "2024-01-13", Orders: 2, Revenue: 7000}, series[0])
	assert.Equal(t, SalesPoint{Date: "2024-01-14"}, series[1]) // 零填充
	assert.Equal(t, SalesPoint{Date: "2024-01-15", Orders: 1, Revenue: 10000}, series[2])

	// 序列营收之和 == 窗口内订单营收之和
	var sum int64
	for _, p := range series {
		sum += p.Revenue
	}
	assert.Equal(t, int64(17000), sum)

	assert.Empty(t, testEngine().SalesSeries(orders, 0))
}

func TestTopProducts(t *testing.T) {
	orders := []*order.Order{
		makeOrder(1, "2024-01-01", 10000, order.StatusDelivered, "",
			order.Item{ProductID: 1, Name: "Organic Apples", Price: 5000, Quantity: 2, Category: "Fruits"}),
		makeOrder(2, "2024-01-01", 5000, order.StatusDelivered, "",
			order.Item{ProductID: 1, Name: "Organic Apples", Price: 5000, Quantity: 1, Category: "Fruits"}),
	}

	top := testEngine().TopProducts(orders, 1)
	require.Len(t, top, 1)
	assert.Equal(t, ProductSales{ProductID: 1, Name: "Organic Apples", Quantity: 3, Revenue: 15000}, top[0])

	assert.Empty(t, testEngine().TopProducts(orders, 0))
}

func TestTopProductsDeterministicTieBreak(t *testing.T) {
	a := makeOrder(1, "2024-01-01", 100, order.StatusDelivered, "",
		order.Item{ProductID: 2, Name: "B", Price: 100, Quantity: 1})
	b := makeOrder(2, "2024-01-01", 100, order.StatusDelivered, "",
		order.Item{ProductID: 1, Name: "A", Price: 100, Quantity: 1})

	e := testEngine()
	first := e.TopProducts([]*order.Order{a, b}, 10)
	second := e.TopProducts([]*order.Order{b, a}, 10)

	// 营收相同，按商品 ID 升序；与输入顺序无关
	require.Len(t, first, 2)
	assert.Equal(t, int64(1), first[0].ProductID)
	assert.Equal(t, first, second)
}

func TestTopProductsSkipsMalformedItems(t *testing.T) {
	orders := []*order.Order{
		makeOrder(1, "2024-01-01", 100, order.StatusDelivered, "",
			order.Item{ProductID: 1, Name: "A", Price: 100, Quantity: 1},
			order.Item{ProductID: 2, Name: "B", Price: 100, Quantity: 0},  // 数量非法
			order.Item{ProductID: 3, Name: "C", Price: -50, Quantity: 2}), // 价格非法
	}
	top := testEngine().TopProducts(orders, 10)
	require.Len(t, top, 1)
	assert.Equal(t, int64(1), top[0].ProductID)
}

func TestRevenueByCategory(t *testing.T) {
	orders := []*order.Order{
		makeOrder(1, "2024-01-01", 0, order.StatusDelivered, "",
			order.Item{ProductID: 1, Price: 5000, Quantity: 2, Category: "Fruits"},
			order.Item{ProductID: 2, Price: 1000, Quantity: 1, Category: ""}),
		makeOrder(2, "2024-01-01", 0, order.StatusDelivered, "",
			order.Item{ProductID: 1, Price: 5000, Quantity: 1, Category: "Fruits"}),
	}

	out := testEngine().RevenueByCategory(orders)
	require.Len(t, out, 2)
	assert.Equal(t, CategoryRevenue{Category: "Fruits", Revenue: 15000}, out[0])
	assert.Equal(t, CategoryRevenue{Category: UncategorizedLabel, Revenue: 1000}, out[1])
}

func TestRevenueByCategoryTieBreak(t *testing.T) {
	orders := []*order.Order{
		makeOrder(1, "2024-01-01", 0, order.StatusDelivered, "",
			order.Item{ProductID: 1, Price: 100, Quantity: 1, Category: "Snacks"},
			order.Item{ProductID: 2, Price: 100, Quantity: 1, Category: "Dairy"}),
	}
	out := testEngine().RevenueByCategory(orders)
	require.Len(t, out, 2)
	// 营收相同按分类名升序
	assert.Equal(t, "Dairy", out[0].Category)
	assert.Equal(t, "Snacks", out[1].Category)
}

func TestCustomerStats(t *testing.T) {
	orders := []*order.Order{
		makeOrder(1, "2024-01-10", 100, order.StatusDelivered, "active@example.com"),
		makeOrder(2, "", 100, order.StatusDelivered, ""),
	}
	customers := []*user.User{
		makeCustomer(1, "active@example.com", testNow.AddDate(0, -3, 0)),
		makeCustomer(2, "idle@example.com", testNow.AddDate(0, 0, -5)),  // 一个月内注册
		makeCustomer(3, "Active@example.com", testNow.AddDate(0, -3, 0)), // 大小写不同，不算活跃
	}

	stats := testEngine().CustomerStats(orders, customers)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.NewThisMonth)
	assert.Equal(t, int64(1), stats.Active)
	assert.Equal(t, int64(2), stats.Inactive)
}

func TestCustomerStatsEmpty(t *testing.T) {
	stats := testEngine().CustomerStats(nil, nil)
	assert.Equal(t, CustomerStats{}, stats)
}
