package analytics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/supermarket/internal/datamodels/order"
)

// ReportType 报表类型
type ReportType string

const (
	ReportSales     ReportType = "sales"
	ReportProducts  ReportType = "products"
	ReportCustomers ReportType = "customers"
)

// ErrUnsupportedReportType 未知报表类型
var ErrUnsupportedReportType = errors.New("unsupported report type")

// Report 报表结果，Type 决定哪个分支有值
type Report struct {
	Type      ReportType          `json:"type"`
	StartDate string              `json:"start_date"`
	EndDate   string              `json:"end_date"`
	Sales     *SalesReport        `json:"sales,omitempty"`
	Products  []ProductReportRow  `json:"products,omitempty"`
	Customers []CustomerReportRow `json:"customers,omitempty"`
}

// SalesReport 销售报表
type SalesReport struct {
	TotalOrders       int64          `json:"total_orders"`
	TotalRevenue      int64          `json:"total_revenue"`
	AverageOrderValue float64        `json:"average_order_value"`
	OrdersByStatus    []StatusCount  `json:"orders_by_status"`
	DailyRevenue      []DailyRevenue `json:"daily_revenue"`
	TopProducts       []ProductSales `json:"top_products"`
}

// StatusCount 按状态的订单数
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DailyRevenue 按日营收
type DailyRevenue struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
}

// ProductReportRow 商品报表行。
// UnitPrice 取窗口内最后一次出现的行项单价（快照，不是均价）。
type ProductReportRow struct {
	ProductID    int64  `json:"product_id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	TotalSold    int64  `json:"total_sold"`
	TotalRevenue int64  `json:"total_revenue"`
	UnitPrice    int64  `json:"unit_price"`
}

// CustomerReportRow 客户报表行，FirstOrder/LastOrder 为窗口内最早/最晚下单日
type CustomerReportRow struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	TotalOrders int64  `json:"total_orders"`
	TotalSpent  int64  `json:"total_spent"`
	FirstOrder  string `json:"first_order"`
	LastOrder   string `json:"last_order"`
}

// GenerateReport 生成指定日期区间（按 UTC 自然日，闭区间）的报表。
// 未知类型返回 ErrUnsupportedReportType；缺失日期的订单不参与区间过滤。
func (e *Engine) GenerateReport(orders []*order.Order, typ ReportType, start, end time.Time) (*Report, error) {
	report := &Report{
		Type:      typ,
		StartDate: dayKey(start),
		EndDate:   dayKey(end),
	}

	filtered := filterByDay(orders, start, end)
	switch typ {
	case ReportSales:
		report.Sales = e.buildSalesReport(filtered)
	case ReportProducts:
		report.Products = buildProductsReport(filtered)
	case ReportCustomers:
		report.Customers = buildCustomersReport(filtered)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedReportType, typ)
	}
	return report, nil
}

// filterByDay 取下单日落在 [start, end] 闭区间内的订单
func filterByDay(orders []*order.Order, start, end time.Time) []*order.Order {
	startKey := dayKey(start)
	endKey := dayKey(end)

	filtered := make([]*order.Order, 0, len(orders))
	for _, o := range orders {
		if o.PlacedAt.IsZero() {
			continue
		}
		key := dayKey(o.PlacedAt)
		if key >= startKey && key <= endKey {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

func (e *Engine) buildSalesReport(orders []*order.Order) *SalesReport {
	report := &SalesReport{
		TotalOrders: int64(len(orders)),
		TopProducts: e.TopProducts(orders, 10),
	}

	byStatus := make(map[string]int64)
	byDay := make(map[string]int64)
	for _, o := range orders {
		report.TotalRevenue += o.Total
		byStatus[o.Status]++
		byDay[dayKey(o.PlacedAt)] += o.Total
	}
	if report.TotalOrders > 0 {
		report.AverageOrderValue = float64(report.TotalRevenue) / float64(report.TotalOrders)
	}

	report.OrdersByStatus = make([]StatusCount, 0, len(byStatus))
	for status, count := range byStatus {
		report.OrdersByStatus = append(report.OrdersByStatus, StatusCount{Status: status, Count: count})
	}
	sort.Slice(report.OrdersByStatus, func(i, j int) bool {
		if report.OrdersByStatus[i].Count != report.OrdersByStatus[j].Count {
			return report.OrdersByStatus[i].Count > report.OrdersByStatus[j].Count
		}
		return report.OrdersByStatus[i].Status < report.OrdersByStatus[j].Status
	})

	report.DailyRevenue = make([]DailyRevenue, 0, len(byDay))
	for date, revenue := range byDay {
		report.DailyRevenue = append(report.DailyRevenue, DailyRevenue{Date: date, Revenue: revenue})
	}
	sort.Slice(report.DailyRevenue, func(i, j int) bool {
		return report.DailyRevenue[i].Date < report.DailyRevenue[j].Date
	})

	return report
}

func buildProductsReport(orders []*order.Order) []ProductReportRow {
	byProduct := make(map[int64]*ProductReportRow)
	for _, o := range orders {
		for _, item := range o.Items {
			if item.Quantity <= 0 || item.Price < 0 {
				continue
			}
			row, ok := byProduct[item.ProductID]
			if !ok {
				row = &ProductReportRow{
					ProductID: item.ProductID,
					Name:      item.Name,
					Category:  item.Category,
				}
				byProduct[item.ProductID] = row
			}
			row.TotalSold += item.Quantity
			row.TotalRevenue += item.Price * item.Quantity
			row.UnitPrice = item.Price
		}
	}

	rows := make([]ProductReportRow, 0, len(byProduct))
	for _, row := range byProduct {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalRevenue != rows[j].TotalRevenue {
			return rows[i].TotalRevenue > rows[j].TotalRevenue
		}
		return rows[i].ProductID < rows[j].ProductID
	})
	return rows
}

func buildCustomersReport(orders []*order.Order) []CustomerReportRow {
	type customerAgg struct {
		row   CustomerReportRow
		first time.Time
		last  time.Time
	}

	byEmail := make(map[string]*customerAgg)
	for _, o := range orders {
		if o.Email == "" {
			continue
		}
		agg, ok := byEmail[o.Email]
		if !ok {
			agg = &customerAgg{
				row: CustomerReportRow{
					Email: o.Email,
					Name:  o.FirstName + " " + o.LastName,
				},
				first: o.PlacedAt,
				last:  o.PlacedAt,
			}
			byEmail[o.Email] = agg
		}
		agg.row.TotalOrders++
		agg.row.TotalSpent += o.Total
		if o.PlacedAt.Before(agg.first) {
			agg.first = o.PlacedAt
		}
		if o.PlacedAt.After(agg.last) {
			agg.last = o.PlacedAt
		}
	}

	rows := make([]CustomerReportRow, 0, len(byEmail))
	for _, agg := range byEmail {
		agg.row.FirstOrder = dayKey(agg.first)
		agg.row.LastOrder = dayKey(agg.last)
		rows = append(rows, agg.row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Email < rows[j].Email
	})
	return rows
}
