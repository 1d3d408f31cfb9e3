package server

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kataras/iris/v12"

	"github.com/example/supermarket/internal/analytics"
	"github.com/example/supermarket/internal/config"
	"github.com/example/supermarket/internal/datamodels/product"
	"github.com/example/supermarket/internal/infra/redis"
	"github.com/example/supermarket/internal/repository/mysql"
	"github.com/example/supermarket/internal/service"
)

// RegisterAdminRoutes 注册后台管理端的 HTTP 路由
// 端口通常是 8081，与前台 Web 服务分离。
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)

	// 仓储与服务
	productRepo := mysql.NewProductRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	userRepo := mysql.NewUserRepository(db)

	productSvc := service.NewProductService(productRepo)
	orderSvc := service.NewOrderService(db, orderRepo, userRepo, nil, nil)
	userSvc := service.NewUserService(userRepo, &cfg.JWT)
	analyticsSvc := service.NewAnalyticsService(orderRepo, userRepo, redisClient)

	api := app.Party("/api")

	// 后台登录（要求 admin 角色的账号）
	api.Post("/login", func(ctx iris.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		token, u, err := userSvc.Login(ctx.Request().Context(), req.Email, req.Password)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"token": token, "user": u}})
	})

	admin := api.Party("/", RequireAdmin(&cfg.JWT))

	// ---------- 仪表盘 / 统计 ----------

	// 仪表盘汇总（带 Redis 缓存）
	admin.Get("/dashboard", func(ctx iris.Context) {
		stats, err := analyticsSvc.Dashboard(ctx.Request().Context())
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": stats})
	})

	// 销售时间序列
	admin.Get("/sales-series", func(ctx iris.Context) {
		days, err := strconv.Atoi(ctx.URLParamDefault("days", "7"))
		if err != nil {
			days = 7
		}
		series, err := analyticsSvc.SalesSeries(ctx.Request().Context(), days)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": series})
	})

	// 商品销售排名
	admin.Get("/top-products", func(ctx iris.Context) {
		limit, err := strconv.Atoi(ctx.URLParamDefault("limit", "5"))
		if err != nil {
			limit = 5
		}
		list, err := analyticsSvc.TopProducts(ctx.Request().Context(), limit)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 分类营收
	admin.Get("/category-revenue", func(ctx iris.Context) {
		list, err := analyticsSvc.RevenueByCategory(ctx.Request().Context())
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 客户统计
	admin.Get("/customer-stats", func(ctx iris.Context) {
		stats, err := analyticsSvc.CustomerStats(ctx.Request().Context())
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": stats})
	})

	// ---------- 报表 ----------

	// 生成日期区间报表，format=csv 时导出 CSV
	admin.Get("/reports", func(ctx iris.Context) {
		typ := analytics.ReportType(ctx.URLParam("type"))
		start, err1 := time.Parse("2006-01-02", ctx.URLParam("start"))
		end, err2 := time.Parse("2006-01-02", ctx.URLParam("end"))
		if err1 != nil || err2 != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "invalid date range, expect YYYY-MM-DD"})
			return
		}

		report, err := analyticsSvc.Report(ctx.Request().Context(), typ, start, end)
		if err != nil {
			if errors.Is(err, analytics.ErrUnsupportedReportType) {
				ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": err.Error()})
				return
			}
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}

		if ctx.URLParam("format") == "csv" {
			writeReportCSV(ctx, report)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": report})
	})

	// ---------- 订单管理 ----------

	// 最近订单列表
	admin.Get("/orders", func(ctx iris.Context) {
		limit, err := strconv.Atoi(ctx.URLParamDefault("limit", "20"))
		if err != nil || limit <= 0 {
			limit = 20
		}
		list, err := analyticsSvc.RecentOrders(ctx.Request().Context(), limit)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 订单详情
	admin.Get("/orders/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		o, err := orderSvc.GetByID(ctx.Request().Context(), int64(id))
		if err != nil {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "order not found"})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// 更新订单状态
	admin.Put("/orders/{id:uint64}/status", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		var req struct {
			Status string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		o, err := orderSvc.UpdateStatus(ctx.Request().Context(), int64(id), req.Status)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// ---------- 商品管理 ----------

	// 商品列表（后台用：返回所有商品）
	admin.Get("/products", func(ctx iris.Context) {
		list, err := productSvc.ListAll(ctx.Request().Context())
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 创建商品
	admin.Post("/products", func(ctx iris.Context) {
		var p product.Product
		if err := ctx.ReadJSON(&p); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if p.Name == "" || p.Price < 0 {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": "name required and price must be non-negative"})
			return
		}
		if err := productSvc.Create(ctx.Request().Context(), &p); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	// 更新商品
	admin.Put("/products/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		p, err := productSvc.GetByID(ctx.Request().Context(), int64(id))
		if err != nil {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "product not found"})
			return
		}
		if err := ctx.ReadJSON(p); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		p.ID = int64(id)
		if err := productSvc.Update(ctx.Request().Context(), p); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	// 删除商品
	admin.Delete("/products/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		if err := productSvc.Delete(ctx.Request().Context(), int64(id)); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "deleted"})
	})

	// ---------- 监控 ----------

	admin.Get("/monitor", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "data": service.GetMonitor().Snapshot()})
	})
}

// writeReportCSV 将报表导出为 CSV 附件
func writeReportCSV(ctx iris.Context, report *analytics.Report) {
	filename := fmt.Sprintf("%s-report-%s-%s.csv", report.Type, report.StartDate, report.EndDate)
	ctx.Header("Content-Type", "text/csv")
	ctx.Header("Content-Disposition", "attachment; filename="+filename)

	w := csv.NewWriter(ctx.ResponseWriter())
	defer w.Flush()

	switch report.Type {
	case analytics.ReportSales:
		_ = w.Write([]string{"date", "revenue"})
		for _, d := range report.Sales.DailyRevenue {
			_ = w.Write([]string{d.Date, strconv.FormatInt(d.Revenue, 10)})
		}
	case analytics.ReportProducts:
		_ = w.Write([]string{"product_id", "name", "category", "total_sold", "total_revenue", "unit_price"})
		for _, row := range report.Products {
			_ = w.Write([]string{
				strconv.FormatInt(row.ProductID, 10),
				row.Name,
				row.Category,
				strconv.FormatInt(row.TotalSold, 10),
				strconv.FormatInt(row.TotalRevenue, 10),
				strconv.FormatInt(row.UnitPrice, 10),
			})
		}
	case analytics.ReportCustomers:
		_ = w.Write([]string{"email", "name", "total_orders", "total_spent", "first_order", "last_order"})
		for _, row := range report.Customers {
			_ = w.Write([]string{
				row.Email,
				row.Name,
				strconv.FormatInt(row.TotalOrders, 10),
				strconv.FormatInt(row.TotalSpent, 10),
				row.FirstOrder,
				row.LastOrder,
			})
		}
	}
}
