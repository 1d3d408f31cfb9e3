package server

import (
	"strconv"

	"github.com/kataras/iris/v12"

	"github.com/example/supermarket/internal/auth"
	"github.com/example/supermarket/internal/config"
	"github.com/example/supermarket/internal/infra/mq"
	"github.com/example/supermarket/internal/middleware"
	"github.com/example/supermarket/internal/repository/mysql"
	"github.com/example/supermarket/internal/service"
)

const claimsKey = "claims"

// RegisterRoutes 注册前台商城的 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	mqConn := mq.Init(&cfg.RabbitMQ)

	// 静态资源：挂载前端静态文件（CSS/JS/图片）
	app.HandleDir("/assets", iris.Dir("./web/assets"))

	// 仓储与服务
	userRepo := mysql.NewUserRepository(db)
	productRepo := mysql.NewProductRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	cartRepo := mysql.NewCartRepository(db)

	userSvc := service.NewUserService(userRepo, &cfg.JWT)
	productSvc := service.NewProductService(productRepo)
	cartSvc := service.NewCartService(cartRepo, productRepo, &cfg.Pricing)
	orderSvc := service.NewOrderService(db, orderRepo, userRepo, cartSvc, mqConn)

	api := app.Party("/api")

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	// ---------- 注册 / 登录 ----------

	api.Post("/register", func(ctx iris.Context) {
		var req service.RegisterInput
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		u, err := userSvc.Register(ctx.Request().Context(), req)
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": u})
	})

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

	// ---------- 商品目录 ----------

	// 商品列表：支持 category / q（搜索）/ sort 参数
	api.Get("/products", func(ctx iris.Context) {
		reqCtx := ctx.Request().Context()
		var (
			list interface{}
			err  error
		)
		if q := ctx.URLParam("q"); q != "" {
			found, serr := productSvc.Search(reqCtx, q)
			list, err = productSvc.Sort(found, ctx.URLParam("sort")), serr
		} else {
			found, serr := productSvc.ListByCategory(reqCtx, ctx.URLParam("category"))
			list, err = productSvc.Sort(found, ctx.URLParam("sort")), serr
		}
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 精选商品
	api.Get("/products/featured", func(ctx iris.Context) {
		limit, _ := strconv.Atoi(ctx.URLParamDefault("limit", "8"))
		list, err := productSvc.Featured(ctx.Request().Context(), limit)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 打折商品
	api.Get("/products/sale", func(ctx iris.Context) {
		limit, _ := strconv.Atoi(ctx.URLParamDefault("limit", "8"))
		list, err := productSvc.OnSale(ctx.Request().Context(), limit)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 商品详情
	api.Get("/products/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		p, err := productSvc.GetByID(ctx.Request().Context(), int64(id))
		if err != nil {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "product not found"})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	// 同分类推荐
	api.Get("/products/{id:uint64}/similar", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		limit, _ := strconv.Atoi(ctx.URLParamDefault("limit", "4"))
		list, err := productSvc.Similar(ctx.Request().Context(), int64(id), limit)
		if err != nil {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "product not found"})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 分类列表
	api.Get("/categories", func(ctx iris.Context) {
		list, err := productSvc.Categories(ctx.Request().Context())
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// ---------- 需要登录的接口 ----------

	authAPI := api.Party("/", RequireAuth(&cfg.JWT))

	// 购物车内容 + 计价
	authAPI.Get("/cart", func(ctx iris.Context) {
		userID := currentUserID(ctx)
		reqCtx := ctx.Request().Context()
		lines, err := cartSvc.Lines(reqCtx, userID)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		quote := cartSvc.PriceLines(lines)
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"items": lines, "quote": quote}})
	})

	// 加购
	authAPI.Post("/cart/items", func(ctx iris.Context) {
		var req struct {
			ProductID int64 `json:"product_id"`
			Quantity  int64 `json:"quantity"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		if err := cartSvc.AddItem(ctx.Request().Context(), currentUserID(ctx), req.ProductID, req.Quantity); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "added"})
	})

	// 改数量（0 表示移除）
	authAPI.Put("/cart/items/{productId:uint64}", func(ctx iris.Context) {
		productID, _ := ctx.Params().GetUint64("productId")
		var req struct {
			Quantity int64 `json:"quantity"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := cartSvc.UpdateQuantity(ctx.Request().Context(), currentUserID(ctx), int64(productID), req.Quantity); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "updated"})
	})

	// 移除某行
	authAPI.Delete("/cart/items/{productId:uint64}", func(ctx iris.Context) {
		productID, _ := ctx.Params().GetUint64("productId")
		if err := cartSvc.RemoveItem(ctx.Request().Context(), currentUserID(ctx), int64(productID)); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "removed"})
	})

	// 清空购物车
	authAPI.Delete("/cart", func(ctx iris.Context) {
		if err := cartSvc.Clear(ctx.Request().Context(), currentUserID(ctx)); err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "cleared"})
	})

	// 结算下单（带限流）
	authAPI.Post("/checkout", middleware.CheckoutRateLimit(), func(ctx iris.Context) {
		o, err := orderSvc.Checkout(ctx.Request().Context(), currentUserID(ctx))
		if err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// 我的订单
	authAPI.Get("/orders", func(ctx iris.Context) {
		list, err := orderSvc.ListByUser(ctx.Request().Context(), currentUserID(ctx))
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// 订单详情（只能看自己的）
	authAPI.Get("/orders/{id:uint64}", func(ctx iris.Context) {
		id, _ := ctx.Params().GetUint64("id")
		o, err := orderSvc.GetByID(ctx.Request().Context(), int64(id))
		if err != nil || o.UserID != currentUserID(ctx) {
			ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": "order not found"})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// 更新资料
	authAPI.Put("/profile", func(ctx iris.Context) {
		var req service.ProfileUpdate
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		u, err := userSvc.UpdateProfile(ctx.Request().Context(), currentUserID(ctx), req)
		if err != nil {
			ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": u})
	})
}

// RequireAuth 校验 Authorization 头里的 JWT，claims 存入请求上下文
func RequireAuth(jwtCfg *config.JWTConfig) iris.Handler {
	return func(ctx iris.Context) {
		token := ctx.GetHeader("Authorization")
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "missing token"})
			return
		}
		claims, err := auth.ParseToken(jwtCfg, token)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "invalid token"})
			return
		}
		ctx.Values().Set(claimsKey, claims)
		ctx.Next()
	}
}

// RequireAdmin 校验 JWT 且要求 admin 角色
func RequireAdmin(jwtCfg *config.JWTConfig) iris.Handler {
	return func(ctx iris.Context) {
		token := ctx.GetHeader("Authorization")
		if token == "" {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "missing token"})
			return
		}
		claims, err := auth.ParseToken(jwtCfg, token)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "invalid token"})
			return
		}
		if claims.Role != auth.RoleAdmin {
			ctx.StopWithJSON(403, iris.Map{"code": 403, "msg": "admin only"})
			return
		}
		ctx.Values().Set(claimsKey, claims)
		ctx.Next()
	}
}

func currentClaims(ctx iris.Context) *auth.Claims {
	if v := ctx.Values().Get(claimsKey); v != nil {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

func currentUserID(ctx iris.Context) int64 {
	if claims := currentClaims(ctx); claims != nil {
		return claims.UserID
	}
	return 0
}
