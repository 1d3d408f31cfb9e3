package main

import (
	"context"
	stdlog "log"

	"github.com/example/supermarket/internal/config"
	"github.com/example/supermarket/internal/datamodels/product"
	"github.com/example/supermarket/internal/repository/mysql"
	"github.com/example/supermarket/internal/service"
)

// 示例商品目录，价格单位为分（₹120 -> 12000）
func sampleProducts() []*product.Product {
	return []*product.Product{
		{
			Name:          "Organic Apples",
			Category:      "Fruits",
			Price:         12000,
			OriginalPrice: 14000,
			Discount:      14,
			Stock:         45,
			Rating:        4.5,
			Popularity:    95,
			Description:   "Fresh organic apples from Himachal Pradesh orchards, rich in vitamins and antioxidants.",
			Image:         "https://images.unsplash.com/photo-1568702846914-96b305d2aaeb?w=400",
			Featured:      true,
			Unit:          "kg",
			Status:        1,
		},
		{
			Name:        "Fresh Cow Milk",
			Category:    "Dairy",
			Price:       6000,
			Stock:       120,
			Rating:      4.7,
			Popularity:  92,
			Description: "Pure pasteurized cow milk, rich in calcium and vitamins.",
			Image:       "https://images.unsplash.com/photo-1563636619-e9143da7973b?w=400",
			Featured:    true,
			Unit:        "liter",
			Status:      1,
		},
		{
			Name:        "Brown Bread",
			Category:    "Bakery",
			Price:       4000,
			Stock:       75,
			Rating:      4.3,
			Popularity:  88,
			Description: "Whole wheat brown bread, perfect for sandwiches and toast.",
			Image:       "https://images.unsplash.com/photo-1509440159596-0249088772ff?w=400",
			Featured:    true,
			Unit:        "pack",
			Status:      1,
		},
		{
			Name:          "Fresh Tomatoes",
			Category:      "Vegetables",
			Price:         3000,
			OriginalPrice: 3500,
			Discount:      14,
			Stock:         200,
			Rating:        4.2,
			Popularity:    85,
			Description:   "Farm fresh red tomatoes, ideal for curries and salads.",
			Image:         "https://images.unsplash.com/photo-1592924357228-91a4daadcfea?w=400",
			Unit:          "kg",
			Status:        1,
		},
		{
			Name:        "Masala Chips",
			Category:    "Snacks",
			Price:       2000,
			Stock:       150,
			Rating:      4.0,
			Popularity:  80,
			Description: "Crunchy potato chips with a spicy masala twist.",
			Image:       "https://images.unsplash.com/photo-1565958011703-44f9829ba187?w=400",
			Unit:        "pack",
			Status:      1,
		},
		{
			Name:        "Mango Juice",
			Category:    "Beverages",
			Price:       8000,
			Stock:       60,
			Rating:      4.6,
			Popularity:  90,
			Description: "Pure Alphonso mango juice with no added sugar.",
			Image:       "https://images.unsplash.com/photo-1551024709-8f23befc6f87?w=400",
			Unit:        "liter",
			Status:      1,
		},
	}
}

func main() {
	cfg, err := config.Load("./config")
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	db := mysql.Init(&cfg.MySQL)
	ctx := context.Background()

	productRepo := mysql.NewProductRepository(db)
	userRepo := mysql.NewUserRepository(db)
	userSvc := service.NewUserService(userRepo, &cfg.JWT)

	// 默认管理员
	admin, err := userSvc.EnsureAdmin(ctx)
	if err != nil {
		stdlog.Fatalf("failed to ensure admin user: %v", err)
	}
	stdlog.Printf("admin ready: %s (id=%d)", admin.Email, admin.ID)

	// 已有商品时不重复写入
	existing, err := productRepo.ListAll(ctx)
	if err != nil {
		stdlog.Fatalf("failed to list products: %v", err)
	}
	if len(existing) > 0 {
		stdlog.Printf("products already seeded (%d rows), skip", len(existing))
		return
	}

	for _, p := range sampleProducts() {
		if err := productRepo.Create(ctx, p); err != nil {
			stdlog.Fatalf("failed to create product %s: %v", p.Name, err)
		}
		stdlog.Printf("created product #%d %s", p.ID, p.Name)
	}
	stdlog.Println("seed done")
}
