package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/supermarket/internal/datamodels/product"
)

func sampleCatalog() []*product.Product {
	return []*product.Product{
		{ID: 1, Name: "Organic Apples", Category: "Fruits", Price: 12000, Rating: 4.5, Popularity: 95, Stock: 45, Discount: 14, Featured: true, Status: 1},
		{ID: 2, Name: "Fresh Cow Milk", Category: "Dairy", Price: 6000, Rating: 4.7, Popularity: 92, Stock: 120, Featured: true, Status: 1},
		{ID: 3, Name: "Brown Bread", Category: "Bakery", Price: 4000, Rating: 4.3, Popularity: 88, Stock: 0, Status: 1},
		{ID: 4, Name: "Banana Chips", Category: "Snacks", Price: 2000, Rating: 4.0, Popularity: 80, Stock: 150, Status: 1},
		{ID: 5, Name: "Old Stock Tea", Category: "Beverages", Price: 9000, Rating: 3.0, Popularity: 10, Stock: 5, Status: 0}, // 已下架
	}
}

func testProductService() *ProductService {
	return NewProductService(newFakeProductRepo(sampleCatalog()...))
}

func TestSearchMatchesNameCaseInsensitive(t *testing.T) {
	svc := testProductService()

	out, err := svc.Search(context.Background(), "APPLE")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].ID)
}

func TestSearchMatchesCategory(t *testing.T) {
	svc := testProductService()

	out, err := svc.Search(context.Background(), "dairy")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Fresh Cow Milk", out[0].Name)
}

func TestSearchExcludesOfflineProducts(t *testing.T) {
	svc := testProductService()

	out, err := svc.Search(context.Background(), "tea")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFilter(t *testing.T) {
	svc := testProductService()

	out, err := svc.Filter(context.Background(), ProductFilter{MinPrice: 5000, InStock: true})
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, p := range out {
		assert.GreaterOrEqual(t, p.Price, int64(5000))
		assert.Greater(t, p.Stock, int64(0))
	}
}

func TestSortPriceLow(t *testing.T) {
	svc := testProductService()
	list := sampleCatalog()

	sorted := svc.Sort(list, "price-low")
	require.Len(t, sorted, len(list))
	for i := 1; i < len(sorted); i++ {
		assert.LessOrEqual(t, sorted[i-1].Price, sorted[i].Price)
	}
	// 原切片不被修改
	assert.Equal(t, int64(1), list[0].ID)
}

func TestSortDefaultPopularity(t *testing.T) {
	svc := testProductService()

	sorted := svc.Sort(sampleCatalog(), "whatever")
	require.NotEmpty(t, sorted)
	assert.Equal(t, int64(1), sorted[0].ID) // 人气最高
}

func TestSortNewest(t *testing.T) {
	svc := testProductService()
	old := &product.Product{ID: 1, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	fresh := &product.Product{ID: 2, CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}

	sorted := svc.Sort([]*product.Product{old, fresh}, "newest")
	assert.Equal(t, int64(2), sorted[0].ID)
}

func TestFeaturedLimit(t *testing.T) {
	svc := testProductService()

	out, err := svc.Featured(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Featured)
}

func TestOnSale(t *testing.T) {
	svc := testProductService()

	out, err := svc.OnSale(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].ID)
}

func TestSimilarExcludesSelf(t *testing.T) {
	repo := newFakeProductRepo(
		&product.Product{ID: 1, Name: "Organic Apples", Category: "Fruits", Status: 1},
		&product.Product{ID: 2, Name: "Alphonso Mango", Category: "Fruits", Status: 1},
		&product.Product{ID: 3, Name: "Brown Bread", Category: "Bakery", Status: 1},
	)
	svc := NewProductService(repo)

	out, err := svc.Similar(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(2), out[0].ID)
}

func TestCategories(t *testing.T) {
	svc := testProductService()

	out, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 4) // 下架商品的分类不计

	// 名称升序
	for i := 1; i < len(out); i++ {
		assert.Less(t, out[i-1].Name, out[i].Name)
	}
}
