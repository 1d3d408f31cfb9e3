package mysql

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/supermarket/internal/datamodels/cart"
	"github.com/example/supermarket/internal/datamodels/order"
	"github.com/example/supermarket/internal/datamodels/product"
	"github.com/example/supermarket/internal/datamodels/user"
)

// testDB 每个测试一个独立的 SQLite 库
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestOrderRepoCreateAndGet(t *testing.T) {
	repo := NewOrderRepository(testDB(t))
	ctx := context.Background()

	o := &order.Order{
		OrderNo:  "ORD-test-1",
		UserID:   7,
		Status:   order.StatusPending,
		Subtotal: 24000,
		Tax:      1200,
		Total:    29200,
		Email:    "a@example.com",
		PlacedAt: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
		Items: []order.Item{
			{ProductID: 1, Name: "Organic Apples", Price: 12000, Quantity: 2, Category: "Fruits"},
		},
	}
	require.NoError(t, repo.Create(ctx, o))
	require.NotZero(t, o.ID)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-test-1", got.OrderNo)
	require.Len(t, got.Items, 1) // 行项随订单一起加载
	assert.Equal(t, int64(2), got.Items[0].Quantity)

	byNo, err := repo.GetByOrderNo(ctx, "ORD-test-1")
	require.NoError(t, err)
	assert.Equal(t, got.ID, byNo.ID)

	_, err = repo.GetByOrderNo(ctx, "ORD-missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepoListByUser(t *testing.T) {
	repo := NewOrderRepository(testDB(t))
	ctx := context.Background()

	for i, userID := range []int64{7, 7, 8} {
		require.NoError(t, repo.Create(ctx, &order.Order{
			OrderNo: "ORD-" + string(rune('a'+i)),
			UserID:  userID,
			Status:  order.StatusPending,
		}))
	}

	mine, err := repo.ListByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	// 新订单在前
	assert.Greater(t, mine[0].ID, mine[1].ID)
}

func TestOrderRepoUpdateStatus(t *testing.T) {
	repo := NewOrderRepository(testDB(t))
	ctx := context.Background()

	o := &order.Order{OrderNo: "ORD-x", UserID: 1, Status: order.StatusPending}
	require.NoError(t, repo.Create(ctx, o))

	require.NoError(t, repo.UpdateStatus(ctx, o.ID, order.StatusProcessing))

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, got.Status)

	// 不存在的订单
	assert.ErrorIs(t, repo.UpdateStatus(ctx, 9999, order.StatusDelivered), gorm.ErrRecordNotFound)
}

func TestProductRepoListOnline(t *testing.T) {
	repo := NewProductRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &product.Product{Name: "A", Category: "Fruits", Price: 100, Status: 1}))
	require.NoError(t, repo.Create(ctx, &product.Product{Name: "B", Category: "Fruits", Price: 200, Status: 0}))

	online, err := repo.ListOnline(ctx)
	require.NoError(t, err)
	require.Len(t, online, 1)
	assert.Equal(t, "A", online[0].Name)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCartRepoSaveAndClear(t *testing.T) {
	repo := NewCartRepository(testDB(t))
	ctx := context.Background()

	item := &cart.Item{UserID: 7, ProductID: 1, Quantity: 2}
	require.NoError(t, repo.Save(ctx, item))

	// 同一行改数量
	item.Quantity = 5
	require.NoError(t, repo.Save(ctx, item))

	got, err := repo.Get(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Quantity)

	list, err := repo.ListByUser(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Clear(ctx, 7))
	list, err = repo.ListByUser(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUserRepoUniqueEmail(t *testing.T) {
	repo := NewUserRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &user.User{Email: "a@example.com", Password: "x", Role: "user"}))

	got, err := repo.GetByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)

	_, err = repo.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// 邮箱唯一索引
	err = repo.Create(ctx, &user.User{Email: "a@example.com", Password: "y", Role: "user"})
	assert.Error(t, err)
}
