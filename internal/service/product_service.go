package service

import (
	"context"
	"sort"
	"strings"

	"github.com/example/supermarket/internal/datamodels/product"
)

// ProductFilter 商品筛选条件，零值字段表示不过滤
type ProductFilter struct {
	Category  string
	MinPrice  int64
	MaxPrice  int64 // 0 表示不限
	MinRating float64
	InStock   bool
	Featured  bool
}

// CategorySummary 分类汇总（名称 + 在售商品数）
type CategorySummary struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

type ProductService struct {
	repo product.Repository
}

func NewProductService(repo product.Repository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) ListAll(ctx context.Context) ([]*product.Product, error) {
	return s.repo.ListAll(ctx)
}

func (s *ProductService) ListOnline(ctx context.Context) ([]*product.Product, error) {
	return s.repo.ListOnline(ctx)
}

func (s *ProductService) ListByCategory(ctx context.Context, category string) ([]*product.Product, error) {
	return s.repo.ListByCategory(ctx, category)
}

// Search 在售商品里按名称/描述/分类做不区分大小写的关键字搜索
func (s *ProductService) Search(ctx context.Context, query string) ([]*product.Product, error) {
	list, err := s.repo.ListOnline(ctx)
	if err != nil {
		return nil, err
	}
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return list, nil
	}

	out := make([]*product.Product, 0, len(list))
	for _, p := range list {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term) ||
			strings.Contains(strings.ToLower(p.Category), term) {
			out = append(out, p)
		}
	}
	return out, nil
}

// Filter 按条件过滤在售商品
func (s *ProductService) Filter(ctx context.Context, f ProductFilter) ([]*product.Product, error) {
	list, err := s.repo.ListOnline(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*product.Product, 0, len(list))
	for _, p := range list {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.MinPrice > 0 && p.Price < f.MinPrice {
			continue
		}
		if f.MaxPrice > 0 && p.Price > f.MaxPrice {
			continue
		}
		if f.MinRating > 0 && p.Rating < f.MinRating {
			continue
		}
		if f.InStock && p.Stock <= 0 {
			continue
		}
		if f.Featured && !p.Featured {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Sort 对商品列表排序，不修改传入切片。
// sortBy: price-low / price-high / name / newest / rating，默认按人气
func (s *ProductService) Sort(list []*product.Product, sortBy string) []*product.Product {
	sorted := make([]*product.Product, len(list))
	copy(sorted, list)

	switch sortBy {
	case "price-low":
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price < sorted[j].Price })
	case "price-high":
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Price > sorted[j].Price })
	case "name":
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	case "newest":
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	case "rating":
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rating > sorted[j].Rating })
	default: // popular
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Popularity > sorted[j].Popularity })
	}
	return sorted
}

// Featured 返回最多 limit 个精选商品
func (s *ProductService) Featured(ctx context.Context, limit int) ([]*product.Product, error) {
	list, err := s.repo.ListOnline(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*product.Product, 0, limit)
	for _, p := range list {
		if !p.Featured {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// OnSale 返回最多 limit 个打折商品
func (s *ProductService) OnSale(ctx context.Context, limit int) ([]*product.Product, error) {
	list, err := s.repo.ListOnline(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*product.Product, 0, limit)
	for _, p := range list {
		if p.Discount <= 0 {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Similar 返回与指定商品同分类的其他商品，最多 limit 个
func (s *ProductService) Similar(ctx context.Context, productID int64, limit int) ([]*product.Product, error) {
	p, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.ListByCategory(ctx, p.Category)
	if err != nil {
		return nil, err
	}
	out := make([]*product.Product, 0, limit)
	for _, other := range list {
		if other.ID == productID {
			continue
		}
		out = append(out, other)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Categories 从在售商品提取分类汇总，按名称升序
func (s *ProductService) Categories(ctx context.Context) ([]CategorySummary, error) {
	list, err := s.repo.ListOnline(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64)
	for _, p := range list {
		counts[p.Category]++
	}

	out := make([]CategorySummary, 0, len(counts))
	for name, count := range counts {
		out = append(out, CategorySummary{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *ProductService) Create(ctx context.Context, p *product.Product) error {
	return s.repo.Create(ctx, p)
}

func (s *ProductService) Update(ctx context.Context, p *product.Product) error {
	return s.repo.Update(ctx, p)
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
