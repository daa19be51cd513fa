package usecase

import (
	"context"
	"testing"

	"agroshop/internal/domain/model"
	repo "agroshop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type ProdProductRepoMock struct{ mock.Mock }

func (m *ProdProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProdProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProdProductRepoMock) FindVariant(ctx context.Context, productID int64, variantID int64) (model.Product, model.ProductVariant, error) {
	panic("not used in ProductUsecase tests")
}

func (m *ProdProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func TestProductUsecase_ListPublicProducts_InvalidPage(t *testing.T) {
	uc := NewProductUsecase(new(ProdProductRepoMock))

	_, err := uc.ListPublicProducts(context.Background(), ListProductsInput{Page: 0, Limit: 20})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
	assert.Equal(t, "invalid page", he.Message)
}

func TestProductUsecase_ListPublicProducts_InvalidLimit(t *testing.T) {
	uc := NewProductUsecase(new(ProdProductRepoMock))

	_, err := uc.ListPublicProducts(context.Background(), ListProductsInput{Page: 1, Limit: 101})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, "invalid limit", he.Message)
}

func TestProductUsecase_ListPublicProducts_InvalidSort(t *testing.T) {
	uc := NewProductUsecase(new(ProdProductRepoMock))

	_, err := uc.ListPublicProducts(context.Background(), ListProductsInput{Page: 1, Limit: 20, Sort: "cheapest"})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, "invalid sort", he.Message)
}

func TestProductUsecase_ListPublicProducts_PriceRangeFlipped(t *testing.T) {
	uc := NewProductUsecase(new(ProdProductRepoMock))

	minP := int64(5000)
	maxP := int64(100)
	_, err := uc.ListPublicProducts(context.Background(), ListProductsInput{Page: 1, Limit: 20, MinPrice: &minP, MaxPrice: &maxP})
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 400, he.Status)
}

func TestProductUsecase_ListPublicProducts_Success(t *testing.T) {
	ctx := context.Background()

	pRepo := new(ProdProductRepoMock)
	uc := NewProductUsecase(pRepo)

	in := ListProductsInput{Page: 1, Limit: 20, Q: "りんご", Category: "fruit", Sort: "new"}
	q := repo.ProductListQuery{Page: 1, Limit: 20, Q: "りんご", Category: "fruit", Sort: "new"}

	items := []model.Product{
		{ID: 1, Name: "りんご", Category: "fruit", IsActive: true},
	}
	pRepo.On("ListPublic", mock.Anything, q).Return(items, int64(1), nil)

	out, err := uc.ListPublicProducts(ctx, in)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.Total)
	assert.Equal(t, 1, out.Page)
	assert.Len(t, out.Items, 1)
}

func TestProductUsecase_GetProductDetail_NotFound(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	pRepo.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	uc := NewProductUsecase(pRepo)

	_, err := uc.GetProductDetail(context.Background(), 99)
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestProductUsecase_GetProductDetail_InactiveHidden(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	pRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, IsActive: false}, nil)

	uc := NewProductUsecase(pRepo)

	//非公開の商品は存在を漏らさない
	_, err := uc.GetProductDetail(context.Background(), 1)
	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, 404, he.Status)
}

func TestProductUsecase_GetProductDetail_Success(t *testing.T) {
	pRepo := new(ProdProductRepoMock)
	pRepo.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "りんご", IsActive: true}, nil)

	uc := NewProductUsecase(pRepo)

	p, err := uc.GetProductDetail(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, "りんご", p.Name)
}
