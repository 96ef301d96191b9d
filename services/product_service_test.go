package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"saif-gifts/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testProducts() []*models.Product {
	return []*models.Product{
		{ID: "A", Name: "Crystal Vase", Category: "Decor", Price: decimal.NewFromInt(1000), PurchasePrice: decimal.NewFromInt(600), Code: "SG-A", ImageID: "products/vase", IsActive: true},
		{ID: "B", Name: "Gift Card", Category: "Cards", Price: decimal.NewFromInt(250), PurchasePrice: decimal.NewFromInt(100), Code: "SG-B", IsActive: true},
		{ID: "C", Name: "Retired Frame", Category: "Decor", Price: decimal.NewFromInt(99), IsActive: false},
	}
}

func newTestProductService() (*ProductService, *MockProductStore, *MockProductCache, *MockImageStore) {
	store := NewMockProductStore(testProducts()...)
	cache := NewMockProductCache()
	images := &MockImageStore{}
	return NewProductService(store, cache, images, 1<<20, zap.NewNop()), store, cache, images
}

// uploadedFile builds a FileHeader the way gin hands one to a handler.
func uploadedFile(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["image"][0]
}

func TestProductService_GetProductByID_Caches(t *testing.T) {
	svc, store, _, _ := newTestProductService()
	ctx := context.Background()

	p, err := svc.GetProductByID(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/products/vase", p.ImageURL)

	p.Name = "mutated"
	again, err := svc.GetProductByID(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "Crystal Vase", again.Name)
	assert.Equal(t, 1, store.GetCalls)
}

func TestProductService_GetProductByID_SharesConcurrentMisses(t *testing.T) {
	svc, store, _, _ := newTestProductService()
	store.GetLatency = 50 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GetProductByID(context.Background(), "B")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, store.GetCalls, 2)
}

func TestProductService_GetActiveProduct(t *testing.T) {
	svc, _, _, _ := newTestProductService()
	ctx := context.Background()

	_, err := svc.GetActiveProduct(ctx, "C")
	assert.True(t, models.IsNotFound(err))

	_, err = svc.GetActiveProduct(ctx, "missing")
	assert.True(t, models.IsNotFound(err))

	p, err := svc.GetActiveProduct(ctx, "B")
	require.NoError(t, err)
	assert.Equal(t, "Gift Card", p.Name)
}

func TestProductService_GetAllProducts(t *testing.T) {
	svc, _, _, _ := newTestProductService()
	ctx := context.Background()

	resp, err := svc.GetAllProducts(ctx, models.ProductFilter{Category: "Decor", Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 12, resp.Meta.Limit)
	assert.Equal(t, 1, resp.Meta.TotalItems)
	assert.Equal(t, 1, resp.Meta.TotalPages)

	lo, hi := decimal.NewFromInt(500), decimal.NewFromInt(100)
	_, err = svc.GetAllProducts(ctx, models.ProductFilter{MinPrice: &lo, MaxPrice: &hi})
	assert.True(t, models.IsValidation(err))
}

func TestProductService_GetProductByCode(t *testing.T) {
	svc, _, _, _ := newTestProductService()
	ctx := context.Background()

	p, err := svc.GetProductByCode(ctx, " SG-B ")
	require.NoError(t, err)
	assert.Equal(t, "B", p.ID)

	_, err = svc.GetProductByCode(ctx, "")
	assert.True(t, models.IsValidation(err))
}

func TestProductService_CreateProduct(t *testing.T) {
	svc, store, _, images := newTestProductService()
	ctx := context.Background()

	req := models.CreateProductRequest{
		Name:          " Brass Lantern ",
		Category:      "Decor",
		Price:         "1499.999",
		PurchasePrice: "900",
		Stock:         4,
		Code:          "SG-L",
	}
	p, err := svc.CreateProduct(ctx, req, uploadedFile(t, "brass lantern.png", []byte("png-bytes")))
	require.NoError(t, err)

	assert.Equal(t, "Brass Lantern", p.Name)
	assert.Equal(t, "1500", p.Price.String())
	assert.True(t, p.IsActive)
	assert.Equal(t, "products/brass_lantern", p.ImageID)
	assert.Equal(t, "https://img.example.com/products/brass_lantern", p.ImageURL)
	assert.Equal(t, []string{"products/brass_lantern"}, images.Uploaded)
	assert.Contains(t, store.Products, p.ID)
}

func TestProductService_CreateProductValidation(t *testing.T) {
	svc, _, _, images := newTestProductService()
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, models.CreateProductRequest{Name: "x", Category: "y", Price: "abc"}, nil)
	assert.True(t, models.IsValidation(err))

	_, err = svc.CreateProduct(ctx, models.CreateProductRequest{Name: "x", Category: "y", Price: "-1"}, nil)
	assert.True(t, models.IsValidation(err))

	_, err = svc.CreateProduct(ctx, models.CreateProductRequest{Name: "x", Category: "y", Price: "1", Stock: -2}, nil)
	assert.True(t, models.IsValidation(err))

	_, err = svc.CreateProduct(ctx, models.CreateProductRequest{Name: "x", Category: "y", Price: "1"},
		uploadedFile(t, "setup.exe", []byte("MZ")))
	assert.True(t, models.IsValidation(err))
	assert.Empty(t, images.Uploaded)
}

func TestProductService_CreateProductDiscardsImageOnFailure(t *testing.T) {
	svc, store, _, images := newTestProductService()
	store.CreateErr = errors.New("insert failed")

	_, err := svc.CreateProduct(context.Background(),
		models.CreateProductRequest{Name: "Lamp", Category: "Decor", Price: "10"},
		uploadedFile(t, "lamp.jpg", []byte("jpg")))
	require.Error(t, err)
	assert.Equal(t, []string{"products/lamp"}, images.Deleted)
}

func TestProductService_UploadFailure(t *testing.T) {
	svc, _, _, images := newTestProductService()
	images.UploadErr = errors.New("cloud down")

	_, err := svc.CreateProduct(context.Background(),
		models.CreateProductRequest{Name: "Lamp", Category: "Decor", Price: "10"},
		uploadedFile(t, "lamp.jpg", []byte("jpg")))
	assert.True(t, models.IsCollaborator(err))
}

func TestProductService_UpdateProduct(t *testing.T) {
	svc, store, cache, images := newTestProductService()
	ctx := context.Background()

	_, err := svc.GetProductByID(ctx, "A")
	require.NoError(t, err)

	stock := 9
	p, err := svc.UpdateProduct(ctx, "A", models.UpdateProductRequest{Price: "1200", Stock: &stock},
		uploadedFile(t, "vase-new.webp", []byte("webp")))
	require.NoError(t, err)

	assert.Equal(t, "1200", p.Price.String())
	assert.Equal(t, 9, p.Stock)
	assert.Equal(t, "Crystal Vase", p.Name)
	assert.Equal(t, "products/vase-new", store.Products["A"].ImageID)
	assert.Equal(t, []string{"products/vase"}, images.Deleted, "old image is removed")
	assert.Contains(t, cache.Deleted, "A")

	fresh, err := svc.GetProductByID(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "1200", fresh.Price.String())
}

func TestProductService_UpdateProductErrors(t *testing.T) {
	svc, _, _, _ := newTestProductService()
	ctx := context.Background()

	_, err := svc.UpdateProduct(ctx, "missing", models.UpdateProductRequest{}, nil)
	assert.True(t, models.IsNotFound(err))

	neg := -1
	_, err = svc.UpdateProduct(ctx, "A", models.UpdateProductRequest{Stock: &neg}, nil)
	assert.True(t, models.IsValidation(err))
}

func TestProductService_DeleteProduct(t *testing.T) {
	svc, store, cache, _ := newTestProductService()
	ctx := context.Background()

	require.NoError(t, svc.DeleteProduct(ctx, "B"))
	assert.False(t, store.Products["B"].IsActive)
	assert.Contains(t, cache.Deleted, "B")

	_, err := svc.GetActiveProduct(ctx, "B")
	assert.True(t, models.IsNotFound(err))

	assert.True(t, models.IsNotFound(svc.DeleteProduct(ctx, "missing")))
}

func TestProductService_QRCode(t *testing.T) {
	svc, _, _, _ := newTestProductService()
	ctx := context.Background()

	png, err := svc.QRCode(ctx, "A")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = svc.QRCode(ctx, "C")
	assert.True(t, models.IsValidation(err))
}
