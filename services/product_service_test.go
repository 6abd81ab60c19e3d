package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/HSouheill/marketplace_backend/models"
	"github.com/HSouheill/marketplace_backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type productFixture struct {
	svc      *ProductService
	store    *memProductStore
	brands   *memBrandStore
	images   *fakeImages
	category *models.Category
	vendor   models.Actor
}

func newProductFixture(t *testing.T) productFixture {
	t.Helper()
	categories := newMemCategoryStore()
	category := &models.Category{Name: "Sinks", Level: 1, Path: "Sinks"}
	if err := categories.Create(context.Background(), category); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	store := newMemProductStore()
	brands := newMemBrandStore()
	images := &fakeImages{}
	return productFixture{
		svc:      NewProductService(store, categories, brands, images),
		store:    store,
		brands:   brands,
		images:   images,
		category: category,
		vendor:   models.Actor{ID: primitive.NewObjectID(), Role: models.RoleVendor},
	}
}

func (f productFixture) request(name string) models.ProductRequest {
	return models.ProductRequest{
		Name:        name,
		Description: "Stainless steel",
		Price:       120,
		Quantity:    4,
		Category:    f.category.ID.Hex(),
	}
}

func TestCreateProductOwnership(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreateProduct(ctx, f.vendor, f.request("Double Bowl Sink"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Vendor == nil || *p.Vendor != f.vendor.ID {
		t.Errorf("vendor = %v, want %s", p.Vendor, f.vendor.ID.Hex())
	}
	if p.Slug != "double-bowl-sink" || !p.IsActive {
		t.Errorf("product = %+v", p)
	}

	admin := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleAdmin}
	house, err := f.svc.CreateProduct(ctx, admin, f.request("House Brand Sink"))
	if err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if house.Vendor != nil {
		t.Errorf("admin product has vendor %v", house.Vendor)
	}

	other := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleVendor}
	if _, err := f.svc.UpdateProduct(ctx, other, p.ID, f.request("Stolen Sink")); utils.StatusOf(err) != http.StatusForbidden {
		t.Errorf("foreign vendor update: %v", err)
	}
	if err := f.svc.DeleteProduct(ctx, other, p.ID); utils.StatusOf(err) != http.StatusForbidden {
		t.Errorf("foreign vendor delete: %v", err)
	}
	if _, err := f.svc.UpdateProduct(ctx, admin, p.ID, f.request("Renamed Sink")); err != nil {
		t.Errorf("admin update: %v", err)
	}
}

func TestCreateProductCategoryErrors(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	req := f.request("Double Bowl Sink")
	req.Category = "nope"
	if _, err := f.svc.CreateProduct(ctx, f.vendor, req); utils.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("invalid id: %v", err)
	}
	req.Category = primitive.NewObjectID().Hex()
	if _, err := f.svc.CreateProduct(ctx, f.vendor, req); utils.StatusOf(err) != http.StatusNotFound {
		t.Errorf("missing category: %v", err)
	}
}

func TestAddProductImage(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreateProduct(ctx, f.vendor, f.request("Double Bowl Sink"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	p, err = f.svc.AddProductImage(ctx, f.vendor, p.ID, "front.jpg", []byte("jpeg"))
	if err != nil {
		t.Fatalf("first image: %v", err)
	}
	p, err = f.svc.AddProductImage(ctx, f.vendor, p.ID, "side.jpg", []byte("jpeg"))
	if err != nil {
		t.Fatalf("second image: %v", err)
	}
	if p.ImageCover != "/uploads/products/front.jpg" || len(p.Images) != 2 {
		t.Errorf("cover %q images %v", p.ImageCover, p.Images)
	}

	stored, _ := f.store.FindByID(ctx, p.ID)
	if len(stored.Images) != 2 {
		t.Errorf("stored images = %v", stored.Images)
	}

	other := models.Actor{ID: primitive.NewObjectID(), Role: models.RoleVendor}
	if _, err := f.svc.AddProductImage(ctx, other, p.ID, "x.jpg", []byte("jpeg")); utils.StatusOf(err) != http.StatusForbidden {
		t.Errorf("foreign vendor upload: %v", err)
	}

	f.images.err = utils.BadRequest("Not an image! Please upload only images.")
	if _, err := f.svc.AddProductImage(ctx, f.vendor, p.ID, "x.jpg", []byte("nope")); utils.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("bad image: %v", err)
	}
}

func TestAddProductImageLimit(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	p, err := f.svc.CreateProduct(ctx, f.vendor, f.request("Double Bowl Sink"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < models.MaxProductImages; i++ {
		if _, err := f.svc.AddProductImage(ctx, f.vendor, p.ID, "img.jpg", []byte("jpeg")); err != nil {
			t.Fatalf("image %d: %v", i, err)
		}
	}
	if _, err := f.svc.AddProductImage(ctx, f.vendor, p.ID, "img.jpg", []byte("jpeg")); utils.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("over limit: %v", err)
	}
}

func TestProductBrandReference(t *testing.T) {
	f := newProductFixture(t)
	ctx := context.Background()

	brand := &models.Brand{Name: "Franke", Slug: "franke"}
	if err := f.brands.Create(ctx, brand); err != nil {
		t.Fatalf("seed brand: %v", err)
	}

	req := f.request("Branded Kitchen Sink")
	req.Brand = brand.ID.Hex()
	p, err := f.svc.CreateProduct(ctx, f.vendor, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Brand == nil || *p.Brand != brand.ID {
		t.Fatalf("brand = %v, want %s", p.Brand, brand.ID.Hex())
	}

	page, err := f.svc.ListProducts(ctx, models.ProductFilter{Brand: &brand.ID})
	if err != nil || page.Total != 1 {
		t.Errorf("brand filter = %d, %v", page.Total, err)
	}

	req.Brand = primitive.NewObjectID().Hex()
	if _, err := f.svc.UpdateProduct(ctx, f.vendor, p.ID, req); utils.StatusOf(err) != http.StatusNotFound {
		t.Errorf("unknown brand status = %d, want 404", utils.StatusOf(err))
	}
	req.Brand = "not-an-id"
	if _, err := f.svc.CreateProduct(ctx, f.vendor, req); utils.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("malformed brand status = %d, want 400", utils.StatusOf(err))
	}

	req.Brand = ""
	updated, err := f.svc.UpdateProduct(ctx, f.vendor, p.ID, req)
	if err != nil || updated.Brand != nil {
		t.Errorf("clearing brand = %v, %v", updated, err)
	}
}
