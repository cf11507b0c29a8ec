// public_catalog_test.go contains handler integration tests for the
// public read side of the catalog: category tree, product pages, search
// and the per-product review listing. Tests are skipped when PostgreSQL
// or Valkey are unavailable.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"telemart/internal/models"
)

type productPage struct {
	Products []models.Product `json:"products"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
	Total    int              `json:"total"`
}

func getProducts(t *testing.T, env *testEnv, query string) (*httptest.ResponseRecorder, *productPage) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/products"+query, nil)
	rec := httptest.NewRecorder()
	env.Products.List(rec, req)
	if rec.Code != http.StatusOK {
		return rec, nil
	}
	var page productPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode product page: %v", err)
	}
	return rec, &page
}

// TestProductList_Pagination verifies the fixed page size of 12 and the
// page/pages/total bookkeeping.
func TestProductList_Pagination(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCatalog(t, env.DB, "HPub page") })

	cat := seedCategory(t, env, "HPub page cat", nil)
	for i := 0; i < 13; i++ {
		seedProduct(t, env, cat.ID, fmt.Sprintf("HPub page item %02d", i), "5.00", 1)
	}

	rec, first := getProducts(t, env, "?category="+cat.ID.String())
	if first == nil {
		t.Fatalf("page 1: got %d (body %s)", rec.Code, rec.Body.String())
	}
	if len(first.Products) != 12 {
		t.Errorf("page 1 length: got %d, want 12", len(first.Products))
	}
	if first.Page != 1 || first.Pages != 2 || first.Total != 13 {
		t.Errorf("bookkeeping: got page=%d pages=%d total=%d, want 1/2/13", first.Page, first.Pages, first.Total)
	}

	_, second := getProducts(t, env, "?category="+cat.ID.String()+"&page=2")
	if second == nil {
		t.Fatal("page 2 failed")
	}
	if len(second.Products) != 1 {
		t.Errorf("page 2 length: got %d, want 1", len(second.Products))
	}

	// Beyond the last page the list is empty but still a JSON array.
	rec, third := getProducts(t, env, "?category="+cat.ID.String()+"&page=3")
	if third == nil {
		t.Fatalf("page 3: got %d", rec.Code)
	}
	if len(third.Products) != 0 {
		t.Errorf("page 3 length: got %d, want 0", len(third.Products))
	}
	if !strings.Contains(rec.Body.String(), `"products":[]`) {
		t.Errorf("empty page should encode as [], body: %s", rec.Body.String())
	}
}

// TestProductList_Search verifies the case-insensitive substring filter.
func TestProductList_Search(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCatalog(t, env.DB, "HPub search") })

	cat := seedCategory(t, env, "HPub search cat", nil)
	seedProduct(t, env, cat.ID, "HPub search Enamel Mug", "8.00", 1)
	seedProduct(t, env, cat.ID, "HPub search Wool Cap", "12.00", 1)

	_, page := getProducts(t, env, "?category="+cat.ID.String()+"&search=enamel")
	if page == nil {
		t.Fatal("search request failed")
	}
	if page.Total != 1 || len(page.Products) != 1 {
		t.Fatalf("search matches: got total=%d len=%d, want 1/1", page.Total, len(page.Products))
	}
	if !strings.Contains(page.Products[0].Name, "Enamel") {
		t.Errorf("matched wrong product: %q", page.Products[0].Name)
	}
}

// TestProductList_BadParams verifies parameter validation.
func TestProductList_BadParams(t *testing.T) {
	env := newTestEnv(t)

	for _, query := range []string{"?page=0", "?page=-2", "?page=abc", "?category=not-a-uuid"} {
		t.Run(query, func(t *testing.T) {
			rec, _ := getProducts(t, env, query)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

// TestProductGet_DetailAndCache verifies the detail endpoint, its 404
// paths and that the response lands in the catalog cache.
func TestProductGet_DetailAndCache(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCatalog(t, env.DB, "HPub detail") })

	cat := seedCategory(t, env, "HPub detail cat", nil)
	product := seedProduct(t, env, cat.ID, "HPub detail lamp", "25.00", 2)

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+product.ID.String(), nil)
	rec := httptest.NewRecorder()
	env.Products.Get(rec, withChiURLParam(req, "id", product.ID.String()))
	if rec.Code != http.StatusOK {
		t.Fatalf("get: got %d (body %s)", rec.Code, rec.Body.String())
	}
	var got models.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if got.ID != product.ID {
		t.Errorf("id: got %s, want %s", got.ID, product.ID)
	}

	exists, err := env.Valkey.Exists(context.Background(), "catalog:product:"+product.ID.String()).Result()
	if err != nil {
		t.Fatalf("valkey exists: %v", err)
	}
	if exists != 1 {
		t.Error("product detail was not cached")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/products/"+uuid.NewString(), nil)
	rec = httptest.NewRecorder()
	env.Products.Get(rec, withChiURLParam(req, "id", uuid.NewString()))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// TestProductReviews_EmptyAndMissing verifies the review listing for a
// product with no reviews yet and for an unknown product.
func TestProductReviews_EmptyAndMissing(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCatalog(t, env.DB, "HPub rev") })

	cat := seedCategory(t, env, "HPub rev cat", nil)
	product := seedProduct(t, env, cat.ID, "HPub rev chair", "40.00", 1)

	req := httptest.NewRequest(http.MethodGet, "/api/products/"+product.ID.String()+"/reviews", nil)
	rec := httptest.NewRecorder()
	env.Products.Reviews(rec, withChiURLParam(req, "id", product.ID.String()))
	if rec.Code != http.StatusOK {
		t.Fatalf("reviews: got %d (body %s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"reviews":[]`) {
		t.Errorf("empty reviews should encode as [], body: %s", rec.Body.String())
	}

	missing := uuid.NewString()
	req = httptest.NewRequest(http.MethodGet, "/api/products/"+missing+"/reviews", nil)
	rec = httptest.NewRecorder()
	env.Products.Reviews(rec, withChiURLParam(req, "id", missing))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown product: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}

// TestCategoryList_TreeShape verifies that the public listing nests
// children under their parents.
func TestCategoryList_TreeShape(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCatalog(t, env.DB, "HPub tree") })

	parent := seedCategory(t, env, "HPub tree parent", nil)
	seedCategory(t, env, "HPub tree child", &parent.ID)

	// The tree may be cached from an earlier test; a write clears it.
	env.Cache.InvalidateAll(context.Background())

	rec := httptest.NewRecorder()
	env.Categories.List(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
	var resp struct {
		Categories []models.Category `json:"categories"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode tree: %v", err)
	}

	var found *models.Category
	for i := range resp.Categories {
		if resp.Categories[i].Name == "HPub tree parent" {
			found = &resp.Categories[i]
			break
		}
	}
	if found == nil {
		t.Fatal("parent not in root list")
	}
	if len(found.Children) != 1 || found.Children[0].Name != "HPub tree child" {
		t.Errorf("children: got %+v, want the one child", found.Children)
	}
}

// TestCategoryGet_ByID verifies the single-category endpoint.
func TestCategoryGet_ByID(t *testing.T) {
	env := newTestEnv(t)
	t.Cleanup(func() { cleanCatalog(t, env.DB, "HPub one") })

	cat := seedCategory(t, env, "HPub one", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/categories/"+cat.ID.String(), nil)
	rec := httptest.NewRecorder()
	env.Categories.Get(rec, withChiURLParam(req, "id", cat.ID.String()))
	if rec.Code != http.StatusOK {
		t.Fatalf("get: got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/categories/"+uuid.NewString(), nil)
	rec = httptest.NewRecorder()
	env.Categories.Get(rec, withChiURLParam(req, "id", uuid.NewString()))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: got %d, want %d", rec.Code, http.StatusNotFound)
	}
}
