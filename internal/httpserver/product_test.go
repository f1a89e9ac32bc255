package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"catalog-service/internal/models"
	"catalog-service/internal/repo"
	"catalog-service/internal/service"
)

func newTestServer(t *testing.T) *echo.Echo {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	svc := &service.CatalogService{Repo: &repo.GormRepo{DB: db}}

	e := echo.New()
	Register(e, &Deps{CatalogHandler: &CatalogHTTP{Svc: svc}})
	return e
}

func doJSONRequest(t *testing.T, e *echo.Echo, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	e := newTestServer(t)

	rec := doJSONRequest(t, e, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "healthy", resp["status"])
}

func TestProductLifecycle(t *testing.T) {
	e := newTestServer(t)

	rec := doJSONRequest(t, e, http.MethodPost, "/products", map[string]interface{}{
		"name":  "Laptop",
		"price": 999.99,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	require.Equal(t, "Laptop", created.Name)
	require.Equal(t, 999.99, created.Price)

	rec = doJSONRequest(t, e, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, created.ID, list[0].ID)

	rec = doJSONRequest(t, e, http.MethodGet, "/products/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSONRequest(t, e, http.MethodPut, "/products/1", map[string]interface{}{
		"name":  "Laptop Pro",
		"price": 1299.0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "Laptop Pro", updated.Name)
	require.Equal(t, float64(1299), updated.Price)

	rec = doJSONRequest(t, e, http.MethodDelete, "/products/1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())

	rec = doJSONRequest(t, e, http.MethodGet, "/products/1", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSONRequest(t, e, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestGetProductsEmptyArray(t *testing.T) {
	e := newTestServer(t)

	rec := doJSONRequest(t, e, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestGetProductBadID(t *testing.T) {
	e := newTestServer(t)

	rec := doJSONRequest(t, e, http.MethodGet, "/products/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSONRequest(t, e, http.MethodGet, "/products/-1", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSONRequest(t, e, http.MethodGet, "/products/99999999999999999999", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProductInvalid(t *testing.T) {
	e := newTestServer(t)

	rec := doJSONRequest(t, e, http.MethodPost, "/products", map[string]interface{}{
		"name":  "",
		"price": 10,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSONRequest(t, e, http.MethodPost, "/products", map[string]interface{}{
		"name":  "Laptop",
		"price": -5,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"name": `))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	malformed := httptest.NewRecorder()
	e.ServeHTTP(malformed, req)
	require.Equal(t, http.StatusBadRequest, malformed.Code)

	rec = doJSONRequest(t, e, http.MethodGet, "/products", nil)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestUpdateProductNotFound(t *testing.T) {
	e := newTestServer(t)

	rec := doJSONRequest(t, e, http.MethodPut, "/products/42", map[string]interface{}{
		"name":  "Ghost",
		"price": 1,
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProductInvalid(t *testing.T) {
	e := newTestServer(t)

	rec := doJSONRequest(t, e, http.MethodPost, "/products", map[string]interface{}{
		"name":  "Laptop",
		"price": 999.99,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSONRequest(t, e, http.MethodPut, "/products/1", map[string]interface{}{
		"name":  "",
		"price": 10,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSONRequest(t, e, http.MethodGet, "/products/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "Laptop", got.Name)
	require.Equal(t, 999.99, got.Price)
}

func TestDeleteProductNotFound(t *testing.T) {
	e := newTestServer(t)

	rec := doJSONRequest(t, e, http.MethodDelete, "/products/42", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchProducts(t *testing.T) {
	e := newTestServer(t)

	for _, p := range []map[string]interface{}{
		{"name": "Laptop", "price": 999.99},
		{"name": "Gaming Laptop", "price": 1999.99},
		{"name": "Mouse", "price": 19.99},
	} {
		rec := doJSONRequest(t, e, http.MethodPost, "/products", p)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSONRequest(t, e, http.MethodGet, "/products/search?q=laptop", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Total    int64            `json:"total"`
		Products []models.Product `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Products, 2)

	rec = doJSONRequest(t, e, http.MethodGet, "/products/search?q=laptop&page=2&size=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Products, 1)
	require.Equal(t, "Gaming Laptop", resp.Products[0].Name)

	rec = doJSONRequest(t, e, http.MethodGet, "/products/search", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
