package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopmate-backend/internal/catalog"
)

func newCatalogRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.Load("")
	require.NoError(t, err)
	h := NewCatalogHandler(cat)

	r := gin.New()
	r.GET("/api/phones", h.ListPhones)
	r.GET("/api/phones/:phone_id", h.GetPhone)
	return r
}

func getJSON(t *testing.T, r *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestListPhones(t *testing.T) {
	r := newCatalogRouter(t)

	w, body := getJSON(t, r, "/api/phones")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(10), body["count"])
}

func TestListPhonesWithFilters(t *testing.T) {
	r := newCatalogRouter(t)

	w, body := getJSON(t, r, "/api/phones?brand=Apple&max_price=100000")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), body["count"])

	phones := body["phones"].([]interface{})
	first := phones[0].(map[string]interface{})
	assert.Equal(t, "iphone-15", first["id"])

	// 非法数字参数当作未过滤
	w, body = getJSON(t, r, "/api/phones?max_price=cheap")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(10), body["count"])
}

func TestGetPhone(t *testing.T) {
	r := newCatalogRouter(t)

	w, body := getJSON(t, r, "/api/phones/pixel-8a")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Google Pixel 8a", body["model"])

	w, body = getJSON(t, r, "/api/phones/galaxy-fold")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "phone not found: galaxy-fold", body["error"])
}
