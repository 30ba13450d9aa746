package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shopmate-backend/internal/catalog"
)

type CatalogHandler struct {
	cat *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{cat: cat}
}

// ListPhones 支持查询参数过滤：brand、max_price、min_price、min_ram、
// min_battery、min_refresh_rate，不带参数返回全部
func (h *CatalogHandler) ListPhones(c *gin.Context) {
	filter := catalog.Filter{
		Brand:          c.Query("brand"),
		MaxPrice:       intQuery(c, "max_price"),
		MinPrice:       intQuery(c, "min_price"),
		MinRAM:         intQuery(c, "min_ram"),
		MinBattery:     intQuery(c, "min_battery"),
		MinRefreshRate: intQuery(c, "min_refresh_rate"),
	}

	phones := h.cat.Search(filter)

	c.JSON(http.StatusOK, gin.H{
		"count":  len(phones),
		"phones": phones,
	})
}

func (h *CatalogHandler) GetPhone(c *gin.Context) {
	id := c.Param("phone_id")

	phone, err := h.cat.Resolve(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "phone not found: " + id})
		return
	}

	c.JSON(http.StatusOK, phone)
}

func intQuery(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}
