package storeapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/internal/webserver"
	"github.com/vendora/vendora/pkg/common"
)

func registerCatalogRoutes() {
	webserver.PubGET("/shop/banners", listShopBanners)
	webserver.PubGET("/shop/categories", listShopCategories)
	webserver.PubGET("/shop/products", listShopProducts)
	webserver.PubGET("/shop/products/:id", getShopProduct)
}

// shopProduct is the storefront view of a product. Cost and margin bounds
// never leave the admin side.
type shopProduct struct {
	ID          int64  `json:"id,string"`
	Sku         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Stock       int64  `json:"stock"`
	Image       string `json:"image"`
	CategoryID  int64  `json:"category_id,string"`
}

func toShopProduct(p domain.Product) shopProduct {
	return shopProduct{
		ID:          p.ID,
		Sku:         p.Sku,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Image:       p.Image,
		CategoryID:  p.CategoryID,
	}
}

func listShopBanners(c echo.Context) error {
	var rows []domain.Banner
	if err := GetDB(c).Where("status = ?", common.ENABLED).
		Order("sort ASC, id ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load banners")
	}
	return ok(c, rows)
}

func listShopCategories(c echo.Context) error {
	var rows []domain.Category
	if err := GetDB(c).Order("sort ASC, id ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load categories")
	}
	return ok(c, rows)
}

func listShopProducts(c echo.Context) error {
	page := cast.ToInt(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize := cast.ToInt(c.QueryParam("pageSize"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	base := GetDB(c).Model(&domain.Product{}).Where("status = ?", domain.ProductActive)
	if cat := c.QueryParam("category_id"); cat != "" {
		base = base.Where("category_id = ?", cat)
	}
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		base = base.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(q)+"%")
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load products")
	}
	var products []domain.Product
	if err := base.Order("id DESC").Offset((page-1)*pageSize).Limit(pageSize).Find(&products).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load products")
	}

	rows := make([]shopProduct, 0, len(products))
	for _, p := range products {
		rows = append(rows, toShopProduct(p))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":      0,
		"data":      rows,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

func getShopProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID")
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ? AND status = ?", id, domain.ProductActive).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	}
	return ok(c, toShopProduct(p))
}
