package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/internal/webserver"
	"github.com/vendora/vendora/pkg/common"
)

type productPayload struct {
	Sku         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	MinPrice    int64  `json:"min_price"`
	MaxPrice    int64  `json:"max_price"`
	Cost        int64  `json:"cost"`
	Stock       *int64 `json:"stock"`
	Image       string `json:"image"`
	CategoryID  int64  `json:"category_id,string"`
	Status      string `json:"status"`
}

func registerProductRoutes() {
	webserver.ApiGET("/catalog/products", listProducts)
	webserver.ApiGET("/catalog/products/:id", getProduct)
	webserver.ApiPOST("/catalog/products", createProduct)
	webserver.ApiPUT("/catalog/products/:id", updateProduct)
	webserver.ApiDELETE("/catalog/products/:id", deleteProduct)
}

func registerCategoryRoutes() {
	webserver.ApiGET("/catalog/categories", listCategories)
	webserver.ApiPOST("/catalog/categories", createCategory)
	webserver.ApiPUT("/catalog/categories/:id", updateCategory)
	webserver.ApiDELETE("/catalog/categories/:id", deleteCategory)
}

func listProducts(c echo.Context) error {
	page, pageSize := parsePagination(c)

	base := GetDB(c).Model(&domain.Product{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		base = base.Where("LOWER(name) LIKE ? OR sku = ?", "%"+strings.ToLower(q)+"%", q)
	}
	if cat := c.QueryParam("category_id"); cat != "" {
		base = base.Where("category_id = ?", cat)
	}
	if status := c.QueryParam("status"); status != "" {
		base = base.Where("status = ?", status)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}

	var rows []domain.Product
	if err := base.Order("id DESC").Offset((page-1)*pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query products", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func validateProductPayload(payload *productPayload) string {
	payload.Sku = strings.TrimSpace(payload.Sku)
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Sku == "" {
		return "Sku is required"
	}
	if payload.Name == "" {
		return "Name is required"
	}
	if payload.Price < 0 || payload.Cost < 0 {
		return "Price and cost must not be negative"
	}
	if payload.Stock != nil && *payload.Stock < 0 {
		return "Stock must not be negative"
	}
	if payload.Status != "" && payload.Status != domain.ProductActive && payload.Status != domain.ProductInactive {
		return "Status must be 'active' or 'inactive'"
	}
	return ""
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if msg := validateProductPayload(&payload); msg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}
	var dup domain.Product
	if err := GetDB(c).Where("sku = ?", payload.Sku).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_SKU", "Product with this sku already exists", nil)
	}

	now := time.Now()
	p := domain.Product{
		ID:          common.UUIDint64(),
		Sku:         payload.Sku,
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
		MinPrice:    payload.MinPrice,
		MaxPrice:    payload.MaxPrice,
		Cost:        payload.Cost,
		Image:       strings.TrimSpace(payload.Image),
		CategoryID:  payload.CategoryID,
		Status:      payload.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if payload.Stock != nil {
		p.Stock = *payload.Stock
	}
	if p.Status == "" {
		p.Status = domain.ProductActive
	}
	if err := GetDB(c).Create(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create product", err.Error())
	}
	oplog(c, "create_product", p.Sku)
	return ok(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var p domain.Product
	if err := GetDB(c).Where("id = ?", id).First(&p).Error; err != nil {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	}
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", err.Error())
	}
	if msg := validateProductPayload(&payload); msg != "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", msg, nil)
	}
	if payload.Sku != p.Sku {
		var dup domain.Product
		if err := GetDB(c).Where("sku = ? AND id != ?", payload.Sku, id).First(&dup).Error; err == nil {
			return fail(c, http.StatusConflict, "DUPLICATE_SKU", "Another product with this sku already exists", nil)
		}
	}

	p.Sku = payload.Sku
	p.Name = payload.Name
	p.Description = payload.Description
	p.Price = payload.Price
	p.MinPrice = payload.MinPrice
	p.MaxPrice = payload.MaxPrice
	p.Cost = payload.Cost
	p.Image = strings.TrimSpace(payload.Image)
	p.CategoryID = payload.CategoryID
	if payload.Status != "" {
		p.Status = payload.Status
	}
	if payload.Stock != nil {
		p.Stock = *payload.Stock
	}
	p.UpdatedAt = time.Now()

	if err := GetDB(c).Save(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update product", err.Error())
	}
	oplog(c, "update_product", p.Sku)
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Product{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete product", err.Error())
	}
	oplog(c, "delete_product", c.Param("id"))
	return ok(c, map[string]interface{}{"id": id})
}

func listCategories(c echo.Context) error {
	var rows []domain.Category
	if err := GetDB(c).Order("sort ASC, id ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query categories", err.Error())
	}
	return ok(c, rows)
}

func createCategory(c echo.Context) error {
	var cat domain.Category
	if err := c.Bind(&cat); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", err.Error())
	}
	cat.Name = strings.TrimSpace(cat.Name)
	if cat.Name == "" {
		return fail(c, http.StatusBadRequest, "MISSING_NAME", "Category name is required", nil)
	}
	cat.ID = common.UUIDint64()
	cat.CreatedAt = time.Now()
	cat.UpdatedAt = cat.CreatedAt
	if err := GetDB(c).Create(&cat).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create category", err.Error())
	}
	oplog(c, "create_category", cat.Name)
	return ok(c, cat)
}

func updateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	var cat domain.Category
	if err := GetDB(c).Where("id = ?", id).First(&cat).Error; err != nil {
		return fail(c, http.StatusNotFound, "CATEGORY_NOT_FOUND", "Category not found", nil)
	}
	var payload domain.Category
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", err.Error())
	}
	if name := strings.TrimSpace(payload.Name); name != "" {
		cat.Name = name
	}
	cat.Sort = payload.Sort
	cat.Remark = payload.Remark
	cat.UpdatedAt = time.Now()
	if err := GetDB(c).Save(&cat).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update category", err.Error())
	}
	return ok(c, cat)
}

func deleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid category ID", nil)
	}
	var used int64
	GetDB(c).Model(&domain.Product{}).Where("category_id = ?", id).Count(&used)
	if used > 0 {
		return fail(c, http.StatusConflict, "CATEGORY_IN_USE", "Category still has products", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Category{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete category", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
