package adminapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/internal/webserver"
	"github.com/vendora/vendora/pkg/common"
)

func registerCustomerRoutes() {
	webserver.ApiGET("/customers", listCustomers)
	webserver.ApiGET("/customers/:id", getCustomer)
	webserver.ApiPOST("/customers", createCustomer)
	webserver.ApiPUT("/customers/:id", updateCustomer)
	webserver.ApiDELETE("/customers/:id", deleteCustomer)
}

func listCustomers(c echo.Context) error {
	page, pageSize := parsePagination(c)

	base := GetDB(c).Model(&domain.Customer{})
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		base = base.Where("LOWER(name) LIKE ? OR email = ?", "%"+strings.ToLower(q)+"%", q)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customers", err.Error())
	}

	var rows []domain.Customer
	if err := base.Order("id DESC").Offset((page-1)*pageSize).Limit(pageSize).Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customers", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func getCustomer(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
	}
	var cu domain.Customer
	if err := GetDB(c).Where("id = ?", id).First(&cu).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customer", err.Error())
	}
	return ok(c, cu)
}

type customerPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Status   string `json:"status"`
	Remark   string `json:"remark"`
}

func createCustomer(c echo.Context) error {
	var payload customerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse customer parameters", nil)
	}
	payload.Email = strings.TrimSpace(strings.ToLower(payload.Email))
	if strings.TrimSpace(payload.Name) == "" || payload.Email == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name and email are required", nil)
	}
	var dup domain.Customer
	if err := GetDB(c).Where("email = ?", payload.Email).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_CUSTOMER", "Customer with this email already exists", nil)
	}

	now := time.Now()
	cu := domain.Customer{
		ID:        common.UUIDint64(),
		Name:      strings.TrimSpace(payload.Name),
		Email:     payload.Email,
		Mobile:    payload.Mobile,
		Address:   payload.Address,
		City:      payload.City,
		Country:   payload.Country,
		Status:    common.ENABLED,
		Remark:    payload.Remark,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if payload.Password != "" {
		cu.Password = common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt())
	}
	if err := GetDB(c).Create(&cu).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create customer", err.Error())
	}
	oplog(c, "create_customer", cu.Email)
	return ok(c, cu)
}

func updateCustomer(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
	}
	var payload customerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse customer parameters", nil)
	}
	var cu domain.Customer
	if err := GetDB(c).Where("id = ?", id).First(&cu).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Customer not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query customer", err.Error())
	}

	updates := map[string]interface{}{}
	if payload.Name != "" {
		updates["name"] = strings.TrimSpace(payload.Name)
	}
	if payload.Email != "" {
		email := strings.TrimSpace(strings.ToLower(payload.Email))
		var dup domain.Customer
		if err := GetDB(c).Where("email = ? AND id != ?", email, id).First(&dup).Error; err == nil {
			return fail(c, http.StatusConflict, "DUPLICATE_CUSTOMER", "Another customer with this email already exists", nil)
		}
		updates["email"] = email
	}
	if payload.Mobile != "" {
		updates["mobile"] = payload.Mobile
	}
	if payload.Password != "" {
		updates["password"] = common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt())
	}
	if payload.Address != "" {
		updates["address"] = payload.Address
	}
	if payload.City != "" {
		updates["city"] = payload.City
	}
	if payload.Country != "" {
		updates["country"] = payload.Country
	}
	if payload.Status != "" {
		updates["status"] = payload.Status
	}
	if payload.Remark != "" {
		updates["remark"] = payload.Remark
	}
	updates["updated_at"] = time.Now()
	if err := GetDB(c).Model(&cu).Updates(updates).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update customer", err.Error())
	}
	GetDB(c).Where("id = ?", id).First(&cu)
	oplog(c, "update_customer", cu.Email)
	return ok(c, cu)
}

func deleteCustomer(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid customer ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Customer{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete customer", err.Error())
	}
	oplog(c, "delete_customer", c.Param("id"))
	return ok(c, map[string]interface{}{"id": id})
}
