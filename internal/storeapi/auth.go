package storeapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/vendora/vendora/internal/domain"
	"github.com/vendora/vendora/internal/webserver"
	"github.com/vendora/vendora/pkg/common"
)

func registerCustomerAuthRoutes() {
	webserver.PubPOST("/shop/register", customerRegister)
	webserver.PubPOST("/shop/login", customerLogin)
	webserver.StoreGET("/profile", customerProfile)
}

type registerPayload struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Mobile   string `json:"mobile" form:"mobile"`
	Password string `json:"password" form:"password"`
	Address  string `json:"address" form:"address"`
	City     string `json:"city" form:"city"`
	Country  string `json:"country" form:"country"`
}

func customerRegister(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration")
	}
	payload.Email = strings.TrimSpace(strings.ToLower(payload.Email))
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" || payload.Email == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Name, email and password are required")
	}
	var dup domain.Customer
	if err := GetDB(c).Where("email = ?", payload.Email).First(&dup).Error; err == nil {
		return fail(c, http.StatusConflict, "DUPLICATE_EMAIL", "An account with this email already exists")
	}

	now := time.Now()
	cu := domain.Customer{
		ID:        common.UUIDint64(),
		Name:      payload.Name,
		Email:     payload.Email,
		Mobile:    payload.Mobile,
		Password:  common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt()),
		Address:   payload.Address,
		City:      payload.City,
		Country:   payload.Country,
		Status:    common.ENABLED,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := GetDB(c).Create(&cu).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create account")
	}
	zap.L().Info("customer registered", zap.Int64("customer_id", cu.ID))
	return ok(c, cu)
}

type customerLoginPayload struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func customerLogin(c echo.Context) error {
	var payload customerLoginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse login")
	}
	payload.Email = strings.TrimSpace(strings.ToLower(payload.Email))
	if payload.Email == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Email and password are required")
	}

	var cu domain.Customer
	if err := GetDB(c).Where("email = ?", payload.Email).First(&cu).Error; err != nil {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	}
	if cu.Status == common.DISABLED {
		return fail(c, http.StatusUnauthorized, "ACCOUNT_DISABLED", "Account is disabled")
	}
	if cu.Password != common.Sha256HashWithSalt(payload.Password, common.GetSecretSalt()) {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"cid": cu.ID,
		"eml": cu.Email,
		"exp": time.Now().Add(7 * 24 * time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(GetConfig(c).Web.JwtSecret))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign token")
	}

	GetDB(c).Model(&domain.Customer{}).Where("id = ?", cu.ID).
		Update("last_login", time.Now())

	return ok(c, map[string]interface{}{
		"token": signed,
		"name":  cu.Name,
		"email": cu.Email,
	})
}

func customerProfile(c echo.Context) error {
	cid := currentCustomerID(c)
	if cid == 0 {
		return fail(c, http.StatusUnauthorized, "INVALID_TOKEN", "Customer token required")
	}
	var cu domain.Customer
	if err := GetDB(c).Where("id = ?", cid).First(&cu).Error; err != nil {
		return fail(c, http.StatusNotFound, "CUSTOMER_NOT_FOUND", "Account not found")
	}
	return ok(c, cu)
}
