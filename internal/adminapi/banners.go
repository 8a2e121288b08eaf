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

func registerBannerRoutes() {
	webserver.ApiGET("/banners", listBanners)
	webserver.ApiPOST("/banners", createBanner)
	webserver.ApiPUT("/banners/:id", updateBanner)
	webserver.ApiDELETE("/banners/:id", deleteBanner)
}

func listBanners(c echo.Context) error {
	var rows []domain.Banner
	if err := GetDB(c).Order("sort ASC, id ASC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query banners", err.Error())
	}
	return ok(c, rows)
}

func createBanner(c echo.Context) error {
	var b domain.Banner
	if err := c.Bind(&b); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse banner", err.Error())
	}
	if strings.TrimSpace(b.Image) == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Banner image is required", nil)
	}
	b.ID = common.UUIDint64()
	if b.Status == "" {
		b.Status = common.ENABLED
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	if err := GetDB(c).Create(&b).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create banner", err.Error())
	}
	oplog(c, "create_banner", b.Title)
	return ok(c, b)
}

func updateBanner(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid banner ID", nil)
	}
	var b domain.Banner
	if err := GetDB(c).Where("id = ?", id).First(&b).Error; err != nil {
		return fail(c, http.StatusNotFound, "BANNER_NOT_FOUND", "Banner not found", nil)
	}
	var payload domain.Banner
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse banner", err.Error())
	}
	if payload.Title != "" {
		b.Title = payload.Title
	}
	if payload.Image != "" {
		b.Image = payload.Image
	}
	if payload.Link != "" {
		b.Link = payload.Link
	}
	if payload.Status != "" {
		b.Status = payload.Status
	}
	b.Sort = payload.Sort
	b.UpdatedAt = time.Now()
	if err := GetDB(c).Save(&b).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update banner", err.Error())
	}
	return ok(c, b)
}

func deleteBanner(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid banner ID", nil)
	}
	if err := GetDB(c).Where("id = ?", id).Delete(&domain.Banner{}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete banner", err.Error())
	}
	return ok(c, map[string]interface{}{"id": id})
}
