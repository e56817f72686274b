package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"pharmaplus_echo/internal/services"
)

// DashboardHandler serves the platform-wide analytics report
type DashboardHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewDashboardHandler(db *gorm.DB, cache *services.RedisCache) *DashboardHandler {
	return &DashboardHandler{db: db, cache: cache}
}

// Get returns the platform dashboard. The report is cached for five minutes
// and the cache entry is invalidated on every order write.
func (h *DashboardHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	compute := func() (*services.DashboardData, error) {
		return services.GetDashboardData(ctx, h.db)
	}

	var data *services.DashboardData
	var err error
	if h.cache != nil {
		data, err = services.GetOrSet(h.cache, ctx, dashboardCacheKey, 5*time.Minute, compute)
	} else {
		data, err = compute()
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, success(data))
}
