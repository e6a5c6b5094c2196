package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var minPrice = decimal.RequireFromString("0.01")

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, utils.InvalidInput("invalid %s", name)
	}
	return uint(id), nil
}

func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return utils.InvalidInput("invalid request body: %v", err)
	}
	return nil
}

func queryBool(c *gin.Context, name string) (*bool, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, utils.InvalidInput("%s must be true or false", name)
	}
	return &b, nil
}

func queryUint(c *gin.Context, name string) (*uint, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil || n == 0 {
		return nil, utils.InvalidInput("%s must be a positive integer", name)
	}
	id := uint(n)
	return &id, nil
}

func queryDate(c *gin.Context, name string) (*models.Date, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	d, err := models.ParseDate(v)
	if err != nil {
		return nil, utils.InvalidInput("%s: %v", name, err)
	}
	return &d, nil
}

// likePattern builds a case-insensitive substring pattern for LOWER(col) LIKE ?.
func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

// findByID loads dest by primary key, mapping a miss to NotFound.
func findByID(db *gorm.DB, dest interface{}, id uint, label string) error {
	if err := db.First(dest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound("%s with id %d not found", label, id)
		}
		return utils.Persistence("load "+label, err)
	}
	return nil
}

// paginate counts the rows matched by q and loads one page of them into dest.
// Preloads are attached after counting.
func paginate(q *gorm.DB, p utils.ListParams, dest interface{}, preloads ...string) (int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, utils.Persistence("count rows", err)
	}
	q = p.Apply(q)
	for _, name := range preloads {
		q = q.Preload(name)
	}
	if err := q.Find(dest).Error; err != nil {
		return 0, utils.Persistence("list rows", err)
	}
	return total, nil
}

// exists reports whether any row of model matches the condition.
func exists(db *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var n int64
	if err := db.Model(model).Where(query, args...).Limit(1).Count(&n).Error; err != nil {
		return false, utils.Persistence("check existence", err)
	}
	return n > 0, nil
}
