package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var routeSortColumns = map[string]string{
	"name":          "routes.name",
	"delivery_date": "routes.delivery_date",
	"created_at":    "routes.created_at",
}

type RouteController struct {
	DB *gorm.DB
}

func NewRouteController(db *gorm.DB) *RouteController {
	return &RouteController{DB: db}
}

type routeRequest struct {
	Name         *string      `json:"name" binding:"omitempty,min=1,max=100"`
	DeliveryDate *models.Date `json:"delivery_date"`
	IsActive     *bool        `json:"is_active"`
}

func (r *routeRequest) apply(route *models.Route) error {
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return utils.InvalidInput("name must not be empty")
		}
		route.Name = name
	}
	if r.DeliveryDate != nil {
		if r.DeliveryDate.IsZero() {
			return utils.InvalidInput("delivery_date must not be empty")
		}
		route.DeliveryDate = *r.DeliveryDate
	}
	if r.IsActive != nil {
		route.IsActive = *r.IsActive
	}
	return nil
}

func (rc *RouteController) GetRoutes(c *gin.Context) {
	params, err := utils.ParseListParams(c, routeSortColumns, "delivery_date", "DESC")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	q := rc.DB.WithContext(c.Request.Context()).Model(&models.Route{})

	active, err := queryBool(c, "isActive")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if active != nil {
		q = q.Where("is_active = ?", *active)
	}
	day, err := queryDate(c, "deliveryDate")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if day != nil {
		q = q.Where("delivery_date >= ? AND delivery_date < ?", *day, day.Next())
	}
	if search := c.Query("search"); search != "" {
		q = q.Where("LOWER(name) LIKE ?", likePattern(search))
	}

	var routes []models.Route
	total, err := paginate(q, params, &routes)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondPage(c, "Routes retrieved successfully", routes, params.Meta(total))
}

func (rc *RouteController) CreateRoute(c *gin.Context) {
	var req routeRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if req.Name == nil || req.DeliveryDate == nil {
		utils.RespondAppError(c, utils.InvalidInput("name and delivery_date are required"))
		return
	}

	route := models.Route{IsActive: true}
	if err := req.apply(&route); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := rc.DB.WithContext(c.Request.Context()).Create(&route).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("create route", err))
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Route created successfully", route)
}

func (rc *RouteController) GetRouteByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var route models.Route
	if err := findByID(rc.DB.WithContext(c.Request.Context()), &route, id, "route"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Route retrieved successfully", route)
}

func (rc *RouteController) UpdateRoute(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var req routeRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	db := rc.DB.WithContext(c.Request.Context())
	var route models.Route
	if err := findByID(db, &route, id, "route"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := req.apply(&route); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := db.Save(&route).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("update route", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Route updated successfully", route)
}

// DeleteRoute removes a route and its stopovers unless orders are booked on it.
func (rc *RouteController) DeleteRoute(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	err = rc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var route models.Route
		if err := findByID(tx, &route, id, "route"); err != nil {
			return err
		}
		booked, err := exists(tx, &models.Order{}, "route_id = ?", id)
		if err != nil {
			return err
		}
		if booked {
			return utils.Conflict("route %d has orders assigned", id)
		}
		if err := tx.Where("route_id = ?", id).Delete(&models.Stopover{}).Error; err != nil {
			return err
		}
		return tx.Delete(&route).Error
	})
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("delete route", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Route deleted successfully", nil)
}

// GetActiveRoutes lists active routes delivering on ?date=YYYY-MM-DD, today
// when omitted.
func (rc *RouteController) GetActiveRoutes(c *gin.Context) {
	day, err := queryDate(c, "date")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if day == nil {
		today := models.NewDate(time.Now())
		day = &today
	}

	var routes []models.Route
	err = rc.DB.WithContext(c.Request.Context()).
		Where("is_active = ? AND delivery_date >= ? AND delivery_date < ?", true, *day, day.Next()).
		Order("name ASC").
		Find(&routes).Error
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("list active routes", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active routes retrieved successfully", routes)
}

func (rc *RouteController) GetRouteStopovers(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	db := rc.DB.WithContext(c.Request.Context())
	var route models.Route
	if err := findByID(db, &route, id, "route"); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var stops []models.Stopover
	if err := db.Where("route_id = ?", id).Order("sequence_order ASC").Find(&stops).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("list route stopovers", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stopovers retrieved successfully", stops)
}
