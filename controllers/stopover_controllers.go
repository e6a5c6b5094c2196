package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/SteveKibs/cake-backend-app/feed"
	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var stopoverSortColumns = map[string]string{
	"sequence_order": "stopovers.sequence_order",
	"name":           "stopovers.name",
	"status":         "stopovers.status",
	"last_updated":   "stopovers.last_updated",
	"route_name":     "routes.name",
}

type StopoverController struct {
	DB   *gorm.DB
	Feed *feed.Hub
}

func NewStopoverController(db *gorm.DB, hub *feed.Hub) *StopoverController {
	return &StopoverController{DB: db, Feed: hub}
}

type stopoverRequest struct {
	RouteID       *uint   `json:"route_id"`
	Name          *string `json:"name" binding:"omitempty,min=1,max=100"`
	SequenceOrder *int    `json:"sequence_order" binding:"omitempty,min=1"`
	Status        *string `json:"status"`
}

// saveStopover validates references and the per-route sequence before writing.
func saveStopover(tx *gorm.DB, stop *models.Stopover) error {
	if err := findByID(tx, &models.Route{}, stop.RouteID, "route"); err != nil {
		return err
	}
	taken, err := exists(tx, &models.Stopover{}, "route_id = ? AND sequence_order = ? AND id <> ?",
		stop.RouteID, stop.SequenceOrder, stop.ID)
	if err != nil {
		return err
	}
	if taken {
		return utils.Conflict("route %d already has a stopover at sequence %d", stop.RouteID, stop.SequenceOrder)
	}
	return tx.Save(stop).Error
}

func (r *stopoverRequest) apply(stop *models.Stopover) error {
	if r.RouteID != nil {
		stop.RouteID = *r.RouteID
	}
	if r.Name != nil {
		name := strings.TrimSpace(*r.Name)
		if name == "" {
			return utils.InvalidInput("name must not be empty")
		}
		stop.Name = name
	}
	if r.SequenceOrder != nil {
		stop.SequenceOrder = *r.SequenceOrder
	}
	if r.Status != nil {
		status := models.StopoverStatus(*r.Status)
		if !status.IsValid() {
			return utils.InvalidInput("invalid stopover status %q", *r.Status)
		}
		stop.Status = status
	}
	return nil
}

func (sc *StopoverController) GetStopovers(c *gin.Context) {
	params, err := utils.ParseListParams(c, stopoverSortColumns, "sequence_order", "ASC")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	q := sc.DB.WithContext(c.Request.Context()).Model(&models.Stopover{}).
		Joins("LEFT JOIN routes ON routes.id = stopovers.route_id")

	routeID, err := queryUint(c, "routeId")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if routeID != nil {
		q = q.Where("stopovers.route_id = ?", *routeID)
	}
	if status := c.Query("status"); status != "" {
		if !models.StopoverStatus(status).IsValid() {
			utils.RespondAppError(c, utils.InvalidInput("invalid stopover status %q", status))
			return
		}
		q = q.Where("stopovers.status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		q = q.Where("LOWER(stopovers.name) LIKE ?", likePattern(search))
	}

	var stops []models.Stopover
	total, err := paginate(q, params, &stops, "Route")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondPage(c, "Stopovers retrieved successfully", stops, params.Meta(total))
}

func (sc *StopoverController) CreateStopover(c *gin.Context) {
	var req stopoverRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if req.RouteID == nil || req.Name == nil || req.SequenceOrder == nil {
		utils.RespondAppError(c, utils.InvalidInput("route_id, name and sequence_order are required"))
		return
	}

	stop := models.Stopover{Status: models.StopoverPending, LastUpdated: time.Now()}
	if err := req.apply(&stop); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	err := sc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		return saveStopover(tx, &stop)
	})
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("create stopover", err))
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Stopover created successfully", stop)
}

func (sc *StopoverController) GetStopoverByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var stop models.Stopover
	if err := findByID(sc.DB.WithContext(c.Request.Context()).Preload("Route"), &stop, id, "stopover"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stopover retrieved successfully", stop)
}

func (sc *StopoverController) UpdateStopover(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var req stopoverRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var stop models.Stopover
	err = sc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := findByID(tx, &stop, id, "stopover"); err != nil {
			return err
		}
		previous := stop.Status
		if err := req.apply(&stop); err != nil {
			return err
		}
		if stop.Status != previous {
			stop.LastUpdated = time.Now()
		}
		return saveStopover(tx, &stop)
	})
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("update stopover", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stopover updated successfully", stop)
}

func (sc *StopoverController) DeleteStopover(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	err = sc.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var stop models.Stopover
		if err := findByID(tx, &stop, id, "stopover"); err != nil {
			return err
		}
		// Orders keep their route but lose the stop.
		if err := tx.Model(&models.Order{}).Where("stopover_id = ?", id).Update("stopover_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&stop).Error
	})
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("delete stopover", err))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Stopover deleted successfully", nil)
}

// UpdateStopoverStatus records a driver's progress at a stop.
func (sc *StopoverController) UpdateStopoverStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	status := models.StopoverStatus(req.Status)
	if !status.IsValid() {
		utils.RespondAppError(c, utils.InvalidInput("invalid stopover status %q", req.Status))
		return
	}

	db := sc.DB.WithContext(c.Request.Context())
	var stop models.Stopover
	if err := findByID(db, &stop, id, "stopover"); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	stop.Status = status
	stop.LastUpdated = time.Now()
	if err := db.Model(&stop).Updates(map[string]interface{}{
		"status":       stop.Status,
		"last_updated": stop.LastUpdated,
	}).Error; err != nil {
		utils.RespondAppError(c, utils.Persistence("update stopover status", err))
		return
	}

	if sc.Feed != nil {
		sc.Feed.StopoverStatusChanged(stop)
	}
	utils.RespondJSON(c, http.StatusOK, "Stopover status updated successfully", stop)
}
