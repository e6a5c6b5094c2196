package controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/SteveKibs/cake-backend-app/controllers"
	"github.com/SteveKibs/cake-backend-app/feed"
	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDeliveryRouter(db *gorm.DB) *gin.Engine {
	routes := controllers.NewRouteController(db)
	stops := controllers.NewStopoverController(db, feed.NewHub())

	r := gin.New()
	r.Use(asUser(1, models.RoleAdmin))
	r.GET("/routes", routes.GetRoutes)
	r.POST("/routes", routes.CreateRoute)
	r.GET("/routes/active", routes.GetActiveRoutes)
	r.GET("/routes/:id", routes.GetRouteByID)
	r.PUT("/routes/:id", routes.UpdateRoute)
	r.DELETE("/routes/:id", routes.DeleteRoute)
	r.GET("/routes/:id/stopovers", routes.GetRouteStopovers)

	r.GET("/stopovers", stops.GetStopovers)
	r.POST("/stopovers", stops.CreateStopover)
	r.GET("/stopovers/:id", stops.GetStopoverByID)
	r.PUT("/stopovers/:id", stops.UpdateStopover)
	r.DELETE("/stopovers/:id", stops.DeleteStopover)
	r.PATCH("/stopovers/:id/status", stops.UpdateStopoverStatus)
	return r
}

func TestRouteCRUDAndActiveLookup(t *testing.T) {
	db := setupTestDB(t)
	r := setupDeliveryRouter(db)

	w, resp := doJSON(t, r, http.MethodPost, "/routes", gin.H{"name": "Karen Loop", "delivery_date": "2024-06-09"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var route models.Route
	decodeData(t, resp, &route)
	assert.True(t, route.IsActive)
	assert.Equal(t, "2024-06-09", route.DeliveryDate.String())

	seedRoute(t, db, "Parked", models.NewDate(time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)), false)
	seedRoute(t, db, "Monday Run", models.NewDate(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)), true)

	w, resp = doJSON(t, r, http.MethodGet, "/routes/active?date=2024-06-09", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var active []models.Route
	decodeData(t, resp, &active)
	require.Len(t, active, 1)
	assert.Equal(t, "Karen Loop", active[0].Name)

	w, _ = doJSON(t, r, http.MethodGet, "/routes/active?date=09-06-2024", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = doJSON(t, r, http.MethodGet, "/routes?deliveryDate=2024-06-09", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, resp.Meta.TotalItems)

	w, resp = doJSON(t, r, http.MethodPut, fmt.Sprintf("/routes/%d", route.ID), gin.H{"is_active": false})
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, resp, &route)
	assert.False(t, route.IsActive)
	assert.Equal(t, "Karen Loop", route.Name)

	w, _ = doJSON(t, r, http.MethodPost, "/routes", gin.H{"name": "No date"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStopoversOnRoute(t *testing.T) {
	db := setupTestDB(t)
	route := seedRoute(t, db, "Thika Road", models.NewDate(promoSunday), true)
	r := setupDeliveryRouter(db)

	w, resp := doJSON(t, r, http.MethodPost, "/stopovers", gin.H{"route_id": route.ID, "name": "Garden City", "sequence_order": 2})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var second models.Stopover
	decodeData(t, resp, &second)
	assert.Equal(t, models.StopoverPending, second.Status)

	w, _ = doJSON(t, r, http.MethodPost, "/stopovers", gin.H{"route_id": route.ID, "name": "TRM", "sequence_order": 1})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/stopovers", gin.H{"route_id": route.ID, "name": "Clash", "sequence_order": 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/stopovers", gin.H{"route_id": 999, "name": "Nowhere", "sequence_order": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = doJSON(t, r, http.MethodGet, fmt.Sprintf("/routes/%d/stopovers", route.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stops []models.Stopover
	decodeData(t, resp, &stops)
	require.Len(t, stops, 2)
	assert.Equal(t, "TRM", stops[0].Name)
	assert.Equal(t, "Garden City", stops[1].Name)

	w, resp = doJSON(t, r, http.MethodGet, "/stopovers?sortBy=route_name&routeId="+fmt.Sprint(route.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, resp, &stops)
	require.Len(t, stops, 2)
	require.NotNil(t, stops[0].Route)
	assert.Equal(t, "Thika Road", stops[0].Route.Name)

	w, resp = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/stopovers/%d/status", second.ID), gin.H{"status": "Arrived"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, resp, &second)
	assert.Equal(t, models.StopoverArrived, second.Status)

	w, _ = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/stopovers/%d/status", second.ID), gin.H{"status": "Lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPut, fmt.Sprintf("/stopovers/%d", second.ID), gin.H{"sequence_order": 1})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteRouteWithOrdersConflicts(t *testing.T) {
	db := setupTestDB(t)
	route := seedRoute(t, db, "CBD", models.NewDate(promoSunday), true)
	stop := seedStopover(t, db, route.ID, "Archives", 1)
	empty := seedRoute(t, db, "Empty", models.NewDate(promoSunday), true)
	seedStopover(t, db, empty.ID, "Lonely Stop", 1)

	order := models.Order{
		OrderUUID:     "22222222-2222-2222-2222-222222222222",
		CustomerName:  "Njeri",
		CustomerPhone: "0733000000",
		OrderDate:     promoSunday,
		TotalCost:     decimal.Zero,
		RouteID:       &route.ID,
		StopoverID:    &stop.ID,
		Status:        models.OrderPending,
		PaymentStatus: models.PaymentPending,
	}
	require.NoError(t, db.Create(&order).Error)
	r := setupDeliveryRouter(db)

	w, _ := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/routes/%d", route.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/routes/%d", empty.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var left int64
	require.NoError(t, db.Model(&models.Stopover{}).Where("route_id = ?", empty.ID).Count(&left).Error)
	assert.Zero(t, left)

	// Removing a stop keeps the order on its route.
	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/stopovers/%d", stop.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var reloaded models.Order
	require.NoError(t, db.First(&reloaded, order.ID).Error)
	assert.Nil(t, reloaded.StopoverID)
	require.NotNil(t, reloaded.RouteID)
	assert.Equal(t, route.ID, *reloaded.RouteID)
}
