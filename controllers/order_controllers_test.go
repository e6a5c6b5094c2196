package controllers_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/SteveKibs/cake-backend-app/controllers"
	"github.com/SteveKibs/cake-backend-app/feed"
	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/pricing"
	"github.com/SteveKibs/cake-backend-app/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var promoSunday = time.Date(2024, 6, 9, 10, 0, 0, 0, time.UTC)

func setupOrderRouter(db *gorm.DB, at time.Time) *gin.Engine {
	svc := services.NewOrderService(db,
		services.WithClock(pricing.FixedClock(at)),
		services.WithPolicy(pricing.Policy{PromotionDay: time.Sunday, Location: time.UTC}),
	)
	ctrl := controllers.NewOrderController(svc, feed.NewHub())

	r := gin.New()
	r.POST("/orders", ctrl.CreateOrder)
	r.GET("/orders/track/:uuid", ctrl.TrackOrder)

	staff := r.Group("", asUser(1, models.RoleAdmin))
	staff.GET("/orders", ctrl.GetOrders)
	staff.GET("/orders/:id", ctrl.GetOrderByID)
	staff.PATCH("/orders/:id/status", ctrl.UpdateOrderStatus)
	staff.DELETE("/orders/:id", ctrl.DeleteOrder)
	return r
}

func TestCreateOrderAppliesPromotion(t *testing.T) {
	db := setupTestDB(t)
	forest := seedCake(t, db, "Black Forest", "100.00", true)
	velvet := seedCake(t, db, "Red Velvet", "80.00", false)
	r := setupOrderRouter(db, promoSunday)

	w, resp := doJSON(t, r, http.MethodPost, "/orders", gin.H{
		"customer_name":  "Achieng",
		"customer_phone": "0711000111",
		"items": []gin.H{
			{"cake_id": forest.ID, "quantity": 3},
			{"cake_id": velvet.ID, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Order created successfully", resp.Message)

	var view models.OrderView
	decodeData(t, resp, &view)
	assert.Equal(t, "360.00", view.TotalCost)
	assert.Equal(t, models.OrderPending, view.Status)
	require.Len(t, view.Items, 2)
	// Items come back sorted by cake name.
	assert.Equal(t, "Black Forest", view.Items[0].CakeName)
	assert.Equal(t, "100.00", view.Items[0].PriceAtOrder)
	assert.Equal(t, "200.00", view.Items[0].ItemCost)
	assert.Equal(t, "160.00", view.Items[1].ItemCost)

	w, resp = doJSON(t, r, http.MethodGet, "/orders/track/"+view.OrderUUID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tracked models.OrderView
	decodeData(t, resp, &tracked)
	assert.Equal(t, view.ID, tracked.ID)
}

func TestCreateOrderErrors(t *testing.T) {
	db := setupTestDB(t)
	cake := seedCake(t, db, "Carrot", "60.00", false)
	r := setupOrderRouter(db, promoSunday)

	tests := []struct {
		name string
		body interface{}
		code int
	}{
		{"malformed body", "not-an-object", http.StatusBadRequest},
		{"no items", gin.H{"customer_name": "A", "customer_phone": "07", "items": []gin.H{}}, http.StatusBadRequest},
		{"zero quantity", gin.H{"customer_name": "A", "customer_phone": "07",
			"items": []gin.H{{"cake_id": cake.ID, "quantity": 0}}}, http.StatusBadRequest},
		{"missing name", gin.H{"customer_phone": "07",
			"items": []gin.H{{"cake_id": cake.ID, "quantity": 1}}}, http.StatusBadRequest},
		{"unknown cake", gin.H{"customer_name": "A", "customer_phone": "07",
			"items": []gin.H{{"cake_id": 999, "quantity": 1}}}, http.StatusNotFound},
		{"unknown route", gin.H{"customer_name": "A", "customer_phone": "07", "route_id": 42,
			"items": []gin.H{{"cake_id": cake.ID, "quantity": 1}}}, http.StatusNotFound},
		{"zero route id", gin.H{"customer_name": "A", "customer_phone": "07", "route_id": 0,
			"items": []gin.H{{"cake_id": cake.ID, "quantity": 1}}}, http.StatusBadRequest},
		{"zero stopover id", gin.H{"customer_name": "A", "customer_phone": "07", "stopover_id": 0,
			"items": []gin.H{{"cake_id": cake.ID, "quantity": 1}}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := doJSON(t, r, http.MethodPost, "/orders", tt.body)
			assert.Equal(t, tt.code, w.Code, w.Body.String())
			assert.False(t, resp.Status)
		})
	}

	var n int64
	require.NoError(t, db.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateOrderHidesStorageFailure(t *testing.T) {
	db := setupTestDB(t)
	cake := seedCake(t, db, "Lemon", "50.00", false)
	r := setupOrderRouter(db, promoSunday)

	err := db.Callback().Create().Before("gorm:create").Register("test:fail_items", func(tx *gorm.DB) {
		if tx.Statement.Table == "order_items" {
			tx.AddError(errors.New("insert failed on host=db.internal user=bakery"))
		}
	})
	require.NoError(t, err)

	w, resp := doJSON(t, r, http.MethodPost, "/orders", gin.H{
		"customer_name":  "Njeri",
		"customer_phone": "0733000444",
		"items":          []gin.H{{"cake_id": cake.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", resp.Message)
	assert.NotContains(t, w.Body.String(), "db.internal")

	var n int64
	require.NoError(t, db.Model(&models.Order{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestCreateOrderAcceptsLongPhone(t *testing.T) {
	db := setupTestDB(t)
	cake := seedCake(t, db, "Lemon", "50.00", false)
	r := setupOrderRouter(db, promoSunday)

	w, resp := doJSON(t, r, http.MethodPost, "/orders", gin.H{
		"customer_name":  "Njeri",
		"customer_phone": "+254 712 345 678 ext 1234",
		"items":          []gin.H{{"cake_id": cake.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var view models.OrderView
	decodeData(t, resp, &view)
	assert.Equal(t, "+254 712 345 678 ext 1234", view.CustomerPhone)
}

func TestTrackOrderUnknownToken(t *testing.T) {
	db := setupTestDB(t)
	r := setupOrderRouter(db, promoSunday)

	w, _ := doJSON(t, r, http.MethodGet, "/orders/track/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderLifecycle(t *testing.T) {
	db := setupTestDB(t)
	cake := seedCake(t, db, "Lemon Drizzle", "45.50", true)
	route := seedRoute(t, db, "Westlands", models.NewDate(promoSunday), true)
	stop := seedStopover(t, db, route.ID, "Sarit Centre", 1)
	r := setupOrderRouter(db, promoSunday)

	for i := 0; i < 3; i++ {
		w, _ := doJSON(t, r, http.MethodPost, "/orders", gin.H{
			"customer_name":  fmt.Sprintf("Customer %d", i),
			"customer_phone": "0722000000",
			"route_id":       route.ID,
			"stopover_id":    stop.ID,
			"items":          []gin.H{{"cake_id": cake.ID, "quantity": 1}},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w, resp := doJSON(t, r, http.MethodGet, "/orders?limit=2&page=1&deliveryDate=2024-06-09", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page []models.OrderView
	decodeData(t, resp, &page)
	assert.Len(t, page, 2)
	require.NotNil(t, resp.Meta)
	assert.EqualValues(t, 3, resp.Meta.TotalItems)
	assert.Equal(t, 2, resp.Meta.TotalPages)

	w, _ = doJSON(t, r, http.MethodGet, "/orders?limit=500", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := page[0].ID
	w, resp = doJSON(t, r, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var one models.OrderView
	decodeData(t, resp, &one)
	require.NotNil(t, one.RouteName)
	assert.Equal(t, "Westlands", *one.RouteName)
	require.NotNil(t, one.StopoverName)
	assert.Equal(t, "Sarit Centre", *one.StopoverName)

	w, resp = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/orders/%d/status", id), gin.H{"status": "Delivered"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, resp, &one)
	assert.Equal(t, models.OrderDelivered, one.Status)

	w, _ = doJSON(t, r, http.MethodPatch, fmt.Sprintf("/orders/%d/status", id), gin.H{"status": "Lost"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/orders/%d", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var items int64
	require.NoError(t, db.Model(&models.OrderItem{}).Where("order_id = ?", id).Count(&items).Error)
	assert.Zero(t, items)
}

func TestGetOrderRejectsBadID(t *testing.T) {
	db := setupTestDB(t)
	r := setupOrderRouter(db, promoSunday)

	w, _ := doJSON(t, r, http.MethodGet, "/orders/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
