package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/SteveKibs/cake-backend-app/controllers"
	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCatalogRouter(db *gorm.DB) *gin.Engine {
	cakes := controllers.NewCakeController(db)
	flavors := controllers.NewFlavorController(db)
	links := controllers.NewCakeFlavorController(db)

	r := gin.New()
	r.GET("/cakes", cakes.GetCakes)
	r.POST("/cakes", cakes.CreateCake)
	r.GET("/cakes/:id", cakes.GetCakeByID)
	r.PUT("/cakes/:id", cakes.UpdateCake)
	r.DELETE("/cakes/:id", cakes.DeleteCake)
	r.GET("/cakes/:id/flavors", cakes.GetCakeFlavors)

	r.GET("/flavors", flavors.GetFlavors)
	r.POST("/flavors", flavors.CreateFlavor)
	r.GET("/flavors/:id", flavors.GetFlavorByID)
	r.PUT("/flavors/:id", flavors.UpdateFlavor)
	r.DELETE("/flavors/:id", flavors.DeleteFlavor)
	r.GET("/flavors/:id/cakes", flavors.GetFlavorCakes)

	r.POST("/cake-flavors", links.AddFlavorToCake)
	r.DELETE("/cake-flavors/:cake_id/:flavor_id", links.RemoveFlavorFromCake)
	r.GET("/cake-flavors/:flavor_id/cakes", links.GetCakesByFlavor)
	return r
}

func TestCakeCRUD(t *testing.T) {
	db := setupTestDB(t)
	r := setupCatalogRouter(db)

	w, resp := doJSON(t, r, http.MethodPost, "/cakes", gin.H{
		"name":          "Black Forest",
		"description":   "Cherries and cream",
		"price":         "1200.50",
		"bogo_eligible": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var cake models.Cake
	decodeData(t, resp, &cake)
	assert.NotZero(t, cake.ID)
	assert.True(t, cake.IsAvailable)
	assert.True(t, cake.Price.Equal(decimal.RequireFromString("1200.50")))

	w, resp = doJSON(t, r, http.MethodPut, fmt.Sprintf("/cakes/%d", cake.ID), gin.H{
		"price":        "1100",
		"is_available": false,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeData(t, resp, &cake)
	assert.Equal(t, "Black Forest", cake.Name)
	assert.False(t, cake.IsAvailable)
	assert.True(t, cake.Price.Equal(decimal.NewFromInt(1100)))

	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/cakes/%d", cake.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/cakes/%d", cake.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/cakes/%d", cake.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCakeValidation(t *testing.T) {
	db := setupTestDB(t)
	r := setupCatalogRouter(db)

	w, _ := doJSON(t, r, http.MethodPost, "/cakes", gin.H{"name": "No price"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/cakes", gin.H{"name": "Free", "price": "0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, r, http.MethodPost, "/cakes", gin.H{"name": "   ", "price": "10"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteCakeReferencedByOrder(t *testing.T) {
	db := setupTestDB(t)
	cake := seedCake(t, db, "Vanilla", "50.00", false)
	order := models.Order{
		OrderUUID:     "11111111-1111-1111-1111-111111111111",
		CustomerName:  "Otieno",
		CustomerPhone: "0700000000",
		OrderDate:     promoSunday,
		TotalCost:     decimal.RequireFromString("50.00"),
		Status:        models.OrderPending,
		PaymentStatus: models.PaymentPending,
		Items: []models.OrderItem{{
			CakeID:       cake.ID,
			Quantity:     1,
			PriceAtOrder: cake.Price,
			ItemCost:     cake.Price,
		}},
	}
	require.NoError(t, db.Create(&order).Error)
	r := setupCatalogRouter(db)

	w, _ := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/cakes/%d", cake.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestListCakesFilters(t *testing.T) {
	db := setupTestDB(t)
	seedCake(t, db, "Chocolate Fudge", "90.00", true)
	seedCake(t, db, "Carrot", "70.00", false)
	seedCake(t, db, "Chocolate Mint", "95.00", false)
	r := setupCatalogRouter(db)

	w, resp := doJSON(t, r, http.MethodGet, "/cakes?search=chocolate&sortBy=price&sortOrder=desc", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cakes []models.Cake
	decodeData(t, resp, &cakes)
	require.Len(t, cakes, 2)
	assert.Equal(t, "Chocolate Mint", cakes[0].Name)

	w, resp = doJSON(t, r, http.MethodGet, "/cakes?bogoEligible=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeData(t, resp, &cakes)
	require.Len(t, cakes, 1)
	assert.Equal(t, "Chocolate Fudge", cakes[0].Name)

	w, _ = doJSON(t, r, http.MethodGet, "/cakes?bogoEligible=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlavorsAndLinks(t *testing.T) {
	db := setupTestDB(t)
	cake := seedCake(t, db, "Marble", "65.00", true)
	r := setupCatalogRouter(db)

	w, resp := doJSON(t, r, http.MethodPost, "/flavors", gin.H{"name": "Vanilla"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var flavor models.Flavor
	decodeData(t, resp, &flavor)

	w, _ = doJSON(t, r, http.MethodPost, "/flavors", gin.H{"name": "vanilla"})
	assert.Equal(t, http.StatusConflict, w.Code)

	link := gin.H{"cake_id": cake.ID, "flavor_id": flavor.ID}
	w, _ = doJSON(t, r, http.MethodPost, "/cake-flavors", link)
	assert.Equal(t, http.StatusCreated, w.Code)
	w, resp = doJSON(t, r, http.MethodPost, "/cake-flavors", link)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Flavor already associated with cake", resp.Message)

	w, _ = doJSON(t, r, http.MethodPost, "/cake-flavors", gin.H{"cake_id": cake.ID, "flavor_id": 999})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = doJSON(t, r, http.MethodGet, fmt.Sprintf("/cakes/%d/flavors", cake.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var flavors []models.Flavor
	decodeData(t, resp, &flavors)
	require.Len(t, flavors, 1)
	assert.Equal(t, "Vanilla", flavors[0].Name)

	for _, path := range []string{
		fmt.Sprintf("/flavors/%d/cakes", flavor.ID),
		fmt.Sprintf("/cake-flavors/%d/cakes", flavor.ID),
	} {
		w, resp = doJSON(t, r, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		var cakes []models.Cake
		decodeData(t, resp, &cakes)
		require.Len(t, cakes, 1, path)
		assert.Equal(t, cake.ID, cakes[0].ID)
	}

	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/cake-flavors/%d/%d", cake.ID, flavor.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/cake-flavors/%d/%d", cake.ID, flavor.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
