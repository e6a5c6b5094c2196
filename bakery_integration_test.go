package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/SteveKibs/cake-backend-app/database"
	"github.com/SteveKibs/cake-backend-app/feed"
	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/pricing"
	"github.com/SteveKibs/cake-backend-app/router"
	"github.com/SteveKibs/cake-backend-app/services"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	utils.ConfigureJWT("integration-secret", time.Hour)
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type envelope struct {
	Status     bool            `json:"status"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path string, body interface{}) (int, envelope) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer res.Body.Close()

	var env envelope
	require.NoError(c.t, json.NewDecoder(res.Body).Decode(&env))
	return res.StatusCode, env
}

func (c *client) login(username, password string) {
	c.t.Helper()
	code, env := c.do(http.MethodPost, "/api/auth/login", gin.H{"username": username, "password": password})
	require.Equal(c.t, http.StatusOK, code, env.Message)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(env.Data, &data))
	c.token = data.Token
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

// TestEndToEndIntegration walks the main flow:
// 1. admin builds the catalog and a delivery route
// 2. a driver subscribes to the live feed
// 3. a customer orders on the promotion day and tracks the order
// 4. the driver moves the order along and staff see the change
func TestEndToEndIntegration(t *testing.T) {
	db := setupTestDB(t)
	_, err := database.EnsureAdmin(db, "owner", "owner@cakehawker.test", "bake-it-2024")
	require.NoError(t, err)

	sunday := time.Date(2024, 6, 9, 9, 30, 0, 0, time.UTC)
	hub := feed.NewHub()
	engine := router.SetupRouter(db, router.Options{
		OrderService: services.NewOrderService(db,
			services.WithClock(pricing.FixedClock(sunday)),
			services.WithPolicy(pricing.Policy{PromotionDay: time.Sunday, Location: time.UTC}),
		),
		Feed:      hub,
		UploadDir: t.TempDir(),
	})
	srv := httptest.NewServer(engine)
	defer srv.Close()
	defer hub.CloseAll()

	admin := &client{t: t, base: srv.URL}
	admin.login("owner", "bake-it-2024")

	// Catalog
	code, env := admin.do(http.MethodPost, "/api/cakes", gin.H{"name": "Black Forest", "price": "1000.00", "bogo_eligible": true})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var forest models.Cake
	require.NoError(t, json.Unmarshal(env.Data, &forest))

	code, env = admin.do(http.MethodPost, "/api/cakes", gin.H{"name": "Fruit Cake", "price": "750.00"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var fruit models.Cake
	require.NoError(t, json.Unmarshal(env.Data, &fruit))

	// Delivery route
	code, env = admin.do(http.MethodPost, "/api/routes", gin.H{"name": "Kilimani", "delivery_date": "2024-06-09"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var route models.Route
	require.NoError(t, json.Unmarshal(env.Data, &route))

	code, env = admin.do(http.MethodPost, "/api/stopovers", gin.H{"route_id": route.ID, "name": "Yaya Centre", "sequence_order": 1})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var stop models.Stopover
	require.NoError(t, json.Unmarshal(env.Data, &stop))

	// Driver account and feed subscription
	driver := &client{t: t, base: srv.URL}
	code, env = driver.do(http.MethodPost, "/api/auth/register", gin.H{
		"username": "rider", "email": "rider@cakehawker.test", "password": "two-wheels",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	driver.login("rider", "two-wheels")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/feed/ws?token=" + driver.token
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer ws.Close()
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Customers cannot see the order list.
	customer := &client{t: t, base: srv.URL}
	code, _ = customer.do(http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env = customer.do(http.MethodPost, "/api/orders", gin.H{
		"customer_name":  "Wambui",
		"customer_phone": "0711222333",
		"route_id":       route.ID,
		"stopover_id":    stop.ID,
		"items": []gin.H{
			{"cake_id": forest.ID, "quantity": 2},
			{"cake_id": fruit.ID, "quantity": 2},
		},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var order models.OrderView
	require.NoError(t, json.Unmarshal(env.Data, &order))
	// 1000 x 1 paid unit + 750 x 2
	assert.Equal(t, "2500.00", order.TotalCost)

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Event string          `json:"event"`
		Data  models.OrderView `json:"data"`
	}
	require.NoError(t, ws.ReadJSON(&msg))
	assert.Equal(t, feed.EventOrderCreated, msg.Event)
	assert.Equal(t, order.OrderUUID, msg.Data.OrderUUID)

	code, env = customer.do(http.MethodGet, "/api/orders/track/"+order.OrderUUID, nil)
	require.Equal(t, http.StatusOK, code)
	var tracked models.OrderView
	require.NoError(t, json.Unmarshal(env.Data, &tracked))
	assert.Equal(t, models.OrderPending, tracked.Status)
	require.NotNil(t, tracked.StopoverName)
	assert.Equal(t, "Yaya Centre", *tracked.StopoverName)

	// Driver progress
	code, env = driver.do(http.MethodPatch, fmt.Sprintf("/api/stopovers/%d/status", stop.ID), gin.H{"status": "Arrived"})
	require.Equal(t, http.StatusOK, code, env.Message)
	code, env = driver.do(http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", order.ID), gin.H{"status": "Delivered"})
	require.Equal(t, http.StatusOK, code, env.Message)

	// Drivers cannot delete orders or edit the catalog.
	code, _ = driver.do(http.MethodDelete, fmt.Sprintf("/api/orders/%d", order.ID), nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = driver.do(http.MethodPost, "/api/cakes", gin.H{"name": "Rogue", "price": "1"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = customer.do(http.MethodGet, "/api/orders/track/"+order.OrderUUID, nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &tracked))
	assert.Equal(t, models.OrderDelivered, tracked.Status)
	assert.Equal(t, "2500.00", tracked.TotalCost)

	code, env = admin.do(http.MethodGet, "/api/orders?deliveryDate=2024-06-09&status=Delivered", nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	var listed []models.OrderView
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, order.ID, listed[0].ID)

	// Referenced catalog entries stay put.
	code, _ = admin.do(http.MethodDelete, fmt.Sprintf("/api/cakes/%d", forest.ID), nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestFeedRejectsCustomers(t *testing.T) {
	db := setupTestDB(t)
	srv := httptest.NewServer(router.SetupRouter(db, router.Options{Feed: feed.NewHub(), UploadDir: t.TempDir()}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/feed/ws"
	_, res, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

	token, err := utils.GenerateToken(99, "shop", models.RoleDistributor)
	require.NoError(t, err)
	_, res, err = websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
}
