package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SteveKibs/cake-backend-app/database"
	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.InitLogger()
	utils.ConfigureJWT("controllers-test-secret", time.Hour)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
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

// asUser stands in for the auth middleware.
func asUser(id uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", id)
		c.Set("username", fmt.Sprintf("user%d", id))
		c.Set("role", role)
		c.Next()
	}
}

type apiResponse struct {
	Status     bool            `json:"status"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Meta       *utils.PageMeta `json:"meta"`
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func decodeData(t *testing.T, resp apiResponse, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, dst), string(resp.Data))
}

func seedCake(t *testing.T, db *gorm.DB, name, price string, eligible bool) models.Cake {
	t.Helper()
	cake := models.Cake{
		Name:         name,
		Price:        decimal.RequireFromString(price),
		BogoEligible: eligible,
		IsAvailable:  true,
	}
	require.NoError(t, db.Create(&cake).Error)
	return cake
}

func seedRoute(t *testing.T, db *gorm.DB, name string, day models.Date, active bool) models.Route {
	t.Helper()
	route := models.Route{Name: name, DeliveryDate: day, IsActive: active}
	require.NoError(t, db.Create(&route).Error)
	return route
}

func seedStopover(t *testing.T, db *gorm.DB, routeID uint, name string, seq int) models.Stopover {
	t.Helper()
	stop := models.Stopover{
		RouteID:       routeID,
		Name:          name,
		SequenceOrder: seq,
		Status:        models.StopoverPending,
		LastUpdated:   time.Now(),
	}
	require.NoError(t, db.Create(&stop).Error)
	return stop
}
