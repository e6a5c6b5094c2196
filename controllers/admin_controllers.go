package controllers

import (
	"net/http"
	"time"

	"github.com/SteveKibs/cake-backend-app/feed"
	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/pricing"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const topCakesLimit = 5

type AdminController struct {
	DB    *gorm.DB
	Clock pricing.Clock
	Feed  *feed.Hub
}

func NewAdminController(db *gorm.DB, clock pricing.Clock, hub *feed.Hub) *AdminController {
	if clock == nil {
		clock = pricing.SystemClock
	}
	return &AdminController{DB: db, Clock: clock, Feed: hub}
}

type CakeSales struct {
	CakeID   uint            `json:"cake_id"`
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type DashboardStats struct {
	TotalOrders  int64                           `json:"total_orders"`
	TodayOrders  int64                           `json:"today_orders"`
	TotalRevenue decimal.Decimal                 `json:"total_revenue"`
	TodayRevenue decimal.Decimal                 `json:"today_revenue"`
	OrderStats   map[models.OrderStatus]int64    `json:"order_stats"`
	StopStats    map[models.StopoverStatus]int64 `json:"stopover_stats"`
	ActiveRoutes int64                           `json:"active_routes_today"`
	Connected    int                             `json:"feed_clients"`
	TopCakes     []CakeSales                     `json:"top_cakes"`
}

type SalesReport struct {
	From              *models.Date    `json:"from,omitempty"`
	To                *models.Date    `json:"to,omitempty"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalOrders       int64           `json:"total_orders"`
	AverageOrder      decimal.Decimal `json:"average_order"`
	DistributorSales  decimal.Decimal `json:"distributor_sales"`
	CommissionPayable decimal.Decimal `json:"commission_payable"`
	TopCakes          []CakeSales     `json:"top_cakes"`
}

// countBy groups the rows of model by column.
func countBy(db *gorm.DB, model interface{}, column string) (map[string]int64, error) {
	var rows []struct {
		Label string
		Total int64
	}
	err := db.Model(model).Select(column + " AS label, COUNT(*) AS total").Group(column).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Label] = r.Total
	}
	return out, nil
}

// sumDecimal returns COALESCE(SUM(column), 0) over q.
func sumDecimal(q *gorm.DB, column string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.Select("COALESCE(SUM(" + column + "), 0)").Row().Scan(&total)
	return total.Round(2), err
}

// topCakes ranks cakes by units sold on non-cancelled orders.
func topCakes(db *gorm.DB, from, to *models.Date) ([]CakeSales, error) {
	q := db.Table("order_items").
		Select("order_items.cake_id AS cake_id, cakes.name AS name, SUM(order_items.quantity) AS quantity, SUM(order_items.item_cost) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN cakes ON cakes.id = order_items.cake_id").
		Where("orders.status <> ?", models.OrderCancelled)
	q = withinDates(q, "orders.order_date", from, to)

	var rows []CakeSales
	err := q.Group("order_items.cake_id, cakes.name").
		Order("quantity DESC, name ASC").
		Limit(topCakesLimit).
		Scan(&rows).Error
	for i := range rows {
		rows[i].Revenue = rows[i].Revenue.Round(2)
	}
	return rows, err
}

func withinDates(q *gorm.DB, column string, from, to *models.Date) *gorm.DB {
	if from != nil {
		q = q.Where(column+" >= ?", from.Time)
	}
	if to != nil {
		q = q.Where(column+" < ?", to.Next().Time)
	}
	return q
}

// GetDashboardStats summarises today's trading and delivery progress.
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	db := ac.DB.WithContext(c.Request.Context())
	now := ac.Clock.Now()
	today := models.NewDate(now)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	stats := DashboardStats{
		OrderStats: make(map[models.OrderStatus]int64),
		StopStats:  make(map[models.StopoverStatus]int64),
	}
	billable := func() *gorm.DB {
		return db.Model(&models.Order{}).Where("status <> ?", models.OrderCancelled)
	}

	err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error
	if err == nil {
		err = db.Model(&models.Order{}).Where("order_date >= ? AND order_date < ?", start, end).Count(&stats.TodayOrders).Error
	}
	if err == nil {
		stats.TotalRevenue, err = sumDecimal(billable(), "total_cost")
	}
	if err == nil {
		stats.TodayRevenue, err = sumDecimal(billable().Where("order_date >= ? AND order_date < ?", start, end), "total_cost")
	}
	if err == nil {
		err = db.Model(&models.Route{}).
			Where("is_active = ? AND delivery_date >= ? AND delivery_date < ?", true, today, today.Next()).
			Count(&stats.ActiveRoutes).Error
	}
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("dashboard totals", err))
		return
	}

	byStatus, err := countBy(db, &models.Order{}, "status")
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("dashboard order stats", err))
		return
	}
	for _, s := range models.OrderStatuses {
		stats.OrderStats[s] = byStatus[string(s)]
	}

	byStop, err := countBy(db.Where("route_id IN (?)",
		db.Model(&models.Route{}).Select("id").Where("delivery_date >= ? AND delivery_date < ?", today, today.Next())),
		&models.Stopover{}, "status")
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("dashboard stopover stats", err))
		return
	}
	for _, s := range []models.StopoverStatus{models.StopoverPending, models.StopoverArrived, models.StopoverDeparted, models.StopoverSkipped} {
		stats.StopStats[s] = byStop[string(s)]
	}

	stats.TopCakes, err = topCakes(db, &today, &today)
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("dashboard top cakes", err))
		return
	}
	if ac.Feed != nil {
		stats.Connected = ac.Feed.Count()
	}

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

// GetSalesReport totals orders and distributor sales between ?startDate and
// ?endDate, both inclusive and optional.
func (ac *AdminController) GetSalesReport(c *gin.Context) {
	from, err := queryDate(c, "startDate")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	to, err := queryDate(c, "endDate")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if from != nil && to != nil && to.Before(from.Time) {
		utils.RespondAppError(c, utils.InvalidInput("endDate must not be before startDate"))
		return
	}

	db := ac.DB.WithContext(c.Request.Context())
	report := SalesReport{From: from, To: to}

	orders := func() *gorm.DB {
		return withinDates(db.Model(&models.Order{}).Where("status <> ?", models.OrderCancelled), "order_date", from, to)
	}
	err = orders().Count(&report.TotalOrders).Error
	if err == nil {
		report.TotalSales, err = sumDecimal(orders(), "total_cost")
	}
	if err == nil {
		sales := func() *gorm.DB {
			return withinDates(db.Model(&models.DistributorSale{}), "sale_date", from, to)
		}
		report.DistributorSales, err = sumDecimal(sales(), "total_amount")
		if err == nil {
			report.CommissionPayable, err = sumDecimal(sales().Where("payment_status <> ?", models.SaleRefunded), "commission_earned")
		}
	}
	if err == nil {
		report.TopCakes, err = topCakes(db, from, to)
	}
	if err != nil {
		utils.RespondAppError(c, utils.Persistence("sales report", err))
		return
	}
	if report.TotalOrders > 0 {
		report.AverageOrder = report.TotalSales.Div(decimal.NewFromInt(report.TotalOrders)).Round(2)
	}

	utils.RespondJSON(c, http.StatusOK, "Sales report", report)
}
