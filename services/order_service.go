package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/pricing"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Column sizes of orders.customer_name and orders.customer_phone.
const (
	maxCustomerName  = 255
	maxCustomerPhone = 50
)

// OrderLineRequest is one requested product line.
type OrderLineRequest struct {
	CakeID   uint `json:"cake_id"`
	Quantity int  `json:"quantity"`
}

// SubmitOrderRequest is the customer-facing order input. Prices and totals are
// never taken from the caller.
type SubmitOrderRequest struct {
	CustomerName  string             `json:"customer_name"`
	CustomerPhone string             `json:"customer_phone"`
	CustomerEmail *string            `json:"customer_email"`
	Items         []OrderLineRequest `json:"items"`
	RouteID       *uint              `json:"route_id"`
	StopoverID    *uint              `json:"stopover_id"`
	Notes         string             `json:"notes"`
}

// Validate checks the shape of the request without touching storage.
func (r *SubmitOrderRequest) Validate() error {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.CustomerPhone = strings.TrimSpace(r.CustomerPhone)

	if r.CustomerName == "" {
		return utils.InvalidInput("customer_name is required")
	}
	if len(r.CustomerName) > maxCustomerName {
		return utils.InvalidInput("customer_name must be at most %d characters", maxCustomerName)
	}
	if r.CustomerPhone == "" {
		return utils.InvalidInput("customer_phone is required")
	}
	if len(r.CustomerPhone) > maxCustomerPhone {
		return utils.InvalidInput("customer_phone must be at most %d characters", maxCustomerPhone)
	}
	if r.CustomerEmail != nil {
		email := strings.TrimSpace(*r.CustomerEmail)
		if email == "" {
			r.CustomerEmail = nil
		} else if _, err := mail.ParseAddress(email); err != nil {
			return utils.InvalidInput("customer_email is not a valid email address")
		} else {
			r.CustomerEmail = &email
		}
	}
	if r.RouteID != nil && *r.RouteID == 0 {
		return utils.InvalidInput("route_id must be a positive id")
	}
	if r.StopoverID != nil && *r.StopoverID == 0 {
		return utils.InvalidInput("stopover_id must be a positive id")
	}
	if len(r.Items) == 0 {
		return utils.InvalidInput("order must contain at least one item")
	}
	for i, line := range r.Items {
		if line.CakeID == 0 {
			return utils.InvalidInput("items[%d]: cake_id is required", i)
		}
		if line.Quantity < 1 {
			return utils.InvalidInput("items[%d]: quantity must be at least 1", i)
		}
	}
	return nil
}

// OrderFilter narrows ListOrders. Empty fields are ignored.
type OrderFilter struct {
	Status        string
	CustomerName  string
	CustomerPhone string
	DeliveryDate  *models.Date
}

// OrderSortColumns maps the accepted sortBy values onto columns.
var OrderSortColumns = map[string]string{
	"order_date":    "orders.order_date",
	"total_cost":    "orders.total_cost",
	"customer_name": "orders.customer_name",
	"status":        "orders.status",
}

type OrderService struct {
	db       *gorm.DB
	clock    pricing.Clock
	policy   pricing.Policy
	newToken func() string
}

type OrderOption func(*OrderService)

func WithClock(c pricing.Clock) OrderOption {
	return func(s *OrderService) { s.clock = c }
}

func WithPolicy(p pricing.Policy) OrderOption {
	return func(s *OrderService) { s.policy = p }
}

// WithTokenGenerator replaces the UUID v4 order token source.
func WithTokenGenerator(gen func() string) OrderOption {
	return func(s *OrderService) { s.newToken = gen }
}

func NewOrderService(db *gorm.DB, opts ...OrderOption) *OrderService {
	s := &OrderService{
		db:       db,
		clock:    pricing.SystemClock,
		policy:   pricing.DefaultPolicy(),
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitOrder validates, prices and stores an order in a single transaction.
// On any failure nothing is persisted.
func (s *OrderService) SubmitOrder(ctx context.Context, req SubmitOrderRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	promoDay := s.policy.IsPromotionDay(now)
	var (
		order     models.Order
		freeUnits int
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cakes, err := s.loadCakes(tx, req.Items)
		if err != nil {
			return err
		}
		if err := s.checkDelivery(tx, req.RouteID, req.StopoverID); err != nil {
			return err
		}

		order = models.Order{
			OrderUUID:     s.newToken(),
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
			CustomerEmail: req.CustomerEmail,
			OrderDate:     now,
			TotalCost:     decimal.Zero,
			RouteID:       req.RouteID,
			StopoverID:    req.StopoverID,
			Notes:         req.Notes,
			Status:        models.OrderPending,
			PaymentStatus: models.PaymentPending,
		}
		if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
			return utils.Persistence("insert order header", err)
		}

		quotes := make([]pricing.LineQuote, 0, len(req.Items))
		for _, line := range req.Items {
			cake := cakes[line.CakeID]
			quote := pricing.Quote(cake.Price, line.Quantity, cake.BogoEligible, promoDay)
			item := models.OrderItem{
				OrderID:      order.ID,
				CakeID:       cake.ID,
				Quantity:     line.Quantity,
				PriceAtOrder: quote.UnitPrice,
				ItemCost:     quote.ItemCost,
			}
			if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
				return utils.Persistence("insert order item", err)
			}
			quotes = append(quotes, quote)
			if quote.Promotional {
				freeUnits += quote.Quantity - quote.PaidUnits
			}
		}

		total := pricing.Total(quotes)
		if err := tx.Model(&order).Update("total_cost", total).Error; err != nil {
			return utils.Persistence("update order total", err)
		}

		return preloadOrder(tx).First(&order, order.ID).Error
	})
	if err != nil {
		return nil, utils.Persistence("create order", err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_uuid": order.OrderUUID,
		"lines":      len(order.Items),
		"total_cost": order.TotalCost.StringFixed(2),
		"promotion":  promoDay,
		"free_units": freeUnits,
	}).Info("Order created")
	return &order, nil
}

// loadCakes reads every referenced cake inside tx. The first id in request
// order that does not exist is reported.
func (s *OrderService) loadCakes(tx *gorm.DB, lines []OrderLineRequest) (map[uint]models.Cake, error) {
	ids := make([]uint, 0, len(lines))
	seen := make(map[uint]bool, len(lines))
	for _, line := range lines {
		if !seen[line.CakeID] {
			seen[line.CakeID] = true
			ids = append(ids, line.CakeID)
		}
	}

	var found []models.Cake
	if err := tx.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, utils.Persistence("load cakes", err)
	}
	cakes := make(map[uint]models.Cake, len(found))
	for _, c := range found {
		cakes[c.ID] = c
	}
	for _, id := range ids {
		if _, ok := cakes[id]; !ok {
			return nil, utils.NotFound("cake with id %d not found", id)
		}
	}
	return cakes, nil
}

func (s *OrderService) checkDelivery(tx *gorm.DB, routeID, stopoverID *uint) error {
	if routeID != nil {
		var route models.Route
		if err := tx.Select("id").First(&route, *routeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("route with id %d not found", *routeID)
			}
			return utils.Persistence("load route", err)
		}
	}
	if stopoverID != nil {
		var stop models.Stopover
		if err := tx.Select("id", "route_id").First(&stop, *stopoverID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("stopover with id %d not found", *stopoverID)
			}
			return utils.Persistence("load stopover", err)
		}
		if routeID != nil && stop.RouteID != *routeID {
			return utils.InvalidInput("stopover %d does not belong to route %d", *stopoverID, *routeID)
		}
	}
	return nil
}

// SetOrderStatus overwrites the status of an order. Any status may follow any
// other.
func (s *OrderService) SetOrderStatus(ctx context.Context, id uint, status string) (*models.Order, error) {
	target := models.OrderStatus(status)
	if !target.IsValid() {
		return nil, utils.InvalidInput("invalid status %q", status)
	}

	var order models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("order with id %d not found", id)
			}
			return err
		}
		err := tx.Model(&models.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":     target,
			"updated_at": s.clock.Now(),
		}).Error
		if err != nil {
			return err
		}
		return preloadOrder(tx).First(&order, id).Error
	})
	if err != nil {
		return nil, utils.Persistence("update order status", err)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": id,
		"status":   target,
	}).Info("Order status updated")
	return &order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := preloadOrder(s.db.WithContext(ctx)).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("order with id %d not found", id)
		}
		return nil, utils.Persistence("get order", err)
	}
	return &order, nil
}

// GetOrderByUUID looks an order up by its public tracking token.
func (s *OrderService) GetOrderByUUID(ctx context.Context, token string) (*models.Order, error) {
	var order models.Order
	err := preloadOrder(s.db.WithContext(ctx)).Where("order_uuid = ?", token).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("order %s not found", token)
		}
		return nil, utils.Persistence("get order", err)
	}
	return &order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, f OrderFilter, p utils.ListParams) ([]models.Order, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Order{})

	if f.Status != "" {
		if !models.OrderStatus(f.Status).IsValid() {
			return nil, 0, utils.InvalidInput("invalid status %q", f.Status)
		}
		q = q.Where("orders.status = ?", f.Status)
	}
	if f.CustomerName != "" {
		q = q.Where("LOWER(orders.customer_name) LIKE ?", "%"+strings.ToLower(f.CustomerName)+"%")
	}
	if f.CustomerPhone != "" {
		q = q.Where("orders.customer_phone LIKE ?", "%"+f.CustomerPhone+"%")
	}
	if f.DeliveryDate != nil {
		q = q.Joins("LEFT JOIN routes ON routes.id = orders.route_id").
			Where("routes.delivery_date >= ? AND routes.delivery_date < ?", *f.DeliveryDate, f.DeliveryDate.Next())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, utils.Persistence("count orders", err)
	}

	var orders []models.Order
	if err := preloadOrder(p.Apply(q)).Find(&orders).Error; err != nil {
		return nil, 0, utils.Persistence("list orders", err)
	}
	return orders, total, nil
}

// DeleteOrder removes an order together with its lines.
func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Select("id").First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFound("order with id %d not found", id)
			}
			return err
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, id).Error
	})
	if err != nil {
		return utils.Persistence("delete order", err)
	}
	utils.InfoLogger.WithField("order_id", id).Info("Order deleted")
	return nil
}

func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Cake").
		Preload("Route").
		Preload("Stopover")
}
