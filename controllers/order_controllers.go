package controllers

import (
	"net/http"

	"github.com/SteveKibs/cake-backend-app/feed"
	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/services"
	"github.com/SteveKibs/cake-backend-app/utils"
	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Service *services.OrderService
	Feed    *feed.Hub
}

func NewOrderController(svc *services.OrderService, hub *feed.Hub) *OrderController {
	return &OrderController{Service: svc, Feed: hub}
}

// CreateOrder prices and stores a customer order.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.SubmitOrderRequest
	if err := bindJSON(c, &req); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	order, err := oc.Service.SubmitOrder(c.Request.Context(), req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	view := order.View()
	if oc.Feed != nil {
		oc.Feed.OrderCreated(view)
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created successfully", view)
}

// TrackOrder lets a customer look up an order by its tracking token.
func (oc *OrderController) TrackOrder(c *gin.Context) {
	order, err := oc.Service.GetOrderByUUID(c.Request.Context(), c.Param("uuid"))
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order retrieved successfully", order.View())
}

func (oc *OrderController) GetOrders(c *gin.Context) {
	params, err := utils.ParseListParams(c, services.OrderSortColumns, "order_date", "DESC")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	deliveryDate, err := queryDate(c, "deliveryDate")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	filter := services.OrderFilter{
		Status:        c.Query("status"),
		CustomerName:  c.Query("customerName"),
		CustomerPhone: c.Query("customerPhone"),
		DeliveryDate:  deliveryDate,
	}
	orders, total, err := oc.Service.ListOrders(c.Request.Context(), filter, params)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	views := make([]models.OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, orders[i].View())
	}
	utils.RespondPage(c, "Orders retrieved successfully", views, params.Meta(total))
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	order, err := oc.Service.GetOrder(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order retrieved successfully", order.View())
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
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

	order, err := oc.Service.SetOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	view := order.View()
	if oc.Feed != nil {
		oc.Feed.OrderStatusChanged(view)
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated successfully", view)
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if err := oc.Service.DeleteOrder(c.Request.Context(), id); err != nil {
		utils.RespondAppError(c, err)
		return
	}
	if oc.Feed != nil {
		oc.Feed.OrderDeleted(id)
	}
	utils.RespondJSON(c, http.StatusOK, "Order deleted successfully", nil)
}
