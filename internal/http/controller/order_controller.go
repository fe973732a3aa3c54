package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/http/response"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
	"github.com/iyhunko/storefront-backoffice/internal/service"
)

// OrderController handles checkout and order workflow requests.
type OrderController struct {
	orderService *service.OrderService
}

// NewOrderController creates a new OrderController.
func NewOrderController(orderService *service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

// CheckoutRequest is the cart submitted by a customer.
type CheckoutRequest struct {
	Items []struct {
		ProductID uuid.UUID `json:"productId" binding:"required"`
		Quantity  int       `json:"quantity" binding:"required,gt=0"`
	} `json:"items" binding:"required,min=1,dive"`
	AddressID     *uuid.UUID `json:"addressId"`
	PaymentMethod string     `json:"paymentMethod" binding:"required"`
	Notes         string     `json:"notes"`
}

// UpdateStatusRequest moves an order to a new status.
type UpdateStatusRequest struct {
	Status       model.OrderStatus `json:"status" binding:"required"`
	TrackingCode string            `json:"trackingCode"`
}

// Checkout places an order for the authenticated user.
func (oc *OrderController) Checkout(c *gin.Context) {
	var req CheckoutRequest
	if !bindJSON(c, &req) {
		return
	}

	in := service.CheckoutInput{
		AddressID:     req.AddressID,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}
	for _, item := range req.Items {
		in.Items = append(in.Items, service.CheckoutItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := oc.orderService.Checkout(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// ListMyOrders lists the authenticated user's orders.
func (oc *OrderController) ListMyOrders(c *gin.Context) {
	orders, err := oc.orderService.ListMine(c.Request.Context(), pagination(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// GetOrder returns one order of the caller, or any order for admins.
func (oc *OrderController) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := oc.orderService.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// ListOrders lists every order for admins. Query: status, sort, page, limit.
func (oc *OrderController) ListOrders(c *gin.Context) {
	orders, err := oc.orderService.ListAll(c.Request.Context(), repository.OrderQuery{
		Status:     model.OrderStatus(c.Query("status")),
		Sort:       c.Query("sort"),
		Pagination: pagination(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// UpdateOrderStatus moves an order along the status workflow.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := oc.orderService.UpdateStatus(c.Request.Context(), id, req.Status, req.TrackingCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}
