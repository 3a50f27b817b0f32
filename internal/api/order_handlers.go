package api

import (
	"net/http"

	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
)

type orderCreatedResponse struct {
	OrderID string `json:"orderId"`
}

// createOrder handles order placement
func (h *Handler) createOrder(c *gin.Context) {
	var req service.PlaceOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := authorizeUser(c, req.UserID); err != nil {
		respondError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader("Idempotency-Key")

	res, err := h.orders.PlaceOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, orderCreatedResponse{OrderID: res.Order.ID}, res.Message)
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, orders, "")
}

// getOrderDetail serves an order to its owner or an admin
func (h *Handler) getOrderDetail(c *gin.Context) {
	order, err := h.orders.GetOrderDetail(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := authorizeUser(c, order.UserID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order, "")
}

func (h *Handler) listAllOrders(c *gin.Context) {
	orders, err := h.orders.ListAllOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, orders, "")
}

type orderStatusRequest struct {
	OrderStatus string `json:"orderStatus"`
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.orders.UpdateOrderStatus(c.Request.Context(), c.Param("orderId"), req.OrderStatus); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, true, "Order status updated successfully!")
}

// orderFeedSocket upgrades an admin connection onto the live order feed
func (h *Handler) orderFeedSocket(c *gin.Context) {
	if h.orderFeed == nil {
		respondMessage(c, http.StatusNotFound, false, "Order feed disabled")
		return
	}
	h.orderFeed.ServeHTTP(c.Writer, c.Request)
}
