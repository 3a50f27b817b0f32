package api

import (
	"net/http"

	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
)

type cartItemRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addToCart(c *gin.Context) {
	var req cartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := authorizeUser(c, req.UserID); err != nil {
		respondError(c, err)
		return
	}

	cart, err := h.carts.AddItem(c.Request.Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, cart, "")
}

func (h *Handler) updateCartItem(c *gin.Context) {
	var req cartItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := authorizeUser(c, req.UserID); err != nil {
		respondError(c, err)
		return
	}

	cart, err := h.carts.UpdateItem(c.Request.Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, cart, "")
}

func (h *Handler) getCart(c *gin.Context) {
	cart, err := h.carts.GetCart(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, cart, "")
}

func (h *Handler) removeCartItem(c *gin.Context) {
	cart, err := h.carts.RemoveItem(c.Request.Context(), c.Param("userId"), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, cart, "Cart item deleted successfully")
}

func (h *Handler) addAddress(c *gin.Context) {
	var in service.AddressInput
	if !bindJSON(c, &in) {
		return
	}
	if err := authorizeUser(c, in.UserID); err != nil {
		respondError(c, err)
		return
	}

	address, err := h.addresses.AddAddress(c.Request.Context(), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, address, "")
}

func (h *Handler) listAddresses(c *gin.Context) {
	addresses, err := h.addresses.ListAddresses(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, addresses, "")
}

func (h *Handler) updateAddress(c *gin.Context) {
	var in service.AddressInput
	if !bindJSON(c, &in) {
		return
	}

	address, err := h.addresses.UpdateAddress(c.Request.Context(), c.Param("userId"), c.Param("addressId"), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, address, "")
}

func (h *Handler) deleteAddress(c *gin.Context) {
	if err := h.addresses.DeleteAddress(c.Request.Context(), c.Param("userId"), c.Param("addressId")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, true, "Address deleted successfully")
}
