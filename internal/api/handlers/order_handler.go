package handlers

import (
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"shop-backend/internal/models"
	"shop-backend/internal/repository"
)

type OrderHandler struct {
	repo repository.OrderRepository
}

func NewOrderHandler(repo repository.OrderRepository) *OrderHandler {
	return &OrderHandler{repo: repo}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.repo.List(r.Context())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Error fetching orders")
		return
	}
	if orders == nil {
		orders = []models.OrderSummary{}
	}

	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.repo.GetWithItems(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "order")
		return
	}

	writeJSON(w, http.StatusOK, order)
}

type shippingInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type placeOrderItem struct {
	VariantID int             `json:"variantId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type placeOrderRequest struct {
	UserID       *int             `json:"userId"`
	TotalAmount  decimal.Decimal  `json:"totalAmount"`
	ShippingCost *decimal.Decimal `json:"shippingCost"`
	ShippingInfo shippingInfo     `json:"shippingInfo"`
	Items        []placeOrderItem `json:"items"`
}

// Place persists the order atomically. Prices come from the request body as
// a point-in-time snapshot; they are not re-derived from the catalog.
func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order := models.Order{
		UserID:          req.UserID,
		CustomerName:    req.ShippingInfo.Name,
		CustomerPhone:   req.ShippingInfo.Phone,
		CustomerAddress: req.ShippingInfo.Address,
		TotalAmount:     req.TotalAmount,
	}
	if req.ShippingCost != nil {
		order.ShippingCost = decimal.NewNullDecimal(*req.ShippingCost)
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, models.OrderItem{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	if err := h.repo.Place(r.Context(), &order, items); err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidInput):
			writeMessage(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrTransaction):
			// Placement failures intentionally echo the cause so an
			// operator can diagnose a rolled-back order.
			writeJSON(w, http.StatusInternalServerError, apiMessage{
				Message: "Failed to place order",
				Error:   err.Error(),
			})
		default:
			writeMessage(w, http.StatusInternalServerError, "Failed to place order")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Order placed successfully",
		"orderId": order.OrderID,
	})
}

type updateStatusRequest struct {
	StatusID int `json:"statusId"`
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.repo.SetStatus(r.Context(), id, req.StatusID); err != nil {
		writeRepoError(w, err, "order")
		return
	}

	writeMessage(w, http.StatusOK, "Order status updated")
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.repo.Cancel(r.Context(), id); err != nil {
		writeRepoError(w, err, "order")
		return
	}

	writeMessage(w, http.StatusOK, "Order cancelled")
}
