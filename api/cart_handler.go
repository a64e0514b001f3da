package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/stylenest/stylenest-backend/utils"
)

// CartItemRequest identifies one cart line plus the quantity to add or set.
type CartItemRequest struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

// GetCartHandler handles GET /cart: the resolved cart with a pricing
// preview. An optional coupon query parameter applies a discount preview.
func GetCartHandler(w http.ResponseWriter, r *http.Request) {
	manager, key := cartManagerFor(r)
	view, err := manager.View(r.Context(), key, r.URL.Query().Get("coupon"))
	if err != nil {
		utils.RespondError(w, nil, "Failed to load cart", statusForError(err))
		return
	}
	utils.RespondSuccess(w, http.StatusOK, view)
}

// AddToCartHandler handles POST /cart/items.
func AddToCartHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Add To Cart API]")

	var req CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProductID == "" || req.Size == "" || req.Color == "" {
		utils.RespondError(w, &logMessageBuilder, "productId, size and color are required", http.StatusBadRequest)
		return
	}
	if req.Quantity < 1 {
		utils.RespondError(w, &logMessageBuilder, "quantity must be at least 1", http.StatusBadRequest)
		return
	}

	manager, key := cartManagerFor(r)
	count, err := manager.Add(r.Context(), key, req.ProductID, req.Size, req.Color, req.Quantity)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), statusForError(err))
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Added %dx %s (%s/%s)", req.Quantity, req.ProductID, req.Size, req.Color))
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"cartCount": count})
}

// UpdateCartItemHandler handles PUT /cart/items. Quantity zero removes the
// line.
func UpdateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	var req CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, nil, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProductID == "" || req.Size == "" || req.Color == "" {
		utils.RespondError(w, nil, "productId, size and color are required", http.StatusBadRequest)
		return
	}
	if req.Quantity < 0 {
		utils.RespondError(w, nil, "quantity cannot be negative", http.StatusBadRequest)
		return
	}

	manager, key := cartManagerFor(r)
	count, err := manager.Update(r.Context(), key, req.ProductID, req.Size, req.Color, req.Quantity)
	if err != nil {
		utils.RespondError(w, nil, err.Error(), statusForError(err))
		return
	}
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"cartCount": count})
}

// RemoveCartItemHandler handles DELETE /cart/items. Removing a line that is
// not in the cart succeeds.
func RemoveCartItemHandler(w http.ResponseWriter, r *http.Request) {
	var req CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, nil, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ProductID == "" {
		utils.RespondError(w, nil, "productId is required", http.StatusBadRequest)
		return
	}

	manager, key := cartManagerFor(r)
	count, err := manager.Remove(r.Context(), key, req.ProductID, req.Size, req.Color)
	if err != nil {
		utils.RespondError(w, nil, "Failed to update cart", statusForError(err))
		return
	}
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"cartCount": count})
}

// ClearCartHandler handles DELETE /cart.
func ClearCartHandler(w http.ResponseWriter, r *http.Request) {
	manager, key := cartManagerFor(r)
	if err := manager.Clear(r.Context(), key); err != nil {
		utils.RespondError(w, nil, "Failed to clear cart", statusForError(err))
		return
	}
	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{"cartCount": 0})
}

// CartHandler routes /cart by method.
func CartHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		GetCartHandler(w, r)
	case http.MethodDelete:
		ClearCartHandler(w, r)
	default:
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// CartItemsHandler routes /cart/items by method.
func CartItemsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		AddToCartHandler(w, r)
	case http.MethodPut:
		UpdateCartItemHandler(w, r)
	case http.MethodDelete:
		RemoveCartItemHandler(w, r)
	default:
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
