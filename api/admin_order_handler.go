package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stylenest/stylenest-backend/models"
	"github.com/stylenest/stylenest-backend/utils"
)

// AdminListOrdersHandler handles GET /admin/orders with an optional status
// filter.
func AdminListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		if !models.IsValidStatus(status) {
			utils.RespondError(w, nil, "invalid order status", http.StatusBadRequest)
			return
		}
		filter["status"] = status
	}

	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	limit := 20
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	total, err := ordersCollection().CountDocuments(ctx, filter)
	if err != nil {
		utils.RespondError(w, nil, "Failed to fetch orders", http.StatusInternalServerError)
		return
	}

	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	findOptions.SetSkip(int64((page - 1) * limit))
	findOptions.SetLimit(int64(limit))

	cursor, err := ordersCollection().Find(ctx, filter, findOptions)
	if err != nil {
		utils.RespondError(w, nil, "Failed to fetch orders", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		utils.RespondError(w, nil, "Failed to decode orders", http.StatusInternalServerError)
		return
	}

	utils.RespondSuccess(w, http.StatusOK, OrderListResponse{
		Orders:      orders,
		Total:       total,
		CurrentPage: page,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
	})
}

// UpdateOrderStatusHandler handles PUT /admin/orders/{id}/status. Transitions
// run through the status machine; an unknown target or a move out of a
// terminal status is rejected and the order is left unchanged.
func UpdateOrderStatusHandler(w http.ResponseWriter, r *http.Request, id string) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Update Order Status API]")

	var req struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		utils.RespondError(w, &logMessageBuilder, "status is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	order, err := findOrder(ctx, id)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Order not found", statusForError(err))
		return
	}

	if err := applyTransition(ctx, order, req.Status, req.Note, &logMessageBuilder); err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), statusForError(err))
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Order %s moved to %s", order.OrderNumber, order.Status))
	utils.RespondSuccess(w, http.StatusOK, order)
}

// UpdateOrderShippingHandler handles PUT /admin/orders/{id}/shipping:
// tracking number, carrier and estimated delivery are the only mutable
// shipping fields after creation.
func UpdateOrderShippingHandler(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		TrackingNumber    *string    `json:"trackingNumber"`
		Carrier           *string    `json:"carrier"`
		EstimatedDelivery *time.Time `json:"estimatedDelivery"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, nil, "Invalid request body", http.StatusBadRequest)
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.TrackingNumber != nil {
		update["shipping.trackingNumber"] = *req.TrackingNumber
	}
	if req.Carrier != nil {
		update["shipping.carrier"] = *req.Carrier
	}
	if req.EstimatedDelivery != nil {
		update["shipping.estimatedDelivery"] = *req.EstimatedDelivery
	}
	if len(update) == 1 {
		utils.RespondError(w, nil, "Nothing to update", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := findOrder(ctx, id)
	if err != nil {
		utils.RespondError(w, nil, "Order not found", statusForError(err))
		return
	}

	if _, err := ordersCollection().UpdateOne(ctx, bson.M{"_id": order.ID}, bson.M{"$set": update}); err != nil {
		utils.RespondError(w, nil, "Failed to update shipping info", http.StatusInternalServerError)
		return
	}

	utils.RespondSuccess(w, http.StatusOK, map[string]string{"message": "Shipping info updated"})
}

// UpdateOrderPaymentHandler handles PUT /admin/orders/{id}/payment: only the
// payment status is mutable.
func UpdateOrderPaymentHandler(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, nil, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		utils.RespondError(w, nil, "status is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := findOrder(ctx, id)
	if err != nil {
		utils.RespondError(w, nil, "Order not found", statusForError(err))
		return
	}

	_, err = ordersCollection().UpdateOne(ctx,
		bson.M{"_id": order.ID},
		bson.M{"$set": bson.M{"paymentInfo.status": req.Status, "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.RespondError(w, nil, "Failed to update payment status", http.StatusInternalServerError)
		return
	}

	utils.RespondSuccess(w, http.StatusOK, map[string]string{"message": "Payment status updated"})
}

// AdminOrdersHandler routes /admin/orders and its subpaths.
func AdminOrdersHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/admin/orders")
	rest = strings.TrimPrefix(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		AdminListOrdersHandler(w, r)
	case strings.HasSuffix(rest, "/status") && r.Method == http.MethodPut:
		UpdateOrderStatusHandler(w, r, strings.TrimSuffix(rest, "/status"))
	case strings.HasSuffix(rest, "/shipping") && r.Method == http.MethodPut:
		UpdateOrderShippingHandler(w, r, strings.TrimSuffix(rest, "/shipping"))
	case strings.HasSuffix(rest, "/payment") && r.Method == http.MethodPut:
		UpdateOrderPaymentHandler(w, r, strings.TrimSuffix(rest, "/payment"))
	default:
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
