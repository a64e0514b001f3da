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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stylenest/stylenest-backend/models"
	"github.com/stylenest/stylenest-backend/pricing"
	"github.com/stylenest/stylenest-backend/store"
	"github.com/stylenest/stylenest-backend/utils"
)

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	Address    models.Address `json:"address"`
	CouponCode string         `json:"couponCode"`
}

// CreateOrderResponse deliberately exposes no stock or cost internals.
type CreateOrderResponse struct {
	ID          string         `json:"id"`
	OrderNumber string         `json:"orderNumber"`
	Status      string         `json:"status"`
	Pricing     models.Pricing `json:"pricing"`
	CartCount   int            `json:"cartCount"`
}

// validatedLine pairs a cart line with the product state it validated against.
type validatedLine struct {
	item      models.CartItem
	product   *models.Product
	unitPrice float64
}

// CreateOrderHandler handles POST /orders: the all-or-nothing checkout.
// Every line is validated against live stock, every variant decremented with
// a conditional update, and only then is the order written and the cart
// cleared. A decrement that loses the race to another checkout rolls back
// the decrements already applied and aborts with no order created.
func CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Create Order API]")

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Address.Street == "" || req.Address.City == "" || req.Address.PostalCode == "" || req.Address.Country == "" {
		utils.RespondError(w, &logMessageBuilder, "Shipping address (street, city, postalCode, country) is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	cartItems, err := userCarts.Get(ctx, userID)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Failed to load cart", statusForError(err))
		return
	}
	if len(cartItems) == 0 {
		utils.RespondError(w, &logMessageBuilder, "Cart is empty", statusForError(models.ErrCartEmpty))
		return
	}

	// Step 1: validate every line against live product/variant state.
	// Checkout is all-or-nothing; the first failing line aborts everything.
	lines := make([]validatedLine, 0, len(cartItems))
	for _, item := range cartItems {
		product, err := productFinder.FindActiveByID(ctx, item.ProductID.Hex())
		if err != nil {
			utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Line %s unavailable: %v", item.ProductID.Hex(), err))
			utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("%q is no longer available", item.ProductID.Hex()), statusForError(err))
			return
		}
		variant, ok := product.FindVariant(item.Size, item.Color)
		if !ok {
			utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("%s (%s/%s) is no longer available", product.Name, item.Size, item.Color), http.StatusBadRequest)
			return
		}
		if variant.Stock < item.Quantity {
			utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Insufficient stock for %s (%s/%s)", product.Name, item.Size, item.Color), http.StatusBadRequest)
			return
		}
		lines = append(lines, validatedLine{item: item, product: product, unitPrice: product.UnitPrice(variant)})
	}

	// Step 2: price snapshot per line plus the order-level breakdown.
	orderItems := make([]models.OrderItem, 0, len(lines))
	priced := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		image := ""
		if len(l.product.Images) > 0 {
			image = l.product.Images[0]
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID: l.product.ID,
			Name:      l.product.Name,
			Price:     l.unitPrice,
			Quantity:  l.item.Quantity,
			Size:      l.item.Size,
			Color:     l.item.Color,
			Image:     image,
			Total:     pricing.LineTotal(l.unitPrice, l.item.Quantity),
		})
		priced = append(priced, pricing.Line{UnitPrice: l.unitPrice, Quantity: l.item.Quantity})
	}
	orderPricing := pricing.Compute(priced, req.CouponCode, coupons)

	// Step 3: conditional decrements, all-or-nothing. A reserve that loses
	// the race to another checkout releases everything already taken and
	// aborts with no order created.
	reserve := make([]store.StockLine, 0, len(lines))
	for _, l := range lines {
		reserve = append(reserve, store.StockLine{
			ProductID: l.product.ID,
			Size:      l.item.Size,
			Color:     l.item.Color,
			Quantity:  l.item.Quantity,
		})
	}
	onReleaseFail := func(line store.StockLine, err error) {
		// out of retries and out of luck: record the discrepancy loudly
		// for manual reconciliation instead of overselling silently
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("RECONCILE: failed to restock %s (%s/%s) x%d: %v",
			line.ProductID.Hex(), line.Size, line.Color, line.Quantity, err))
	}
	if i, err := store.ReserveAll(ctx, stockReserver, reserve, onReleaseFail); err != nil {
		l := lines[i]
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Decrement lost race on %s: %v", l.product.ID.Hex(), err))
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Insufficient stock for %s (%s/%s)", l.product.Name, l.item.Size, l.item.Color), statusForError(err))
		return
	}

	// Step 4: persist the order. The unique index on orderNumber closes the
	// (tiny) collision window; retry with a fresh number on duplicates.
	now := time.Now()
	order := models.Order{
		ID:      primitive.NewObjectID(),
		UserID:  userOID,
		Items:   orderItems,
		Pricing: orderPricing,
		Status:  models.StatusPending,
		StatusHistory: []models.StatusEntry{
			{Status: models.StatusPending, Timestamp: now, Note: "Order placed"},
		},
		Shipping:    models.ShippingInfo{Address: req.Address},
		PaymentInfo: models.PaymentInfo{Method: "cod", Status: "pending"},
		CouponCode:  req.CouponCode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	inserted := false
	for attempt := 0; attempt < 3; attempt++ {
		order.OrderNumber = utils.GenerateOrderNumber()
		if _, err := ordersCollection().InsertOne(ctx, order); err != nil {
			if utils.IsDuplicateKeyError(err) {
				continue
			}
			utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to insert order: %v", err))
			store.ReleaseAll(stockReserver, reserve, onReleaseFail)
			utils.RespondError(w, &logMessageBuilder, "Failed to create order", http.StatusInternalServerError)
			return
		}
		inserted = true
		break
	}
	if !inserted {
		store.ReleaseAll(stockReserver, reserve, onReleaseFail)
		utils.RespondError(w, &logMessageBuilder, "Failed to create order", http.StatusInternalServerError)
		return
	}

	// Step 5: clear the cart and link the order to the user. Both are
	// best-effort once the order exists; failures are logged, not surfaced.
	if err := userCarts.Clear(ctx, userID); err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to clear cart: %v", err))
	}
	if _, err := usersCollection().UpdateOne(ctx, bson.M{"_id": userOID}, bson.M{"$push": bson.M{"orders": order.ID}}); err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to link order to user: %v", err))
	}

	go sendOrderConfirmation(userOID, order.OrderNumber, order.Pricing.Total)

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Order %s created for user %s", order.OrderNumber, userID))
	utils.RespondSuccess(w, http.StatusCreated, CreateOrderResponse{
		ID:          order.ID.Hex(),
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Pricing:     order.Pricing,
		CartCount:   0,
	})
}

func sendOrderConfirmation(userOID primitive.ObjectID, orderNumber string, total float64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var user models.User
	if err := usersCollection().FindOne(ctx, bson.M{"_id": userOID}).Decode(&user); err != nil {
		fmt.Printf("Order confirmation email skipped, user lookup failed: %v\n", err)
		return
	}
	if err := utils.SendOrderConfirmation(user.Name, user.Email, orderNumber, total); err != nil {
		fmt.Printf("Failed to send order confirmation for %s: %v\n", orderNumber, err)
	}
}

// OrderListResponse carries one page of a user's orders.
type OrderListResponse struct {
	Orders      []models.Order `json:"orders"`
	Total       int64          `json:"total"`
	CurrentPage int            `json:"current_page"`
	TotalPages  int            `json:"total_pages"`
}

// ListOrdersHandler handles GET /orders: the caller's orders, newest first.
func ListOrdersHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, nil, "Unauthorized", http.StatusUnauthorized)
		return
	}
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		utils.RespondError(w, nil, "Unauthorized", http.StatusUnauthorized)
		return
	}

	page := 1
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	limit := 10
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{"userId": userOID}
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

// GetOrderHandler handles GET /orders/{idOrNumber}. Owners see their own
// orders; admins see any.
func GetOrderHandler(w http.ResponseWriter, r *http.Request, idOrNumber string) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, nil, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := findOrder(ctx, idOrNumber)
	if err != nil {
		utils.RespondError(w, nil, "Order not found", statusForError(err))
		return
	}

	role, _ := r.Context().Value(userRoleKey).(string)
	if order.UserID.Hex() != userID && role != "admin" {
		utils.RespondError(w, nil, "Forbidden", statusForError(models.ErrForbidden))
		return
	}

	utils.RespondSuccess(w, http.StatusOK, order)
}

func findOrder(ctx context.Context, idOrNumber string) (*models.Order, error) {
	filter := bson.M{"orderNumber": idOrNumber}
	if oid, err := primitive.ObjectIDFromHex(idOrNumber); err == nil {
		filter = bson.M{"_id": oid}
	}
	var order models.Order
	err := ordersCollection().FindOne(ctx, filter).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrderHandler handles PUT /orders/{id}/cancel. Owners may cancel
// while the order is still pending or confirmed; the purchased stock goes
// back.
func CancelOrderHandler(w http.ResponseWriter, r *http.Request, id string) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Cancel Order API]")

	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Unauthorized", http.StatusUnauthorized)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	order, err := findOrder(ctx, id)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Order not found", statusForError(err))
		return
	}
	if order.UserID.Hex() != userID {
		utils.RespondError(w, &logMessageBuilder, "Forbidden", statusForError(models.ErrForbidden))
		return
	}
	if order.Status != models.StatusPending && order.Status != models.StatusConfirmed {
		utils.RespondError(w, &logMessageBuilder, fmt.Sprintf("Order in status %q can no longer be cancelled", order.Status), http.StatusBadRequest)
		return
	}

	if err := applyTransition(ctx, order, models.StatusCancelled, "Cancelled by customer", &logMessageBuilder); err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), statusForError(err))
		return
	}

	utils.RespondSuccess(w, http.StatusOK, map[string]interface{}{
		"orderNumber": order.OrderNumber,
		"status":      order.Status,
	})
}

// applyTransition runs the status machine, persists the result, and handles
// restock for the statuses that return goods to inventory.
func applyTransition(ctx context.Context, order *models.Order, target, note string, logger *strings.Builder) error {
	if err := order.Transition(target, note); err != nil {
		return err
	}

	_, err := ordersCollection().UpdateOne(ctx,
		bson.M{"_id": order.ID},
		bson.M{"$set": bson.M{
			"status":        order.Status,
			"statusHistory": order.StatusHistory,
			"updatedAt":     order.UpdatedAt,
		}},
	)
	if err != nil {
		return err
	}

	if target == models.StatusCancelled || target == models.StatusReturned {
		for _, item := range order.Items {
			line := store.StockLine{ProductID: item.ProductID, Size: item.Size, Color: item.Color, Quantity: item.Quantity}
			if err := stockReserver.Release(ctx, line); err != nil {
				utils.AddToLogMessage(logger, fmt.Sprintf("RECONCILE: failed to restock %s x%d on %s: %v",
					item.ProductID.Hex(), item.Quantity, target, err))
			}
		}
	}
	return nil
}

// OrdersHandler routes /orders and /orders/{id}[/cancel] by path and method.
func OrdersHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/orders")
	rest = strings.TrimPrefix(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodPost:
		CreateOrderHandler(w, r)
	case rest == "" && r.Method == http.MethodGet:
		ListOrdersHandler(w, r)
	case strings.HasSuffix(rest, "/cancel") && r.Method == http.MethodPut:
		CancelOrderHandler(w, r, strings.TrimSuffix(rest, "/cancel"))
	case rest != "" && r.Method == http.MethodGet:
		GetOrderHandler(w, r, rest)
	default:
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
