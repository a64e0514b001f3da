package api

import (
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stylenest/stylenest-backend/config"
	"github.com/stylenest/stylenest-backend/models"
	"github.com/stylenest/stylenest-backend/pricing"
	"github.com/stylenest/stylenest-backend/store"
	"github.com/stylenest/stylenest-backend/utils"
)

var (
	sessions      store.SessionStore
	guestCarts    *store.GuestCartStore
	userCarts     *store.UserCartStore
	productFinder store.ProductFinder
	stockReserver store.StockReserver
	coupons       pricing.CouponResolver
)

// Init wires the cart stores, catalog finder and stock reserver. Call after
// ConnectMongo.
func Init() {
	sessions = store.NewMemorySessionStore()
	guestCarts = store.NewGuestCartStore(sessions)
	userCarts = store.NewUserCartStore(usersCollection())
	productFinder = store.NewMongoProductFinder(productsCollection())
	stockReserver = store.NewMongoStockReserver(productsCollection())
	coupons = pricing.DefaultCoupons()
}

func productsCollection() *mongo.Collection {
	return utils.GetCollection(config.MongoDB, "products")
}

func categoriesCollection() *mongo.Collection {
	return utils.GetCollection(config.MongoDB, "categories")
}

func usersCollection() *mongo.Collection {
	return utils.GetCollection(config.MongoDB, "users")
}

func ordersCollection() *mongo.Collection {
	return utils.GetCollection(config.MongoDB, "orders")
}

// cartManagerFor selects the cart backing for the request: the user cart for
// an authenticated request, the session cart otherwise. The returned key is
// what the manager's operations expect.
func cartManagerFor(r *http.Request) (*store.CartManager, string) {
	if userID, err := GetUserIDFromContext(r.Context()); err == nil {
		return store.NewCartManager(userCarts, productFinder, coupons), userID
	}
	return store.NewCartManager(guestCarts, productFinder, coupons), GetSessionIDFromContext(r.Context())
}

// statusForError maps the business-rule errors to HTTP statuses; anything
// unrecognized is an internal failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrCategoryNotFound),
		errors.Is(err, models.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrVariantUnavailable),
		errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrCartEmpty),
		errors.Is(err, models.ErrInvalidStatus),
		errors.Is(err, models.ErrCategoryInUse):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
