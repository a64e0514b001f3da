package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/stylenest/stylenest-backend/api"
	"github.com/stylenest/stylenest-backend/config"
	"github.com/stylenest/stylenest-backend/utils"
)

func main() {
	config.LoadConfig()

	// Initialize MongoDB
	if err := utils.ConnectMongo(config.MongoURI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := utils.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
	cancel()

	api.Init()

	mux := http.NewServeMux()

	// Catalog
	mux.HandleFunc("/products", api.CORSMiddleware(api.ListProductsHandler))
	mux.HandleFunc("/products/facets", api.CORSMiddleware(api.ProductFacetsHandler))
	mux.HandleFunc("/products/", api.CORSMiddleware(api.GetProductHandler))
	mux.HandleFunc("/categories", api.CORSMiddleware(api.ListCategoriesHandler))
	mux.HandleFunc("/categories/", api.CORSMiddleware(api.GetCategoryHandler))

	// Cart (guest via session cookie, user via token)
	mux.HandleFunc("/cart", api.CORSMiddleware(api.OptionalAuthMiddleware(api.CartHandler)))
	mux.HandleFunc("/cart/items", api.CORSMiddleware(api.OptionalAuthMiddleware(api.CartItemsHandler)))

	// Orders
	mux.HandleFunc("/orders", api.CORSMiddleware(api.AuthMiddleware(api.OrdersHandler)))
	mux.HandleFunc("/orders/", api.CORSMiddleware(api.AuthMiddleware(api.OrdersHandler)))

	// Auth
	mux.HandleFunc("/auth/signup", api.CORSMiddleware(api.SignupHandler))
	mux.HandleFunc("/auth/login", api.CORSMiddleware(api.LoginHandler))
	mux.HandleFunc("/auth/verify-otp", api.CORSMiddleware(api.VerifyOTPHandler))
	mux.HandleFunc("/auth/forgot-password", api.CORSMiddleware(api.ForgotPasswordHandler))
	mux.HandleFunc("/auth/reset-password", api.CORSMiddleware(api.ResetPasswordHandler))
	mux.HandleFunc("/auth/google/login", api.CORSMiddleware(api.GoogleLoginHandler))
	mux.HandleFunc("/auth/google/callback", api.CORSMiddleware(api.GoogleCallbackHandler))

	// Account
	mux.HandleFunc("/profile", api.CORSMiddleware(api.AuthMiddleware(api.ProfileHandler)))
	mux.HandleFunc("/wishlist", api.CORSMiddleware(api.AuthMiddleware(api.WishlistHandler)))

	// Admin
	mux.HandleFunc("/admin/products", api.CORSMiddleware(api.AdminMiddleware(api.CreateProductHandler)))
	mux.HandleFunc("/admin/products/", api.CORSMiddleware(api.AdminMiddleware(api.AdminProductsHandler)))
	mux.HandleFunc("/admin/categories", api.CORSMiddleware(api.AdminMiddleware(api.CreateCategoryHandler)))
	mux.HandleFunc("/admin/categories/", api.CORSMiddleware(api.AdminMiddleware(api.AdminCategoriesHandler)))
	mux.HandleFunc("/admin/orders", api.CORSMiddleware(api.AdminMiddleware(api.AdminOrdersHandler)))
	mux.HandleFunc("/admin/orders/", api.CORSMiddleware(api.AdminMiddleware(api.AdminOrdersHandler)))

	port := config.Port
	fmt.Printf("Server starting on port %s...\n", port)
	if err := http.ListenAndServe(":"+port, utils.LatencyMiddleware(mux)); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
