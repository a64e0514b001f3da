package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/stylenest/stylenest-backend/models"
	"github.com/stylenest/stylenest-backend/utils"
)

func currentUser(ctx context.Context) (*models.User, error) {
	userID, err := GetUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, models.ErrUnauthorized
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var user models.User
	err = usersCollection().FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetProfileHandler handles GET /profile.
func GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context())
	if err != nil {
		utils.RespondError(w, nil, "Unauthorized", statusForError(err))
		return
	}
	utils.RespondSuccess(w, http.StatusOK, user)
}

// UpdateProfileHandler handles PUT /profile: name, phone and address only.
// Email and role never change through this endpoint.
func UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context())
	if err != nil {
		utils.RespondError(w, nil, "Unauthorized", statusForError(err))
		return
	}

	var req struct {
		Name    *string         `json:"name"`
		Phone   *string         `json:"phone"`
		Address *models.Address `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, nil, "Invalid request body", http.StatusBadRequest)
		return
	}

	update := bson.M{"updated_at": time.Now()}
	if req.Name != nil && *req.Name != "" {
		update["name"] = *req.Name
	}
	if req.Phone != nil {
		update["phone"] = *req.Phone
	}
	if req.Address != nil {
		update["address"] = *req.Address
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := usersCollection().UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{"$set": update}); err != nil {
		utils.RespondError(w, nil, "Failed to update profile", http.StatusInternalServerError)
		return
	}

	utils.RespondSuccess(w, http.StatusOK, map[string]string{"message": "Profile updated"})
}

// ProfileHandler routes /profile by method.
func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		GetProfileHandler(w, r)
	case http.MethodPut:
		UpdateProfileHandler(w, r)
	default:
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// WishlistHandler routes /wishlist: GET lists the referenced products,
// POST adds a product reference, DELETE removes one. Both writes are
// idempotent set operations.
func WishlistHandler(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context())
	if err != nil {
		utils.RespondError(w, nil, "Unauthorized", statusForError(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	switch r.Method {
	case http.MethodGet:
		products := []models.Product{}
		if len(user.Wishlist) > 0 {
			cursor, err := productsCollection().Find(ctx, bson.M{"_id": bson.M{"$in": user.Wishlist}, "isActive": true})
			if err != nil {
				utils.RespondError(w, nil, "Failed to fetch wishlist", http.StatusInternalServerError)
				return
			}
			defer cursor.Close(ctx)
			if err := cursor.All(ctx, &products); err != nil {
				utils.RespondError(w, nil, "Failed to decode wishlist", http.StatusInternalServerError)
				return
			}
		}
		utils.RespondSuccess(w, http.StatusOK, products)

	case http.MethodPost, http.MethodDelete:
		var req struct {
			ProductID string `json:"productId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
			utils.RespondError(w, nil, "productId is required", http.StatusBadRequest)
			return
		}
		oid, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			utils.RespondError(w, nil, "Invalid product id", http.StatusBadRequest)
			return
		}

		op := "$addToSet"
		if r.Method == http.MethodDelete {
			op = "$pull"
		} else {
			if _, err := productFinder.FindActiveByID(ctx, req.ProductID); err != nil {
				utils.RespondError(w, nil, "Product not found", statusForError(err))
				return
			}
		}

		if _, err := usersCollection().UpdateOne(ctx, bson.M{"_id": user.ID}, bson.M{op: bson.M{"wishlist": oid}}); err != nil {
			utils.RespondError(w, nil, "Failed to update wishlist", http.StatusInternalServerError)
			return
		}
		msg := "Added to wishlist"
		if r.Method == http.MethodDelete {
			msg = "Removed from wishlist"
		}
		utils.RespondSuccess(w, http.StatusOK, map[string]string{"message": msg})

	default:
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
