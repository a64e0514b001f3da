package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stylenest/stylenest-backend/models"
	"github.com/stylenest/stylenest-backend/utils"
)

func findCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var category models.Category
	err := categoriesCollection().FindOne(ctx, bson.M{"slug": slug, "isActive": true}).Decode(&category)
	if err == mongo.ErrNoDocuments {
		return nil, models.ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListCategoriesHandler handles GET /categories: active categories in
// sortOrder.
func ListCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "sortOrder", Value: 1}})
	cursor, err := categoriesCollection().Find(ctx, bson.M{"isActive": true}, findOptions)
	if err != nil {
		utils.RespondError(w, nil, "Failed to fetch categories", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		utils.RespondError(w, nil, "Failed to decode categories", http.StatusInternalServerError)
		return
	}

	utils.RespondSuccess(w, http.StatusOK, categories)
}

// GetCategoryHandler handles GET /categories/{slug}.
func GetCategoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	slug := strings.TrimPrefix(r.URL.Path, "/categories/")
	if slug == "" {
		utils.RespondError(w, nil, "Category slug is required", http.StatusBadRequest)
		return
	}

	category, err := findCategoryBySlug(r.Context(), slug)
	if err != nil {
		utils.RespondError(w, nil, "Category not found", statusForError(err))
		return
	}
	utils.RespondSuccess(w, http.StatusOK, category)
}

// CategoryRequest is the admin create/update payload.
type CategoryRequest struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Image          string  `json:"image"`
	ParentCategory *string `json:"parentCategory"`
	SortOrder      int     `json:"sortOrder"`
}

// CreateCategoryHandler handles POST /admin/categories.
func CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Create Category API]")

	if r.Method != http.MethodPost {
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		utils.RespondError(w, &logMessageBuilder, "Name is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	now := time.Now()
	category := models.Category{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Slug:        utils.Slugify(req.Name),
		Description: req.Description,
		Image:       req.Image,
		IsActive:    true,
		SortOrder:   req.SortOrder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if req.ParentCategory != nil && *req.ParentCategory != "" {
		parentID, err := primitive.ObjectIDFromHex(*req.ParentCategory)
		if err != nil {
			utils.RespondError(w, &logMessageBuilder, "Invalid parent category id", http.StatusBadRequest)
			return
		}
		var parent models.Category
		if err := categoriesCollection().FindOne(ctx, bson.M{"_id": parentID}).Decode(&parent); err != nil {
			utils.RespondError(w, &logMessageBuilder, "Parent category not found", http.StatusNotFound)
			return
		}
		category.ParentCategory = &parentID
	}

	if _, err := categoriesCollection().InsertOne(ctx, category); err != nil {
		if utils.IsDuplicateKeyError(err) {
			utils.RespondError(w, &logMessageBuilder, "A category with this name already exists", statusForError(models.ErrDuplicate))
			return
		}
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to save category: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to save category", http.StatusInternalServerError)
		return
	}

	// register the child on its parent
	if category.ParentCategory != nil {
		_, err := categoriesCollection().UpdateOne(ctx,
			bson.M{"_id": *category.ParentCategory},
			bson.M{"$addToSet": bson.M{"subCategories": category.ID}},
		)
		if err != nil {
			utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to link subcategory: %v", err))
		}
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Category created: %s", category.Slug))
	utils.RespondSuccess(w, http.StatusCreated, category)
}

// UpdateCategoryHandler handles PUT /admin/categories/{id}. Renames recompute
// the slug.
func UpdateCategoryHandler(w http.ResponseWriter, r *http.Request, id string) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.RespondError(w, nil, "Invalid category id", http.StatusBadRequest)
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Image       *string `json:"image"`
		SortOrder   *int    `json:"sortOrder"`
		IsActive    *bool   `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, nil, "Invalid request body", http.StatusBadRequest)
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	if req.Name != nil {
		update["name"] = *req.Name
		update["slug"] = utils.Slugify(*req.Name)
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if req.Image != nil {
		update["image"] = *req.Image
	}
	if req.SortOrder != nil {
		update["sortOrder"] = *req.SortOrder
	}
	if req.IsActive != nil {
		update["isActive"] = *req.IsActive
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var updated models.Category
	err = categoriesCollection().FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondError(w, nil, "Category not found", http.StatusNotFound)
		} else if utils.IsDuplicateKeyError(err) {
			utils.RespondError(w, nil, "A category with this name already exists", statusForError(models.ErrDuplicate))
		} else {
			utils.RespondError(w, nil, "Failed to update category", http.StatusInternalServerError)
		}
		return
	}

	utils.RespondSuccess(w, http.StatusOK, updated)
}

// DeleteCategoryHandler handles DELETE /admin/categories/{id}. A category
// with active products or active subcategories cannot be hard-deleted; it is
// soft-deactivated instead, and the response says which happened.
func DeleteCategoryHandler(w http.ResponseWriter, r *http.Request, id string) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Delete Category API]")

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid category id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	productCount, err := productsCollection().CountDocuments(ctx, bson.M{"category": oid, "isActive": true})
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Failed to check category usage", http.StatusInternalServerError)
		return
	}
	subCount, err := categoriesCollection().CountDocuments(ctx, bson.M{"parentCategory": oid, "isActive": true})
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Failed to check category usage", http.StatusInternalServerError)
		return
	}

	if productCount > 0 || subCount > 0 {
		res, err := categoriesCollection().UpdateOne(ctx,
			bson.M{"_id": oid},
			bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
		)
		if err != nil {
			utils.RespondError(w, &logMessageBuilder, "Failed to deactivate category", http.StatusInternalServerError)
			return
		}
		if res.MatchedCount == 0 {
			utils.RespondError(w, &logMessageBuilder, "Category not found", http.StatusNotFound)
			return
		}
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Category %s deactivated (in use by %d products, %d subcategories)", id, productCount, subCount))
		utils.RespondSuccess(w, http.StatusOK, map[string]string{"message": "Category is in use and was deactivated instead of deleted"})
		return
	}

	res, err := categoriesCollection().DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Failed to delete category", http.StatusInternalServerError)
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondError(w, &logMessageBuilder, "Category not found", http.StatusNotFound)
		return
	}

	// detach from the parent's subCategories list
	_, err = categoriesCollection().UpdateMany(ctx,
		bson.M{"subCategories": oid},
		bson.M{"$pull": bson.M{"subCategories": oid}},
	)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to unlink subcategory: %v", err))
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Category %s deleted", id))
	utils.RespondSuccess(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}

// AdminCategoriesHandler routes /admin/categories/{id} by method.
func AdminCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/admin/categories/")
	switch r.Method {
	case http.MethodPut:
		UpdateCategoryHandler(w, r, id)
	case http.MethodDelete:
		DeleteCategoryHandler(w, r, id)
	default:
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
