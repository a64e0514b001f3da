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
	"github.com/stylenest/stylenest-backend/utils"
)

const (
	defaultPageSize = 12
	maxPageSize     = 100
)

// ProductListResponse carries one page of catalog results.
type ProductListResponse struct {
	Products    []models.Product `json:"products"`
	Total       int64            `json:"total"`
	CurrentPage int              `json:"current_page"`
	TotalPages  int              `json:"total_pages"`
}

// ListProductsHandler handles GET /products with filtering, sorting and
// offset pagination.
func ListProductsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	filter := bson.M{"isActive": true}

	if category := q.Get("category"); category != "" {
		if oid, err := primitive.ObjectIDFromHex(category); err == nil {
			filter["category"] = oid
		} else if cat, err := findCategoryBySlug(r.Context(), category); err == nil {
			filter["category"] = cat.ID
		} else {
			// unknown category matches nothing rather than erroring
			filter["category"] = primitive.NilObjectID
		}
	}

	price := bson.M{}
	if min := q.Get("minPrice"); min != "" {
		if v, err := strconv.ParseFloat(min, 64); err == nil {
			price["$gte"] = v
		}
	}
	if max := q.Get("maxPrice"); max != "" {
		if v, err := strconv.ParseFloat(max, 64); err == nil {
			price["$lte"] = v
		}
	}
	if len(price) > 0 {
		filter["price"] = price
	}

	if size := q.Get("size"); size != "" {
		filter["variants.size"] = size
	}
	if color := q.Get("color"); color != "" {
		filter["variants.color"] = bson.M{"$regex": color, "$options": "i"}
	}
	if brand := q.Get("brand"); brand != "" {
		filter["brand"] = bson.M{"$regex": brand, "$options": "i"}
	}
	if search := q.Get("q"); search != "" {
		regex := bson.M{"$regex": search, "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"name": regex},
			bson.M{"description": regex},
			bson.M{"fabric": regex},
			bson.M{"brand": regex},
			bson.M{"tags": regex},
		}
	}

	sortKey := bson.D{{Key: "createdAt", Value: -1}} // newest first by default
	switch q.Get("sort") {
	case "price-asc":
		sortKey = bson.D{{Key: "price", Value: 1}}
	case "price-desc":
		sortKey = bson.D{{Key: "price", Value: -1}}
	case "rating":
		sortKey = bson.D{{Key: "rating", Value: -1}}
	case "popular":
		sortKey = bson.D{{Key: "soldCount", Value: -1}}
	}

	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := defaultPageSize
	if l, err := strconv.Atoi(q.Get("limit")); err == nil && l > 0 {
		pageSize = l
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}
	}

	collection := productsCollection()
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		utils.RespondError(w, nil, "Failed to fetch products", http.StatusInternalServerError)
		return
	}

	findOptions := options.Find()
	findOptions.SetSort(sortKey)
	findOptions.SetSkip(int64((page - 1) * pageSize))
	findOptions.SetLimit(int64(pageSize))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		utils.RespondError(w, nil, "Failed to fetch products", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		utils.RespondError(w, nil, "Failed to decode products", http.StatusInternalServerError)
		return
	}

	utils.RespondSuccess(w, http.StatusOK, ProductListResponse{
		Products:    products,
		Total:       total,
		CurrentPage: page,
		TotalPages:  int(math.Ceil(float64(total) / float64(pageSize))),
	})
}

// GetProductHandler handles GET /products/{idOrSlug}. Each fetch bumps the
// view counter; the increment is fire-and-forget and never fails the read.
func GetProductHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idOrSlug := strings.TrimPrefix(r.URL.Path, "/products/")
	if idOrSlug == "" {
		utils.RespondError(w, nil, "Product id or slug is required", http.StatusBadRequest)
		return
	}

	filter := bson.M{"slug": idOrSlug, "isActive": true}
	if oid, err := primitive.ObjectIDFromHex(idOrSlug); err == nil {
		filter = bson.M{"_id": oid, "isActive": true}
	}

	collection := productsCollection()
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var product models.Product
	if err := collection.FindOne(ctx, filter).Decode(&product); err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondError(w, nil, "Product not found", http.StatusNotFound)
		} else {
			utils.RespondError(w, nil, "Failed to fetch product", http.StatusInternalServerError)
		}
		return
	}

	go func(id primitive.ObjectID) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := productsCollection().UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"viewCount": 1}}); err != nil {
			fmt.Printf("Failed to increment view count for %s: %v\n", id.Hex(), err)
		}
	}(product.ID)

	product.Images = utils.PresignImageURLs(ctx, product.Images)
	utils.RespondSuccess(w, http.StatusOK, product)
}

// FacetsResponse backs the storefront filter UI.
type FacetsResponse struct {
	Sizes    []string `json:"sizes"`
	Colors   []string `json:"colors"`
	Brands   []string `json:"brands"`
	MinPrice float64  `json:"minPrice"`
	MaxPrice float64  `json:"maxPrice"`
}

// ProductFacetsHandler handles GET /products/facets: distinct sizes (garment
// order), colors, brands and the overall price bounds.
func ProductFacetsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	collection := productsCollection()
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	active := bson.M{"isActive": true}

	sizesRaw, err := collection.Distinct(ctx, "variants.size", active)
	if err != nil {
		utils.RespondError(w, nil, "Failed to fetch facets", http.StatusInternalServerError)
		return
	}
	colorsRaw, err := collection.Distinct(ctx, "variants.color", active)
	if err != nil {
		utils.RespondError(w, nil, "Failed to fetch facets", http.StatusInternalServerError)
		return
	}
	brandsRaw, err := collection.Distinct(ctx, "brand", active)
	if err != nil {
		utils.RespondError(w, nil, "Failed to fetch facets", http.StatusInternalServerError)
		return
	}

	resp := FacetsResponse{
		Sizes:  models.SortSizes(toStrings(sizesRaw)),
		Colors: toStrings(colorsRaw),
		Brands: toStrings(brandsRaw),
	}

	// price bounds via a single $group aggregation
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: active}},
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"min": bson.M{"$min": "$price"},
			"max": bson.M{"$max": "$price"},
		}}},
	}
	cursor, err := collection.Aggregate(ctx, pipeline)
	if err == nil {
		var bounds []struct {
			Min float64 `bson:"min"`
			Max float64 `bson:"max"`
		}
		if err := cursor.All(ctx, &bounds); err == nil && len(bounds) > 0 {
			resp.MinPrice = bounds[0].Min
			resp.MaxPrice = bounds[0].Max
		}
	}

	utils.RespondSuccess(w, http.StatusOK, resp)
}

func toStrings(raw []interface{}) []string {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CreateProductHandler handles POST /admin/products. Multipart form: product
// fields plus a variants JSON array and image files uploaded to S3.
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Create Product API]")

	if r.Method != http.MethodPost {
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Error parsing form data", http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	sku := r.FormValue("sku")
	categoryHex := r.FormValue("category")
	priceStr := r.FormValue("price")
	if name == "" || sku == "" || categoryHex == "" || priceStr == "" {
		utils.RespondError(w, &logMessageBuilder, "name, sku, category and price are required", http.StatusBadRequest)
		return
	}

	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price <= 0 {
		utils.RespondError(w, &logMessageBuilder, "price must be a positive number", http.StatusBadRequest)
		return
	}
	comparePrice, _ := strconv.ParseFloat(r.FormValue("comparePrice"), 64)

	categoryID, err := primitive.ObjectIDFromHex(categoryHex)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid category id", http.StatusBadRequest)
		return
	}

	var variants []models.Variant
	if raw := r.FormValue("variants"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &variants); err != nil {
			utils.RespondError(w, &logMessageBuilder, "Invalid variants JSON", http.StatusBadRequest)
			return
		}
	}
	for _, v := range variants {
		if v.Size == "" || v.Color == "" || v.Stock < 0 {
			utils.RespondError(w, &logMessageBuilder, "Each variant needs a size, a color and non-negative stock", http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	// verify the category exists and is active
	var category models.Category
	err = categoriesCollection().FindOne(ctx, bson.M{"_id": categoryID, "isActive": true}).Decode(&category)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Category not found", http.StatusNotFound)
		return
	}

	images, err := uploadProductImages(ctx, r, &logMessageBuilder)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusBadRequest)
		return
	}

	now := time.Now()
	product := models.Product{
		ID:           primitive.NewObjectID(),
		Name:         name,
		Slug:         utils.Slugify(name),
		Description:  r.FormValue("description"),
		Price:        price,
		ComparePrice: comparePrice,
		SKU:          sku,
		Category:     categoryID,
		Brand:        r.FormValue("brand"),
		Fabric:       r.FormValue("fabric"),
		Images:       images,
		Variants:     variants,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if tags := r.FormValue("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				product.Tags = append(product.Tags, t)
			}
		}
	}
	product.RecomputeTotalStock()

	if _, err := productsCollection().InsertOne(ctx, product); err != nil {
		if utils.IsDuplicateKeyError(err) {
			utils.RespondError(w, &logMessageBuilder, "A product with this slug or SKU already exists", statusForError(models.ErrDuplicate))
			return
		}
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to save product: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Failed to save product", http.StatusInternalServerError)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Product created: %s", product.Slug))
	utils.RespondSuccess(w, http.StatusCreated, product)
}

func uploadProductImages(ctx context.Context, r *http.Request, logger *strings.Builder) ([]string, error) {
	var images []string
	if r.MultipartForm == nil {
		return images, nil
	}
	for _, fileHeader := range r.MultipartForm.File["images"] {
		contentType := fileHeader.Header.Get("Content-Type")
		if !utils.IsAllowedImageType(contentType) {
			return nil, fmt.Errorf("unsupported image type: %s", contentType)
		}
		file, err := fileHeader.Open()
		if err != nil {
			return nil, fmt.Errorf("error reading uploaded file")
		}
		objectKey := fmt.Sprintf("products/%d_%s", time.Now().UnixNano(), fileHeader.Filename)
		key, err := utils.UploadFileToS3(ctx, file, objectKey, contentType)
		file.Close()
		if err != nil {
			utils.AddToLogMessage(logger, fmt.Sprintf("S3 upload failed: %v", err))
			return nil, fmt.Errorf("failed to upload image")
		}
		images = append(images, key)
	}
	utils.AddToLogMessage(logger, fmt.Sprintf("Uploaded %d images", len(images)))
	return images, nil
}

// UpdateProductHandler handles PUT /admin/products/{id}. The slug is
// recomputed on rename and totalStock from the variants on every save.
func UpdateProductHandler(w http.ResponseWriter, r *http.Request, id string) {
	var logMessageBuilder strings.Builder
	defer func() {
		fmt.Println(logMessageBuilder.String())
	}()
	utils.AddToLogMessage(&logMessageBuilder, "[Update Product API]")

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid product id", http.StatusBadRequest)
		return
	}

	var req struct {
		Name         *string          `json:"name"`
		Description  *string          `json:"description"`
		Price        *float64         `json:"price"`
		ComparePrice *float64         `json:"comparePrice"`
		Brand        *string          `json:"brand"`
		Fabric       *string          `json:"fabric"`
		Tags         []string         `json:"tags"`
		Variants     []models.Variant `json:"variants"`
		IsActive     *bool            `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
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
	if req.Price != nil {
		if *req.Price <= 0 {
			utils.RespondError(w, &logMessageBuilder, "price must be a positive number", http.StatusBadRequest)
			return
		}
		update["price"] = *req.Price
	}
	if req.ComparePrice != nil {
		update["comparePrice"] = *req.ComparePrice
	}
	if req.Brand != nil {
		update["brand"] = *req.Brand
	}
	if req.Fabric != nil {
		update["fabric"] = *req.Fabric
	}
	if req.Tags != nil {
		update["tags"] = req.Tags
	}
	if req.IsActive != nil {
		update["isActive"] = *req.IsActive
	}
	if req.Variants != nil {
		for _, v := range req.Variants {
			if v.Size == "" || v.Color == "" || v.Stock < 0 {
				utils.RespondError(w, &logMessageBuilder, "Each variant needs a size, a color and non-negative stock", http.StatusBadRequest)
				return
			}
		}
		update["variants"] = req.Variants
		total := 0
		for _, v := range req.Variants {
			total += v.Stock
		}
		update["totalStock"] = total
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var updated models.Product
	err = productsCollection().FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondError(w, &logMessageBuilder, "Product not found", http.StatusNotFound)
		} else if utils.IsDuplicateKeyError(err) {
			utils.RespondError(w, &logMessageBuilder, "A product with this slug already exists", statusForError(models.ErrDuplicate))
		} else {
			utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Failed to update product: %v", err))
			utils.RespondError(w, &logMessageBuilder, "Failed to update product", http.StatusInternalServerError)
		}
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Product updated: %s", updated.Slug))
	utils.RespondSuccess(w, http.StatusOK, updated)
}

// DeleteProductHandler handles DELETE /admin/products/{id}: a soft delete,
// the document stays for order history.
func DeleteProductHandler(w http.ResponseWriter, r *http.Request, id string) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		utils.RespondError(w, nil, "Invalid product id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := productsCollection().UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		utils.RespondError(w, nil, "Failed to delete product", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		utils.RespondError(w, nil, "Product not found", http.StatusNotFound)
		return
	}

	utils.RespondSuccess(w, http.StatusOK, map[string]string{"message": "Product deactivated"})
}

// AdminProductsHandler routes /admin/products/{id} by method.
func AdminProductsHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/admin/products/")
	switch r.Method {
	case http.MethodPut:
		UpdateProductHandler(w, r, id)
	case http.MethodDelete:
		DeleteProductHandler(w, r, id)
	default:
		utils.RespondError(w, nil, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
