package controllers

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ursretail/ursbackend/database"
	"github.com/ursretail/ursbackend/dto"
	"github.com/ursretail/ursbackend/models"
	"github.com/ursretail/ursbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const productPageSize = 20

// productCardProjection trims listings down to what product cards need.
var productCardProjection = bson.M{
	"_id":                    1,
	"name":                   1,
	"brand":                  1,
	"categoryId":             1,
	"thumbnail":              1,
	"variants._id":           1,
	"variants.stock":         1,
	"variants.mrp":           1,
	"variants.sellingPrices": 1,
}

type productSearchParams struct {
	Search   string
	Brands   []string
	Tags     []string
	MinPrice *float64
	MaxPrice *float64
	InStock  bool
}

func splitCSV(v string) []string {
	parts := make([]string, 0)
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func parseProductSearchParams(c *gin.Context) productSearchParams {
	params := productSearchParams{
		Search:  strings.TrimSpace(c.Query("search")),
		Brands:  splitCSV(c.Query("brand")),
		Tags:    splitCSV(c.Query("tags")),
		InStock: c.Query("inStock") == "true",
	}
	if v := c.Query("minPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.MinPrice = &f
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			params.MaxPrice = &f
		}
	}
	return params
}

// buildProductSearchFilter translates the listing query into a Mongo filter.
// A free-text search takes a regex across the display fields; otherwise the
// structured filters apply.
func buildProductSearchFilter(params productSearchParams) bson.M {
	filter := bson.M{"isActive": bson.M{"$ne": false}}

	if params.Search != "" {
		rg := bson.M{"$regex": utils.EscapeRegex(params.Search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"name": rg},
			bson.M{"brand": rg},
			bson.M{"tags": rg},
			bson.M{"description": rg},
			bson.M{"slug": rg},
		}
		return filter
	}

	if len(params.Brands) > 0 {
		filter["brand"] = bson.M{"$in": params.Brands}
	}
	if len(params.Tags) > 0 {
		filter["tags"] = bson.M{"$in": params.Tags}
	}
	if params.InStock {
		filter["variants.stock"] = bson.M{"$gt": 0}
	}

	priceFilter := bson.M{}
	if params.MinPrice != nil {
		priceFilter["$gte"] = *params.MinPrice
	}
	if params.MaxPrice != nil {
		priceFilter["$lte"] = *params.MaxPrice
	}
	if len(priceFilter) > 0 {
		filter["variants.sellingPrices"] = bson.M{"$elemMatch": bson.M{"price": priceFilter}}
	}
	return filter
}

func listProductCards(c *gin.Context, col *mongo.Collection, filter bson.M) {
	ctx := c.Request.Context()

	page := utils.ParseIntDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	skip := int64((page - 1) * productPageSize)

	findOpts := options.Find().
		SetSkip(skip).
		SetLimit(productPageSize).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(productCardProjection)

	cursor, err := col.Find(ctx, filter, findOpts)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		utils.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		utils.Fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	totalPages := (total + productPageSize - 1) / productPageSize
	if totalPages < 1 {
		totalPages = 1
	}

	utils.OK(c, http.StatusOK, gin.H{
		"page":          page,
		"limit":         productPageSize,
		"totalProducts": total,
		"totalPages":    totalPages,
		"hasNextPage":   int64(page) < totalPages,
		"products":      products,
	})
}

// SearchProducts serves the public filtered/sorted/paginated listing.
func SearchProducts(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := buildProductSearchFilter(parseProductSearchParams(c))
		listProductCards(c, db.Collection("products"), filter)
	}
}

// ProductsByCategory lists products under a category or any of its
// descendants, expanded through the materialized path.
func ProductsByCategory(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		categoryID, err := bson.ObjectIDFromHex(c.Param("categoryId"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid categoryId")
			return
		}

		ids, err := categoryAndDescendantIDs(ctx, db, categoryID)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		filter := bson.M{
			"isActive":   bson.M{"$ne": false},
			"categoryId": bson.M{"$in": ids},
		}
		listProductCards(c, db.Collection("products"), filter)
	}
}

const (
	similarLimit    = 10
	suggestionLimit = 10
)

// SimilarProducts lists other active products from the same category subtree,
// for the "you may also like" strip on a product page. An `exclude` query
// keeps the product being viewed out of its own suggestions.
func SimilarProducts(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		categoryID, err := bson.ObjectIDFromHex(c.Param("categoryId"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid categoryId")
			return
		}

		ids, err := categoryAndDescendantIDs(ctx, db, categoryID)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		filter := bson.M{
			"isActive":   bson.M{"$ne": false},
			"categoryId": bson.M{"$in": ids},
		}
		if exclude := c.Query("exclude"); exclude != "" {
			excludeID, err := bson.ObjectIDFromHex(exclude)
			if err != nil {
				utils.Fail(c, http.StatusBadRequest, "invalid exclude id")
				return
			}
			filter["_id"] = bson.M{"$ne": excludeID}
		}

		opts := options.Find().
			SetLimit(similarLimit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetProjection(productCardProjection)

		cursor, err := db.Collection("products").Find(ctx, filter, opts)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		utils.OK(c, http.StatusOK, gin.H{"products": products})
	}
}

// suggestionFilter anchors the typed prefix so the index on name can serve
// autocomplete; free-floating matches belong to the full search endpoint.
func suggestionFilter(term string) bson.M {
	rg := bson.M{"$regex": "^" + utils.EscapeRegex(term), "$options": "i"}
	return bson.M{
		"isActive": bson.M{"$ne": false},
		"$or": bson.A{
			bson.M{"name": rg},
			bson.M{"brand": rg},
			bson.M{"tags": rg},
		},
	}
}

// SearchSuggestions serves autocomplete: a short list of name/slug/thumbnail
// entries matching the typed prefix.
func SearchSuggestions(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		term := strings.TrimSpace(c.Query("search"))
		if term == "" {
			utils.OK(c, http.StatusOK, gin.H{"suggestions": []gin.H{}})
			return
		}

		opts := options.Find().
			SetLimit(suggestionLimit).
			SetSort(bson.D{{Key: "name", Value: 1}}).
			SetProjection(bson.M{"_id": 1, "name": 1, "slug": 1, "brand": 1, "thumbnail": 1})

		cursor, err := db.Collection("products").Find(ctx, suggestionFilter(term), opts)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		suggestions := make([]gin.H, 0, len(products))
		for _, p := range products {
			suggestions = append(suggestions, gin.H{
				"id":        p.Id,
				"name":      p.Name,
				"slug":      p.Slug,
				"brand":     p.Brand,
				"thumbnail": p.Thumbnail,
			})
		}

		utils.OK(c, http.StatusOK, gin.H{"suggestions": suggestions})
	}
}

func GetProduct(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid product id")
			return
		}

		var product models.Product
		err = db.Collection("products").FindOne(ctx, bson.M{
			"_id":      id,
			"isActive": bson.M{"$ne": false},
		}).Decode(&product)
		if err != nil {
			utils.Fail(c, http.StatusNotFound, "No Product Found")
			return
		}

		utils.OK(c, http.StatusOK, gin.H{"product": product})
	}
}

// AdminListProducts is the listing without the public isActive restriction.
func AdminListProducts(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := buildProductSearchFilter(parseProductSearchParams(c))
		if b, err := utils.ParseBoolQuery(c.Query("isActive")); err == nil && b != nil {
			filter["isActive"] = *b
		} else {
			delete(filter, "isActive")
		}

		// categoryId accepts a comma-separated list; each entry expands to
		// its whole subtree.
		if cids := splitCSV(c.Query("categoryId")); len(cids) > 0 {
			categoryIDs, err := utils.StringsToObjectIDs(cids)
			if err != nil {
				utils.Fail(c, http.StatusBadRequest, "invalid categoryId")
				return
			}
			seen := make(map[bson.ObjectID]struct{})
			all := make([]bson.ObjectID, 0)
			for _, categoryID := range categoryIDs {
				ids, err := categoryAndDescendantIDs(c.Request.Context(), db, categoryID)
				if err != nil {
					utils.Fail(c, http.StatusInternalServerError, err.Error())
					return
				}
				for _, id := range ids {
					if _, ok := seen[id]; !ok {
						seen[id] = struct{}{}
						all = append(all, id)
					}
				}
			}
			filter["categoryId"] = bson.M{"$in": all}
		}

		listProductCards(c, db.Collection("products"), filter)
	}
}

func AdminGetProduct(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid product id")
			return
		}

		var product models.Product
		if err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
			utils.Fail(c, http.StatusNotFound, "No Product Found")
			return
		}

		utils.OK(c, http.StatusOK, gin.H{"product": product})
	}
}

func variantsFromDTO(in []dto.VariantDTO) ([]models.Variant, *orderError) {
	variants := make([]models.Variant, 0, len(in))
	for _, v := range in {
		if len(v.SellingPrices) == 0 {
			return nil, invalidRequest("each variant must have at least one selling price tier")
		}
		tiers := make([]models.PriceTier, 0, len(v.SellingPrices))
		for _, t := range v.SellingPrices {
			if t.MinQuantity < 1 {
				return nil, invalidRequest("tier minQuantity must be at least 1")
			}
			if t.Price < 0 || t.Discount < 0 || t.Discount > 100 {
				return nil, invalidRequest("invalid selling price tier")
			}
			tiers = append(tiers, models.PriceTier{
				MinQuantity: t.MinQuantity,
				Price:       t.Price,
				Discount:    t.Discount,
			})
		}

		packOf := v.PackOf
		if packOf < 1 {
			packOf = 1
		}
		if v.MRP < 0 || v.Stock < 0 {
			return nil, invalidRequest("mrp and stock must not be negative")
		}

		variant := models.Variant{
			Id:            bson.NewObjectID(),
			PackOf:        packOf,
			Expiry:        v.Expiry,
			MRP:           v.MRP,
			Stock:         v.Stock,
			IsActive:      true,
			Images:        []models.Image{},
			SellingPrices: tiers,
		}
		if v.IsActive != nil {
			variant.IsActive = *v.IsActive
		}
		if v.Measurement != nil {
			variant.Measurement = &models.VariantMeasurement{
				Value: v.Measurement.Value,
				Unit:  v.Measurement.Unit,
				Label: v.Measurement.Label,
			}
		}
		variants = append(variants, variant)
	}
	return variants, nil
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func variantImageFiles(form *multipart.Form, idx int) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	return form.File[fmt.Sprintf("variantImages_%d", idx)]
}

// AddProduct creates a product from a multipart form: a "data" JSON payload,
// a required "thumbnail" file and optional "variantImages_<idx>" files.
func AddProduct(db *database.DB, v *utils.FileValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		productsCol := db.Collection("products")

		jsonData := c.PostForm("data")
		if jsonData == "" {
			utils.Fail(c, http.StatusBadRequest, "missing data")
			return
		}

		var body dto.CreateProductDTO
		if err := json.Unmarshal([]byte(jsonData), &body); err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid data json")
			return
		}

		if body.Name == "" || body.Brand == "" || body.CategoryID == "" || body.DeliveryOption == nil {
			utils.Fail(c, http.StatusBadRequest, "name, brand, categoryId and deliveryOption are required")
			return
		}
		if len(body.Variants) == 0 {
			utils.Fail(c, http.StatusBadRequest, "at least one variant is required")
			return
		}

		categoryID, err := bson.ObjectIDFromHex(body.CategoryID)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid categoryId")
			return
		}
		err = db.Collection("categories").FindOne(ctx, bson.M{"_id": categoryID, "isActive": true}).Err()
		if err != nil {
			utils.Fail(c, http.StatusNotFound, "Category not found or inactive")
			return
		}

		variants, oerr := variantsFromDTO(body.Variants)
		if oerr != nil {
			utils.Fail(c, oerr.Status, oerr.Message)
			return
		}

		slug := strings.ToLower(strings.TrimSpace(body.Slug))
		if slug == "" {
			slug = utils.GenerateSlug(body.Name)
		}

		form, err := c.MultipartForm()
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid multipart form")
			return
		}

		thumbFiles := form.File["thumbnail"]
		if len(thumbFiles) == 0 {
			utils.Fail(c, http.StatusBadRequest, "thumbnail image is required")
			return
		}
		if _, err := v.ValidateFile(thumbFiles[0]); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		for i := range variants {
			for _, fh := range variantImageFiles(form, i) {
				if _, err := v.ValidateFile(fh); err != nil {
					utils.Fail(c, http.StatusBadRequest, err.Error())
					return
				}
			}
		}

		gcsClient, bucket, err := utils.NewGCSClient(ctx)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "failed to create storage client")
			return
		}
		defer gcsClient.Close()

		thumbnail, err := utils.UploadImageToGCS(ctx, gcsClient, bucket, "urs/thumbnails", thumbFiles[0])
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		uploaded := []string{thumbnail.PublicId}

		for i := range variants {
			images, err := utils.UploadImagesToGCS(ctx, gcsClient, bucket, "urs/products/"+slug, variantImageFiles(form, i))
			if err != nil {
				_ = utils.DeleteGCSObjects(ctx, gcsClient, bucket, uploaded)
				utils.Fail(c, http.StatusInternalServerError, err.Error())
				return
			}
			for _, img := range images {
				uploaded = append(uploaded, img.PublicId)
			}
			variants[i].Images = images
		}

		now := time.Now().UTC()
		product := models.Product{
			Id:          bson.NewObjectID(),
			Name:        strings.TrimSpace(body.Name),
			Slug:        slug,
			Brand:       strings.TrimSpace(body.Brand),
			CategoryId:  categoryID,
			Tags:        dedupeTags(body.Tags),
			Description: body.Description,
			DeliveryOption: models.DeliveryOption{
				IsCancel:     body.DeliveryOption.IsCancel,
				IsReturnable: body.DeliveryOption.IsReturnable,
				IsWarranty:   body.DeliveryOption.IsWarranty,
			},
			Thumbnail: *thumbnail,
			Variants:  variants,
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if body.IsActive != nil {
			product.IsActive = *body.IsActive
		}

		if _, err := productsCol.InsertOne(ctx, product); err != nil {
			_ = utils.DeleteGCSObjects(ctx, gcsClient, bucket, uploaded)
			if utils.IsDuplicateKey(err) {
				utils.Fail(c, http.StatusConflict, "slug already exists")
				return
			}
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		utils.OK(c, http.StatusCreated, gin.H{
			"message": "Product created",
			"product": product,
		})
	}
}

// UpdateProduct applies a partial update from the same multipart shape as
// AddProduct. Replaced images are only deleted from storage after the
// database write succeeds; freshly uploaded ones are deleted if it fails.
func UpdateProduct(db *database.DB, v *utils.FileValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		productsCol := db.Collection("products")

		prodID, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid product id")
			return
		}

		dataStr := c.PostForm("data")
		if dataStr == "" {
			utils.Fail(c, http.StatusBadRequest, "missing data")
			return
		}
		var body dto.UpdateProductDTO
		if err := json.Unmarshal([]byte(dataStr), &body); err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid data json")
			return
		}

		var product models.Product
		if err := productsCol.FindOne(ctx, bson.M{"_id": prodID}).Decode(&product); err != nil {
			utils.Fail(c, http.StatusNotFound, "No Product Found")
			return
		}

		set := bson.M{}
		if body.Name != nil {
			if strings.TrimSpace(*body.Name) == "" {
				utils.Fail(c, http.StatusBadRequest, "name cannot be empty")
				return
			}
			set["name"] = strings.TrimSpace(*body.Name)
		}
		if body.Slug != nil {
			if strings.TrimSpace(*body.Slug) == "" {
				utils.Fail(c, http.StatusBadRequest, "slug cannot be empty")
				return
			}
			set["slug"] = strings.ToLower(strings.TrimSpace(*body.Slug))
		}
		if body.Brand != nil {
			if strings.TrimSpace(*body.Brand) == "" {
				utils.Fail(c, http.StatusBadRequest, "brand cannot be empty")
				return
			}
			set["brand"] = strings.TrimSpace(*body.Brand)
		}
		if body.CategoryID != nil {
			categoryID, err := bson.ObjectIDFromHex(*body.CategoryID)
			if err != nil {
				utils.Fail(c, http.StatusBadRequest, "invalid categoryId")
				return
			}
			err = db.Collection("categories").FindOne(ctx, bson.M{"_id": categoryID, "isActive": true}).Err()
			if err != nil {
				utils.Fail(c, http.StatusNotFound, "Category not found or inactive")
				return
			}
			set["categoryId"] = categoryID
		}
		if body.Tags != nil {
			set["tags"] = dedupeTags(*body.Tags)
		}
		if body.Description != nil {
			set["description"] = *body.Description
		}
		if body.DeliveryOption != nil {
			set["deliveryOption"] = models.DeliveryOption{
				IsCancel:     body.DeliveryOption.IsCancel,
				IsReturnable: body.DeliveryOption.IsReturnable,
				IsWarranty:   body.DeliveryOption.IsWarranty,
			}
		}
		if body.IsActive != nil {
			set["isActive"] = *body.IsActive
		}

		form, _ := c.MultipartForm()

		gcsClient, bucket, err := utils.NewGCSClient(ctx)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "failed to create storage client")
			return
		}
		defer gcsClient.Close()

		uploaded := []string{}  // for cleanup if the DB update fails
		toDelete := []string{}  // deleted after the DB update succeeds
		deletedSet := make(map[string]struct{}, len(body.DeletedImages))
		for _, id := range body.DeletedImages {
			deletedSet[id] = struct{}{}
		}

		// Replacement thumbnail
		if form != nil && len(form.File["thumbnail"]) > 0 {
			fh := form.File["thumbnail"][0]
			if _, err := v.ValidateFile(fh); err != nil {
				utils.Fail(c, http.StatusBadRequest, err.Error())
				return
			}
			thumbnail, err := utils.UploadImageToGCS(ctx, gcsClient, bucket, "urs/thumbnails", fh)
			if err != nil {
				utils.Fail(c, http.StatusInternalServerError, err.Error())
				return
			}
			uploaded = append(uploaded, thumbnail.PublicId)
			if product.Thumbnail.PublicId != "" {
				toDelete = append(toDelete, product.Thumbnail.PublicId)
			}
			set["thumbnail"] = *thumbnail
		}

		if body.Variants != nil {
			if len(*body.Variants) == 0 {
				utils.Fail(c, http.StatusBadRequest, "at least one variant is required")
				return
			}
			variants, oerr := variantsFromDTO(*body.Variants)
			if oerr != nil {
				utils.Fail(c, oerr.Status, oerr.Message)
				return
			}

			slug := product.Slug
			if s, ok := set["slug"].(string); ok {
				slug = s
			}

			for i := range variants {
				// Keep the stable variant id and surviving images when the
				// incoming variant lines up with an existing one.
				if i < len(product.Variants) {
					existing := product.Variants[i]
					variants[i].Id = existing.Id
					kept := make([]models.Image, 0, len(existing.Images))
					for _, img := range existing.Images {
						if _, gone := deletedSet[img.PublicId]; gone {
							toDelete = append(toDelete, img.PublicId)
							continue
						}
						kept = append(kept, img)
					}
					variants[i].Images = kept
				}

				files := variantImageFiles(form, i)
				for _, fh := range files {
					if _, err := v.ValidateFile(fh); err != nil {
						_ = utils.DeleteGCSObjects(ctx, gcsClient, bucket, uploaded)
						utils.Fail(c, http.StatusBadRequest, err.Error())
						return
					}
				}
				images, err := utils.UploadImagesToGCS(ctx, gcsClient, bucket, "urs/products/"+slug, files)
				if err != nil {
					_ = utils.DeleteGCSObjects(ctx, gcsClient, bucket, uploaded)
					utils.Fail(c, http.StatusInternalServerError, err.Error())
					return
				}
				for _, img := range images {
					uploaded = append(uploaded, img.PublicId)
				}
				variants[i].Images = append(variants[i].Images, images...)
			}
			set["variants"] = variants
		}

		if len(set) == 0 {
			utils.Fail(c, http.StatusBadRequest, "no updates provided")
			return
		}
		set["updatedAt"] = time.Now().UTC()

		if _, err := productsCol.UpdateByID(ctx, prodID, bson.M{"$set": set}); err != nil {
			_ = utils.DeleteGCSObjects(ctx, gcsClient, bucket, uploaded)
			if utils.IsDuplicateKey(err) {
				utils.Fail(c, http.StatusConflict, "slug already exists")
				return
			}
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		if len(toDelete) > 0 {
			_ = utils.DeleteGCSObjects(ctx, gcsClient, bucket, toDelete)
		}

		utils.OK(c, http.StatusOK, gin.H{"message": "Product updated"})
	}
}

func DeleteProduct(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid product id")
			return
		}

		res, err := db.Collection("products").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.DeletedCount == 0 {
			utils.Fail(c, http.StatusNotFound, "Product not found")
			return
		}

		utils.OK(c, http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
}

// UpdateStock adjusts a variant's stock by a signed delta through one
// conditional positional update; a negative adjustment larger than the
// current stock matches nothing and is rejected.
func UpdateStock(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.UpdateStockDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		prodID, err := bson.ObjectIDFromHex(body.ProductID)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid productId")
			return
		}
		variantID, err := bson.ObjectIDFromHex(body.VariantID)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid variantId")
			return
		}

		minStock := 0
		if body.Stock < 0 {
			minStock = -body.Stock
		}

		res, err := db.Collection("products").UpdateOne(ctx,
			bson.M{
				"_id": prodID,
				"variants": bson.M{"$elemMatch": bson.M{
					"_id":   variantID,
					"stock": bson.M{"$gte": minStock},
				}},
			},
			bson.M{"$inc": bson.M{"variants.$.stock": body.Stock}},
		)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.MatchedCount == 0 {
			var product models.Product
			if err := db.Collection("products").FindOne(ctx, bson.M{"_id": prodID}).Decode(&product); err != nil {
				utils.Fail(c, http.StatusNotFound, "Product Not Found with this ID")
				return
			}
			variant, ok := product.VariantByID(variantID)
			if !ok {
				utils.Fail(c, http.StatusNotFound, "No Variant Found for this Product")
				return
			}
			utils.Fail(c, http.StatusBadRequest,
				fmt.Sprintf("stock cannot go below zero: current %d, adjustment %d", variant.Stock, body.Stock))
			return
		}

		utils.OK(c, http.StatusOK, gin.H{"message": fmt.Sprintf("Stock adjusted by %d", body.Stock)})
	}
}
