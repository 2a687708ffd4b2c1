package controllers

import (
	"context"
	"net/http"
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

// siblingNameFilter matches a category name case-insensitively among the
// siblings under one parent at one level. The anchored, escaped regex is the
// duplicate check; names are unique per (parent, level) regardless of case.
func siblingNameFilter(name string, parent *bson.ObjectID, level int) bson.M {
	filter := bson.M{
		"level": level,
		"name":  bson.M{"$regex": "^" + utils.EscapeRegex(strings.TrimSpace(name)) + "$", "$options": "i"},
	}
	if parent != nil {
		filter["parent"] = *parent
	} else {
		filter["parent"] = nil
	}
	return filter
}

func hasDuplicateSibling(ctx context.Context, col *mongo.Collection, name string, parent *bson.ObjectID, level int) (bool, error) {
	err := col.FindOne(ctx, siblingNameFilter(name, parent, level)).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// categoryListFilter is the public read filter: deactivated nodes are never
// listed, they only stay resolvable by id for existing product references.
func categoryListFilter(level int) bson.M {
	return bson.M{"level": level, "isActive": true}
}

func listCategories(db *database.DB, level int, parentParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		col := db.Collection("categories")

		filter := categoryListFilter(level)

		if parentParam != "" {
			parentID, err := bson.ObjectIDFromHex(c.Param(parentParam))
			if err != nil {
				utils.Fail(c, http.StatusBadRequest, "invalid category id")
				return
			}
			filter["parent"] = parentID
		}

		opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
		cursor, err := col.Find(ctx, filter, opts)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		defer cursor.Close(ctx)

		items := make([]models.Category, 0)
		if err := cursor.All(ctx, &items); err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		utils.OK(c, http.StatusOK, gin.H{"data": items})
	}
}

// GetCategories lists active root categories.
func GetCategories(db *database.DB) gin.HandlerFunc {
	return listCategories(db, models.CategoryLevelRoot, "")
}

// GetSubCategories lists active children of a root category.
func GetSubCategories(db *database.DB) gin.HandlerFunc {
	return listCategories(db, models.CategoryLevelSub, "categoryId")
}

// GetSubSubCategories lists active children of a sub-category.
func GetSubSubCategories(db *database.DB) gin.HandlerFunc {
	return listCategories(db, models.CategoryLevelSubSub, "subCategoryId")
}

func AddCategory(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		col := db.Collection("categories")

		var body dto.CreateCategoryDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		name := strings.TrimSpace(body.Name)
		if name == "" {
			utils.Fail(c, http.StatusBadRequest, "name is required")
			return
		}

		dup, err := hasDuplicateSibling(ctx, col, name, nil, models.CategoryLevelRoot)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		if dup {
			utils.Fail(c, http.StatusConflict, "Category already exists")
			return
		}

		now := time.Now().UTC()
		doc := models.Category{
			Id:        bson.NewObjectID(),
			Name:      name,
			ParentId:  nil,
			Level:     models.CategoryLevelRoot,
			Path:      []bson.ObjectID{},
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if _, err := col.InsertOne(ctx, doc); err != nil {
			if utils.IsDuplicateKey(err) {
				utils.Fail(c, http.StatusConflict, "Category already exists")
				return
			}
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		utils.OK(c, http.StatusCreated, gin.H{"data": doc})
	}
}

func addChildCategory(db *database.DB, param string, childLevel int, kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		col := db.Collection("categories")

		parentID, err := bson.ObjectIDFromHex(c.Param(param))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid parent category id")
			return
		}

		var body dto.CreateCategoryDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		name := strings.TrimSpace(body.Name)
		if name == "" {
			utils.Fail(c, http.StatusBadRequest, "name is required")
			return
		}

		var parent models.Category
		if err := col.FindOne(ctx, bson.M{"_id": parentID}).Decode(&parent); err != nil {
			utils.Fail(c, http.StatusNotFound, "Parent category not found")
			return
		}
		if parent.Level != childLevel-1 {
			utils.Fail(c, http.StatusBadRequest, "parent category has wrong level")
			return
		}

		dup, err := hasDuplicateSibling(ctx, col, name, &parentID, childLevel)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		if dup {
			utils.Fail(c, http.StatusConflict, kind+" already exists")
			return
		}

		now := time.Now().UTC()
		doc := models.Category{
			Id:        bson.NewObjectID(),
			Name:      name,
			ParentId:  &parentID,
			Level:     childLevel,
			Path:      parent.ChildPath(),
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if _, err := col.InsertOne(ctx, doc); err != nil {
			if utils.IsDuplicateKey(err) {
				utils.Fail(c, http.StatusConflict, kind+" already exists")
				return
			}
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		utils.OK(c, http.StatusCreated, gin.H{"data": doc})
	}
}

func AddSubCategory(db *database.DB) gin.HandlerFunc {
	return addChildCategory(db, "categoryId", models.CategoryLevelSub, "Sub-category")
}

func AddSubSubCategory(db *database.DB) gin.HandlerFunc {
	return addChildCategory(db, "subCategoryId", models.CategoryLevelSubSub, "Sub-sub-category")
}

// UpdateCategory renames or (de)activates a node. Categories are never hard
// deleted because products hold references by id.
func UpdateCategory(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		col := db.Collection("categories")

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid category id")
			return
		}

		var body dto.UpdateCategoryDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		set := bson.M{}
		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				utils.Fail(c, http.StatusBadRequest, "name cannot be empty")
				return
			}

			var current models.Category
			if err := col.FindOne(ctx, bson.M{"_id": id}).Decode(&current); err != nil {
				utils.Fail(c, http.StatusNotFound, "category not found")
				return
			}
			filter := siblingNameFilter(name, current.ParentId, current.Level)
			filter["_id"] = bson.M{"$ne": id}
			if err := col.FindOne(ctx, filter).Err(); err == nil {
				utils.Fail(c, http.StatusConflict, "Category already exists")
				return
			}
			set["name"] = name
		}
		if body.IsActive != nil {
			set["isActive"] = *body.IsActive
		}

		if len(set) == 0 {
			utils.Fail(c, http.StatusBadRequest, "no updates provided")
			return
		}
		set["updatedAt"] = time.Now().UTC()

		res, err := col.UpdateByID(ctx, id, bson.M{"$set": set})
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.MatchedCount == 0 {
			utils.Fail(c, http.StatusNotFound, "category not found")
			return
		}

		utils.OK(c, http.StatusOK, gin.H{"message": "Category updated"})
	}
}

// categoryAndDescendantIDs resolves a category plus every descendant through
// the materialized path, without recursive traversal.
func categoryAndDescendantIDs(ctx context.Context, db *database.DB, id bson.ObjectID) ([]bson.ObjectID, error) {
	cursor, err := db.Collection("categories").Find(ctx,
		bson.M{"$or": bson.A{bson.M{"_id": id}, bson.M{"path": id}}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ids := make([]bson.ObjectID, 0)
	for cursor.Next(ctx) {
		var row struct {
			Id bson.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.Id)
	}
	return ids, cursor.Err()
}
