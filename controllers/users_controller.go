package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ursretail/ursbackend/database"
	"github.com/ursretail/ursbackend/dto"
	"github.com/ursretail/ursbackend/models"
	"github.com/ursretail/ursbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func MyProfile(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID, ok := callerID(c)
		if !ok {
			utils.Fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			utils.Fail(c, http.StatusNotFound, "User not found")
			return
		}

		utils.OK(c, http.StatusOK, gin.H{"user": user})
	}
}

// AddMyAddress appends a delivery address to the caller's address book.
func AddMyAddress(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID, ok := callerID(c)
		if !ok {
			utils.Fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		var body dto.AddressDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		address := addressFromDTO(body)
		res, err := db.Collection("users").UpdateByID(ctx, userID, bson.M{
			"$push": bson.M{"addresses": address},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		})
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.MatchedCount == 0 {
			utils.Fail(c, http.StatusNotFound, "User not found")
			return
		}

		utils.OK(c, http.StatusCreated, gin.H{
			"message": "Address added",
			"address": address,
		})
	}
}

// addressPosition resolves an address-book index from a route param against
// the caller's current address count.
func addressPosition(param string, count int) (int, *orderError) {
	idx, err := strconv.Atoi(param)
	if err != nil || idx < 0 {
		return 0, invalidRequest("invalid address index")
	}
	if idx >= count {
		return 0, &orderError{Status: http.StatusNotFound, Message: "address not found"}
	}
	return idx, nil
}

// UpdateMyAddress replaces one saved address in place, addressed by its
// position in the caller's address book.
func UpdateMyAddress(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := db.Collection("users")

		userID, ok := callerID(c)
		if !ok {
			utils.Fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		var body dto.AddressDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		var user models.User
		if err := usersCol.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			utils.Fail(c, http.StatusNotFound, "User not found")
			return
		}
		idx, oerr := addressPosition(c.Param("index"), len(user.Addresses))
		if oerr != nil {
			utils.Fail(c, oerr.Status, oerr.Message)
			return
		}

		address := addressFromDTO(body)
		_, err := usersCol.UpdateByID(ctx, userID, bson.M{
			"$set": bson.M{
				fmt.Sprintf("addresses.%d", idx): address,
				"updatedAt":                      time.Now().UTC(),
			},
		})
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		utils.OK(c, http.StatusOK, gin.H{
			"message": "Address updated",
			"address": address,
		})
	}
}

// DeleteMyAddress removes one saved address by position. Mongo cannot pull an
// array element by index directly, so the element is unset to null first and
// the null pulled out.
func DeleteMyAddress(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := db.Collection("users")

		userID, ok := callerID(c)
		if !ok {
			utils.Fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		var user models.User
		if err := usersCol.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			utils.Fail(c, http.StatusNotFound, "User not found")
			return
		}
		idx, oerr := addressPosition(c.Param("index"), len(user.Addresses))
		if oerr != nil {
			utils.Fail(c, oerr.Status, oerr.Message)
			return
		}

		_, err := usersCol.UpdateByID(ctx, userID, bson.M{
			"$unset": bson.M{fmt.Sprintf("addresses.%d", idx): 1},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		})
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		_, err = usersCol.UpdateByID(ctx, userID, bson.M{
			"$pull": bson.M{"addresses": nil},
		})
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		utils.OK(c, http.StatusOK, gin.H{"message": "Address deleted"})
	}
}

// ChangeMyPassword verifies the current password, rehashes the new one and
// revokes every outstanding refresh token so stale sessions drop off.
func ChangeMyPassword(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := db.Collection("users")

		userID, ok := callerID(c)
		if !ok {
			utils.Fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		var body dto.ChangeMyPasswordDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		var user models.User
		if err := usersCol.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			utils.Fail(c, http.StatusNotFound, "User not found")
			return
		}

		if err := utils.CheckPassword(user.PasswordHash, body.CurrentPassword); err != nil {
			utils.Fail(c, http.StatusUnauthorized, "current password is incorrect")
			return
		}

		hash, err := utils.HashPassword(body.NewPassword)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "failed to hash password")
			return
		}

		_, err = usersCol.UpdateByID(ctx, userID, bson.M{
			"$set": bson.M{"passwordHash": hash, "updatedAt": time.Now().UTC()},
		})
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		if err := RevokeAllRefreshTokens(ctx, db, userID); err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		clearRefreshCookie(c)

		utils.OK(c, http.StatusOK, gin.H{"message": "Password changed successfully"})
	}
}

func AdminListUsers(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		filter := bson.M{"role": models.RoleUser}
		if search := c.Query("search"); search != "" {
			rg := bson.M{"$regex": utils.EscapeRegex(search), "$options": "i"}
			filter["$or"] = bson.A{
				bson.M{"name": rg},
				bson.M{"mobileNumber": rg},
			}
		}

		maxLimit, defaultLimit := utils.GetDefaultQueryLimits()
		page := utils.ParseIntDefault(c.Query("page"), 1)
		if page < 1 {
			page = 1
		}
		limit := utils.ParseIntDefault(c.Query("limit"), defaultLimit)
		if limit < 1 || limit > maxLimit {
			limit = defaultLimit
		}

		opts := options.Find().
			SetSkip(int64((page - 1) * limit)).
			SetLimit(int64(limit)).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("users").Find(ctx, filter, opts)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		defer cursor.Close(ctx)

		users := make([]models.User, 0)
		if err := cursor.All(ctx, &users); err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		total, err := db.Collection("users").CountDocuments(ctx, filter)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		utils.OK(c, http.StatusOK, gin.H{
			"page":       page,
			"totalUsers": total,
			"users":      users,
		})
	}
}

func AdminGetUser(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid user id")
			return
		}

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
			utils.Fail(c, http.StatusNotFound, "User not found")
			return
		}

		utils.OK(c, http.StatusOK, gin.H{"user": user})
	}
}
