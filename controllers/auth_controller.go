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
)

func Register(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RegisterDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		usersCol := db.Collection("users")
		mobile := strings.TrimSpace(body.MobileNumber)

		hash, err := utils.HashPassword(body.Password)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "failed to hash password")
			return
		}

		now := time.Now().UTC()
		user := models.User{
			ID:           bson.NewObjectID(),
			Name:         strings.TrimSpace(body.Name),
			MobileNumber: mobile,
			PasswordHash: hash,
			Role:         models.RoleUser,
			Addresses:    []models.Address{},
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if _, err := usersCol.InsertOne(c.Request.Context(), user); err != nil {
			if utils.IsDuplicateKey(err) {
				utils.Fail(c, http.StatusConflict, "account with this mobile number already exists")
				return
			}
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		utils.OK(c, http.StatusCreated, gin.H{"message": "Account Created Successfully", "id": user.ID})
	}
}

func Login(db *database.DB) gin.HandlerFunc {
	return login(db, "")
}

// AdminLogin is Login restricted to admin accounts.
func AdminLogin(db *database.DB) gin.HandlerFunc {
	return login(db, models.RoleAdmin)
}

func login(db *database.DB, requiredRole models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		usersCol := db.Collection("users")

		var user models.User
		if err := usersCol.FindOne(c.Request.Context(), bson.M{"mobileNumber": strings.TrimSpace(body.MobileNumber)}).Decode(&user); err != nil {
			utils.Fail(c, http.StatusUnauthorized, "invalid mobile number or password")
			return
		}
		if err := utils.CheckPassword(user.PasswordHash, body.Password); err != nil {
			utils.Fail(c, http.StatusUnauthorized, "invalid mobile number or password")
			return
		}
		if !user.IsActive {
			utils.Fail(c, http.StatusForbidden, "account disabled")
			return
		}
		if requiredRole != "" && user.Role != requiredRole {
			utils.Fail(c, http.StatusForbidden, "Access denied. Admins only.")
			return
		}

		accessToken, err := utils.GenerateAccessToken(user.ID.Hex(), user.MobileNumber, string(user.Role), utils.AccessTTL())
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "failed to generate access token")
			return
		}
		refreshToken, err := utils.GenerateRefreshToken(user.ID.Hex())
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "failed to generate refresh token")
			return
		}

		now := time.Now().UTC()
		refreshCol := db.Collection("refresh_tokens")
		if _, err := refreshCol.InsertOne(c.Request.Context(), models.RefreshToken{
			UserID:    user.ID,
			TokenHash: utils.HashToken(refreshToken),
			ExpiresAt: now.Add(utils.RefreshTTL()),
			CreatedAt: now,
		}); err != nil {
			utils.Fail(c, http.StatusInternalServerError, "failed to store refresh token")
			return
		}

		setRefreshCookie(c, refreshToken)
		utils.OK(c, http.StatusOK, gin.H{"access_token": accessToken})
	}
}

func Refresh(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		usersCol := db.Collection("users")
		refreshCol := db.Collection("refresh_tokens")

		token, err := c.Cookie("refreshToken")
		if err != nil || token == "" {
			utils.Fail(c, http.StatusUnauthorized, "missing refresh token")
			return
		}

		var rt models.RefreshToken
		err = refreshCol.FindOne(ctx, bson.M{
			"tokenHash": utils.HashToken(token),
			"revokedAt": bson.M{"$exists": false},
			"expiresAt": bson.M{"$gt": time.Now().UTC()},
		}).Decode(&rt)
		if err != nil {
			utils.Fail(c, http.StatusUnauthorized, "invalid refresh token")
			return
		}

		var user models.User
		if err := usersCol.FindOne(ctx, bson.M{"_id": rt.UserID}).Decode(&user); err != nil {
			utils.Fail(c, http.StatusUnauthorized, "invalid user")
			return
		}
		if !user.IsActive {
			utils.Fail(c, http.StatusForbidden, "account disabled")
			return
		}

		// Rotate refresh token
		newToken, err := utils.GenerateRefreshToken(user.ID.Hex())
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "failed to rotate refresh token")
			return
		}
		newHash := utils.HashToken(newToken)

		now := time.Now().UTC()
		_, err = refreshCol.UpdateByID(ctx, rt.ID, bson.M{
			"$set": bson.M{
				"revokedAt":  now,
				"replacedBy": newHash,
			},
		})
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "failed to revoke refresh token")
			return
		}

		_, err = refreshCol.InsertOne(ctx, models.RefreshToken{
			UserID:    user.ID,
			TokenHash: newHash,
			ExpiresAt: now.Add(utils.RefreshTTL()),
			CreatedAt: now,
		})
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "failed to store refresh token")
			return
		}

		accessToken, err := utils.GenerateAccessToken(user.ID.Hex(), user.MobileNumber, string(user.Role), utils.AccessTTL())
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, "failed to generate access token")
			return
		}

		setRefreshCookie(c, newToken)
		utils.OK(c, http.StatusOK, gin.H{"access_token": accessToken})
	}
}

func Logout(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		refreshCol := db.Collection("refresh_tokens")

		token, _ := c.Cookie("refreshToken")
		clearRefreshCookie(c)

		// best effort revoke
		if token != "" {
			now := time.Now().UTC()
			_, _ = refreshCol.UpdateOne(ctx, bson.M{
				"tokenHash": utils.HashToken(token),
				"revokedAt": bson.M{"$exists": false},
			}, bson.M{
				"$set": bson.M{"revokedAt": now},
			})
		}

		utils.OK(c, http.StatusOK, gin.H{"message": "Logout successful"})
	}
}

func RevokeAllRefreshTokens(ctx context.Context, db *database.DB, userID bson.ObjectID) error {
	refreshCol := db.Collection("refresh_tokens")
	now := time.Now().UTC()
	_, err := refreshCol.UpdateMany(ctx, bson.M{
		"userId":    userID,
		"revokedAt": bson.M{"$exists": false},
	}, bson.M{
		"$set": bson.M{"revokedAt": now},
	})
	return err
}

func setRefreshCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "refreshToken",
		Value:    token,
		Path:     "/",
		MaxAge:   int(utils.RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode, // for cross-site
	})
}

func clearRefreshCookie(c *gin.Context) {
	c.SetCookie("refreshToken", "", -1, "/", "", true, true)
}
