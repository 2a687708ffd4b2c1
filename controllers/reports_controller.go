package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ursretail/ursbackend/database"
	"github.com/ursretail/ursbackend/models"
	"github.com/ursretail/ursbackend/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// GetReport aggregates sales figures over an optional from/to date window.
// Cancelled orders are excluded from revenue and sales counts. An empty
// window is still a successful report with zero values.
func GetReport(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		dateFilter := createdAtWindow(c.Query("from"), c.Query("to"))

		orderFilter := bson.M{"status": bson.M{"$ne": models.OrderStatusCancelled}}
		userFilter := bson.M{"role": models.RoleUser}
		if len(dateFilter) > 0 {
			orderFilter["createdAt"] = dateFilter
			userFilter["createdAt"] = dateFilter
		}

		cursor, err := db.Collection("orders").Find(ctx, orderFilter)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		var revenue float64
		var productSales int
		buyers := make(map[string]struct{})
		for _, order := range orders {
			revenue += order.TotalAmount
			for _, line := range order.Products {
				productSales += line.Quantity
			}
			buyers[order.UserId.Hex()] = struct{}{}
		}

		registered, err := db.Collection("users").CountDocuments(ctx, userFilter)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		utils.OK(c, http.StatusOK, gin.H{
			"revenue":             revenue,
			"noOfOrders":          len(orders),
			"noOfProductSales":    productSales,
			"noOfUsersOrdered":    len(buyers),
			"noOfUsersRegistered": registered,
		})
	}
}
