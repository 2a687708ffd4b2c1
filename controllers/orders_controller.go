package controllers

import (
	"context"
	"net/http"
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

func callerID(c *gin.Context) (bson.ObjectID, bool) {
	idStr, ok := c.Get("userID")
	if !ok {
		return bson.ObjectID{}, false
	}
	id, err := bson.ObjectIDFromHex(idStr.(string))
	if err != nil {
		return bson.ObjectID{}, false
	}
	return id, true
}

// PlaceOrder validates the cart, snapshots tier prices, persists the order
// and then applies one conditional stock decrement per line. A decrement that
// matches zero documents means another placement won the stock in between;
// the order is rolled back and the failing line reported.
func PlaceOrder(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID, ok := callerID(c)
		if !ok {
			utils.Fail(c, http.StatusUnauthorized, "Please login to access this resource")
			return
		}

		var body dto.PlaceOrderDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		lines, oerr := parseOrderLines(body.Products)
		if oerr != nil {
			utils.Fail(c, oerr.Status, oerr.Message)
			return
		}
		if oerr := validateAddress(body.Address); oerr != nil {
			utils.Fail(c, oerr.Status, oerr.Message)
			return
		}

		usersCol := db.Collection("users")
		var user models.User
		if err := usersCol.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			utils.Fail(c, http.StatusUnauthorized, "invalid user")
			return
		}

		productsCol := db.Collection("products")
		products, err := loadProducts(ctx, productsCol, lines)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		orderLines, total, oerr := buildOrderLines(products, lines)
		if oerr != nil {
			utils.Fail(c, oerr.Status, oerr.Message)
			return
		}

		now := time.Now().UTC()
		order := models.Order{
			Id:          bson.NewObjectID(),
			UserId:      userID,
			Products:    orderLines,
			TotalAmount: total,
			Address:     addressFromDTO(body.Address),
			Status:      models.OrderStatusPlaced,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ordersCol := db.Collection("orders")
		if _, err := ordersCol.InsertOne(ctx, order); err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		// Commit stock line by line. Each decrement only applies while the
		// variant still holds enough stock, so concurrent placements cannot
		// push the count below zero.
		applied := make([]models.OrderLine, 0, len(orderLines))
		for _, line := range orderLines {
			res, err := productsCol.UpdateOne(ctx,
				bson.M{
					"_id": line.ProductId,
					"variants": bson.M{"$elemMatch": bson.M{
						"_id":   line.VariantId,
						"stock": bson.M{"$gte": line.Quantity},
					}},
				},
				bson.M{"$inc": bson.M{"variants.$.stock": -line.Quantity}},
			)
			if err == nil && res.ModifiedCount == 1 {
				applied = append(applied, line)
				continue
			}

			// Undo what already went through, then drop the order document.
			restoreStock(ctx, productsCol, applied)
			_, _ = ordersCol.DeleteOne(ctx, bson.M{"_id": order.Id})

			if err != nil {
				utils.Fail(c, http.StatusInternalServerError, err.Error())
				return
			}
			name, available := currentStock(ctx, productsCol, line.ProductId, line.VariantId)
			oerr := insufficientStock(name, line.Quantity, available)
			utils.Fail(c, oerr.Status, oerr.Message)
			return
		}

		utils.OK(c, http.StatusCreated, gin.H{
			"message": "Order Placed Successfully",
			"order":   populateOrder(&order, products, &user),
		})
	}
}

func ListMyOrders(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID, ok := callerID(c)
		if !ok {
			utils.Fail(c, http.StatusUnauthorized, "Please login to access this resource")
			return
		}

		orders, err := findOrders(ctx, db, bson.M{"userId": userID}, 50)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		utils.OK(c, http.StatusOK, gin.H{"orders": orders})
	}
}

func OrderDetails(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID, ok := callerID(c)
		if !ok {
			utils.Fail(c, http.StatusUnauthorized, "Please login to access this resource")
			return
		}

		var body dto.OrderDetailsDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		orderID, err := bson.ObjectIDFromHex(body.OrderID)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid orderId")
			return
		}

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			utils.Fail(c, http.StatusNotFound, "No Orders Found")
			return
		}
		if order.UserId != userID {
			utils.Fail(c, http.StatusForbidden, "this order belongs to another account")
			return
		}

		detail, err := populateOrderFromStore(ctx, db, &order)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		utils.OK(c, http.StatusOK, gin.H{"order": detail})
	}
}

// CancelOrder restores each line's quantity to its variant and flips the
// status. Restoration uses the immutable line quantities, so it works even if
// the variant was deactivated or repriced after placement.
func CancelOrder(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID, ok := callerID(c)
		if !ok {
			utils.Fail(c, http.StatusUnauthorized, "Please login to access this resource")
			return
		}

		var body dto.CancelOrderDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}
		orderID, err := bson.ObjectIDFromHex(body.OrderID)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid orderId")
			return
		}

		ordersCol := db.Collection("orders")

		var order models.Order
		if err := ordersCol.FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			utils.Fail(c, http.StatusNotFound, "No Orders Found")
			return
		}
		if oerr := cancellationGuard(&order, userID); oerr != nil {
			utils.Fail(c, oerr.Status, oerr.Message)
			return
		}

		// Flip the status first, guarded on the current value, so two
		// concurrent cancellations cannot both restore stock.
		now := time.Now().UTC()
		res, err := ordersCol.UpdateOne(ctx,
			bson.M{"_id": order.Id, "status": models.OrderStatusPlaced},
			bson.M{"$set": bson.M{"status": models.OrderStatusCancelled, "updatedAt": now}},
		)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.ModifiedCount == 0 {
			utils.Fail(c, http.StatusBadRequest, "order cannot be cancelled: status changed")
			return
		}

		restoreStock(ctx, db.Collection("products"), order.Products)

		order.Status = models.OrderStatusCancelled
		order.UpdatedAt = now

		detail, err := populateOrderFromStore(ctx, db, &order)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		utils.OK(c, http.StatusOK, gin.H{
			"message": "Order cancelled Successfully",
			"order":   detail,
		})
	}
}

// AdminListOrders filters by optional date range and status; with no filters
// it returns only the most recent orders.
func AdminListOrders(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		filter := bson.M{}
		hasFilter := false

		if createdAt := createdAtWindow(c.Query("from"), c.Query("to")); len(createdAt) > 0 {
			filter["createdAt"] = createdAt
			hasFilter = true
		}

		if status := c.Query("status"); status != "" {
			if !models.OrderStatus(status).Valid() {
				utils.Fail(c, http.StatusBadRequest, "invalid status")
				return
			}
			filter["status"] = models.OrderStatus(status)
			hasFilter = true
		}

		limit := int64(0)
		if !hasFilter {
			limit = 30
		}

		orders, err := findOrders(ctx, db, filter, limit)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		if len(orders) == 0 {
			utils.Fail(c, http.StatusNotFound, "No Orders Found")
			return
		}

		utils.OK(c, http.StatusOK, gin.H{
			"message": "Orders Fetched Successfully",
			"orders":  orders,
		})
	}
}

func AdminOrderDetails(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		orderID, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid order id")
			return
		}

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order); err != nil {
			utils.Fail(c, http.StatusNotFound, "No Orders Found")
			return
		}

		detail, err := populateOrderFromStore(ctx, db, &order)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		utils.OK(c, http.StatusOK, gin.H{
			"message":     "Order Fetched Successfully",
			"orderDetail": detail,
		})
	}
}

func AdminUpdateOrderStatus(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var body dto.UpdateOrderStatusDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.Fail(c, http.StatusBadRequest, err.Error())
			return
		}

		status := models.OrderStatus(body.Status)
		if !status.Valid() {
			utils.Fail(c, http.StatusBadRequest, "invalid status")
			return
		}
		orderID, err := bson.ObjectIDFromHex(body.OrderID)
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid orderId")
			return
		}

		res, err := db.Collection("orders").UpdateByID(ctx, orderID, bson.M{
			"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()},
		})
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}
		if res.MatchedCount == 0 {
			utils.Fail(c, http.StatusNotFound, "No Orders Found")
			return
		}

		utils.OK(c, http.StatusOK, gin.H{"message": "Status updated to " + string(status)})
	}
}

func AdminRecentOrdersByUser(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		userID, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			utils.Fail(c, http.StatusBadRequest, "invalid user id")
			return
		}

		orders, err := findOrders(ctx, db, bson.M{"userId": userID}, 20)
		if err != nil {
			utils.Fail(c, http.StatusInternalServerError, err.Error())
			return
		}

		utils.OK(c, http.StatusOK, gin.H{
			"message": "Orders Fetched Successfully",
			"orders":  orders,
		})
	}
}

func findOrders(ctx context.Context, db *database.DB, filter bson.M, limit int64) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(limit)
	}

	cursor, err := db.Collection("orders").Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func loadProducts(ctx context.Context, productsCol *mongo.Collection, lines []orderLineInput) (map[string]*models.Product, error) {
	ids := make([]bson.ObjectID, 0, len(lines))
	seen := make(map[string]bool, len(lines))
	for _, l := range lines {
		if !seen[l.ProductID.Hex()] {
			seen[l.ProductID.Hex()] = true
			ids = append(ids, l.ProductID)
		}
	}

	cursor, err := productsCol.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := make(map[string]*models.Product, len(ids))
	for cursor.Next(ctx) {
		var p models.Product
		if err := cursor.Decode(&p); err != nil {
			return nil, err
		}
		products[p.Id.Hex()] = &p
	}
	return products, cursor.Err()
}

func restoreStock(ctx context.Context, productsCol *mongo.Collection, lines []models.OrderLine) {
	for _, line := range lines {
		// Best effort: a product removed since placement simply matches
		// nothing, and order history keeps the immutable line either way.
		_, _ = productsCol.UpdateOne(ctx,
			bson.M{"_id": line.ProductId, "variants._id": line.VariantId},
			bson.M{"$inc": bson.M{"variants.$.stock": line.Quantity}},
		)
	}
}

func currentStock(ctx context.Context, productsCol *mongo.Collection, productID, variantID bson.ObjectID) (string, int) {
	var p models.Product
	if err := productsCol.FindOne(ctx, bson.M{"_id": productID}).Decode(&p); err != nil {
		return "product", 0
	}
	if v, ok := p.VariantByID(variantID); ok {
		return p.Name, v.Stock
	}
	return p.Name, 0
}

// populateOrder attaches display fields from already-loaded products and the
// ordering user. Missing referents leave the display fields blank; an order
// must stay renderable after its products are gone.
func populateOrder(order *models.Order, products map[string]*models.Product, user *models.User) gin.H {
	noOfProducts := 0
	lines := make([]gin.H, 0, len(order.Products))
	for _, l := range order.Products {
		noOfProducts += l.Quantity
		line := gin.H{
			"productId": l.ProductId,
			"variantId": l.VariantId,
			"quantity":  l.Quantity,
			"price":     l.Price,
			"name":      "",
			"brand":     "",
		}
		if p, ok := products[l.ProductId.Hex()]; ok {
			line["name"] = p.Name
			line["brand"] = p.Brand
			line["thumbnail"] = p.Thumbnail
		}
		lines = append(lines, line)
	}

	detail := gin.H{
		"id":           order.Id,
		"status":       order.Status,
		"totalAmount":  order.TotalAmount,
		"address":      order.Address,
		"createdAt":    order.CreatedAt,
		"noOfProducts": noOfProducts,
		"products":     lines,
		"name":         "",
		"mobilenumber": "",
	}
	if user != nil {
		detail["name"] = user.Name
		detail["mobilenumber"] = user.MobileNumber
	}
	return detail
}

func populateOrderFromStore(ctx context.Context, db *database.DB, order *models.Order) (gin.H, error) {
	ids := make([]bson.ObjectID, 0, len(order.Products))
	for _, l := range order.Products {
		ids = append(ids, l.ProductId)
	}

	cursor, err := db.Collection("products").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := make(map[string]*models.Product)
	for cursor.Next(ctx) {
		var p models.Product
		if err := cursor.Decode(&p); err != nil {
			return nil, err
		}
		products[p.Id.Hex()] = &p
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	var user models.User
	userPtr := &user
	if err := db.Collection("users").FindOne(ctx, bson.M{"_id": order.UserId}).Decode(&user); err != nil {
		userPtr = nil
	}

	return populateOrder(order, products, userPtr), nil
}
