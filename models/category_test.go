package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestChildPath(t *testing.T) {
	root := Category{Id: bson.NewObjectID(), Level: CategoryLevelRoot}
	assert.Equal(t, []bson.ObjectID{root.Id}, root.ChildPath())

	sub := Category{
		Id:       bson.NewObjectID(),
		ParentId: &root.Id,
		Level:    CategoryLevelSub,
		Path:     root.ChildPath(),
	}
	assert.Equal(t, []bson.ObjectID{root.Id, sub.Id}, sub.ChildPath())

	// The parent's stored path must not be shared with the child's.
	path := sub.ChildPath()
	path[0] = bson.NewObjectID()
	assert.Equal(t, []bson.ObjectID{root.Id}, sub.Path)
}

func TestOrderStatus(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPlaced, OrderStatusShipped, OrderStatusCancelled, OrderStatusDelivered,
	} {
		assert.True(t, s.Valid(), "status %s", s)
	}
	assert.False(t, OrderStatus("returned").Valid())
	assert.False(t, OrderStatus("Placed").Valid())

	assert.True(t, OrderStatusPlaced.Cancellable())
	assert.False(t, OrderStatusShipped.Cancellable())
	assert.False(t, OrderStatusCancelled.Cancellable())
	assert.False(t, OrderStatusDelivered.Cancellable())
}
