package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestSiblingNameFilterRoot(t *testing.T) {
	filter := siblingNameFilter("  Grains & Pulses ", nil, 0)

	assert.Equal(t, 0, filter["level"])
	assert.Nil(t, filter["parent"])

	name, ok := filter["name"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, `^Grains & Pulses$`, name["$regex"])
	assert.Equal(t, "i", name["$options"])
}

func TestCategoryListFilterOnlyActive(t *testing.T) {
	for level := 0; level <= 2; level++ {
		filter := categoryListFilter(level)
		assert.Equal(t, true, filter["isActive"], "level %d", level)
		assert.Equal(t, level, filter["level"])
	}
}

func TestSiblingNameFilterChildEscapesRegex(t *testing.T) {
	parent := bson.NewObjectID()
	filter := siblingNameFilter("Rice (Basmati)", &parent, 1)

	assert.Equal(t, parent, filter["parent"])
	name := filter["name"].(bson.M)
	assert.Equal(t, `^Rice \(Basmati\)$`, name["$regex"])
}
