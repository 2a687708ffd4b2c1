package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Category levels form a fixed 3-level tree: 0 = category, 1 = sub, 2 = sub-sub.
const (
	CategoryLevelRoot   = 0
	CategoryLevelSub    = 1
	CategoryLevelSubSub = 2
	CategoryMaxLevel    = 2
)

type Category struct {
	Id       bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name     string         `bson:"name" json:"name"`
	ParentId *bson.ObjectID `bson:"parent" json:"parentId"`
	Level    int            `bson:"level" json:"level"`
	// Path holds ancestor ids root-first, so the descendants of X are all
	// categories whose path contains X.
	Path      []bson.ObjectID `bson:"path" json:"path"`
	IsActive  bool            `bson:"isActive" json:"isActive"`
	CreatedAt time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// ChildPath is the materialized path a direct child of c must carry.
func (c Category) ChildPath() []bson.ObjectID {
	path := make([]bson.ObjectID, 0, len(c.Path)+1)
	path = append(path, c.Path...)
	return append(path, c.Id)
}
