// Package restaurants implements the restaurant catalog: the document
// model, the repository over MongoDB, the embedded comment/grade
// sequences, and the HTTP handlers.
package restaurants

import "go.mongodb.org/mongo-driver/bson/primitive"

// Collection is the MongoDB collection holding restaurant documents.
const Collection = "restaurants"

// GeoField is the document field indexed for proximity search.
// It holds a [longitude, latitude] pair.
const GeoField = "address.coord"

// Address is the embedded address of a restaurant. Coord, when present,
// is always [longitude, latitude]; the store does not enforce this shape.
type Address struct {
	Building string    `bson:"building,omitempty" json:"building,omitempty"`
	Street   string    `bson:"street,omitempty" json:"street,omitempty"`
	Zipcode  string    `bson:"zipcode,omitempty" json:"zipcode,omitempty"`
	Coord    []float64 `bson:"coord,omitempty" json:"coord,omitempty"`
}

// Grade is a review score embedded in its restaurant. Its identifier is
// store-assigned and unique only within the parent's grade sequence.
type Grade struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Date  string             `bson:"date" json:"date"`
	Score float64            `bson:"score" json:"score"`
}

// Comment is free-text feedback embedded in its restaurant. Like Grade,
// it has no existence independent of its parent document.
type Comment struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Date    string             `bson:"date" json:"date"`
	Comment string             `bson:"comment" json:"comment"`
}

// Restaurant is the root document. Version backs the conditional writes
// that guard embedded-sequence mutations against concurrent updates; it
// is not part of the API surface.
type Restaurant struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Borough      string             `bson:"borough,omitempty" json:"borough,omitempty"`
	Cuisine      string             `bson:"cuisine,omitempty" json:"cuisine,omitempty"`
	Address      *Address           `bson:"address,omitempty" json:"address,omitempty"`
	Grades       []Grade            `bson:"grades" json:"grades"`
	Comments     []Comment          `bson:"comments" json:"comments"`
	RestaurantID string             `bson:"restaurant_id,omitempty" json:"restaurant_id,omitempty"`
	Version      int64              `bson:"version" json:"-"`

	// Distance is populated by proximity search only (meters from the
	// search origin).
	Distance float64 `bson:"distance,omitempty" json:"distance,omitempty"`
}

// Page is the envelope returned by the paginated listing.
type Page struct {
	Total int64        `json:"total"`
	Page  int64        `json:"page"`
	Pages int64        `json:"pages"`
	Limit int64        `json:"limit"`
	Data  []Restaurant `json:"data"`
}
