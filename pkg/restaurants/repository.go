package restaurants

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sabormap/sabormap/pkg/controller"
	"github.com/sabormap/sabormap/pkg/observability/logger"
	mongostore "github.com/sabormap/sabormap/pkg/store/mongodb"
)

// User-facing messages. The catalog predates this service and its clients
// expect them in Spanish.
const (
	msgRestaurantNotFound = "Restaurante no encontrado"
	msgCommentNotFound    = "Comentario no encontrado"
	msgGradeNotFound      = "Calificación no encontrada"
)

const (
	defaultPage  int64 = 1
	defaultLimit int64 = 10
)

// Repository provides typed access to the restaurant collection.
type Repository struct {
	store    Executor
	log      logger.Logger
	comments *EmbeddedSet[Comment]
	grades   *EmbeddedSet[Grade]
}

// NewRepository creates a Repository over the given store.
func NewRepository(store Executor, log logger.Logger) *Repository {
	r := &Repository{store: store, log: log}
	r.comments = newCommentSet(r)
	r.grades = newGradeSet(r)
	return r
}

// Comments returns the embedded comment sequence operations.
func (r *Repository) Comments() *EmbeddedSet[Comment] {
	return r.comments
}

// Grades returns the embedded grade sequence operations.
func (r *Repository) Grades() *EmbeddedSet[Grade] {
	return r.grades
}

// ListPaged returns one page of restaurants matching filter, with the
// total count computed over the whole match. page and limit below 1 fall
// back to their defaults; sortSpec is a field name with an optional "-"
// prefix for descending order, defaulting to newest first.
func (r *Repository) ListPaged(ctx context.Context, filter bson.M, sortSpec string, page, limit int64) (*Page, error) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if filter == nil {
		filter = bson.M{}
	}

	total, err := r.store.Count(ctx, Collection, filter)
	if err != nil {
		return nil, controller.NewInternalError("no se pudieron contar los restaurantes", err)
	}

	data := []Restaurant{}
	err = r.store.Find(ctx, Collection, filter, mongostore.FindOptions{
		Sort:  parseSort(sortSpec),
		Skip:  (page - 1) * limit,
		Limit: limit,
	}, &data)
	if err != nil {
		return nil, controller.NewInternalError("no se pudieron listar los restaurantes", err)
	}

	return &Page{
		Total: total,
		Page:  page,
		Pages: (total + limit - 1) / limit,
		Limit: limit,
		Data:  data,
	}, nil
}

// Create inserts a new restaurant with the client-supplied fields and
// returns it with its store-assigned identifier.
func (r *Repository) Create(ctx context.Context, req *CreateRestaurantRequest) (*Restaurant, error) {
	doc := &Restaurant{
		Name:         req.Name,
		Borough:      req.Borough,
		Cuisine:      req.Cuisine,
		Address:      req.Address.toModel(),
		Grades:       []Grade{},
		Comments:     []Comment{},
		RestaurantID: req.RestaurantID,
	}

	id, err := r.store.InsertOne(ctx, Collection, doc)
	if err != nil {
		return nil, controller.NewInternalError("no se pudo crear el restaurante", err)
	}
	if oid, ok := id.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc, nil
}

// FindOne fetches a restaurant by identifier.
func (r *Repository) FindOne(ctx context.Context, id string) (*Restaurant, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, controller.NewNotFoundError(msgRestaurantNotFound)
	}

	var doc Restaurant
	if err := r.store.FindOne(ctx, Collection, bson.M{"_id": oid}, &doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, controller.NewNotFoundError(msgRestaurantNotFound)
		}
		return nil, controller.NewInternalError("no se pudo consultar el restaurante", err)
	}
	return &doc, nil
}

// Update merges the provided fields into the document and returns the
// post-update document.
func (r *Repository) Update(ctx context.Context, id string, req *UpdateRestaurantRequest) (*Restaurant, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, controller.NewNotFoundError(msgRestaurantNotFound)
	}

	var doc Restaurant
	err := r.store.FindOneAndUpdate(ctx, Collection,
		bson.M{"_id": oid},
		bson.M{"$set": req.fields()},
		&doc,
	)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, controller.NewNotFoundError(msgRestaurantNotFound)
		}
		return nil, controller.NewInternalError("no se pudo actualizar el restaurante", err)
	}
	return &doc, nil
}

// Delete removes a restaurant and returns its last snapshot.
func (r *Repository) Delete(ctx context.Context, id string) (*Restaurant, error) {
	oid, ok := parseObjectID(id)
	if !ok {
		return nil, controller.NewNotFoundError(msgRestaurantNotFound)
	}

	var doc Restaurant
	if err := r.store.FindOneAndDelete(ctx, Collection, bson.M{"_id": oid}, &doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, controller.NewNotFoundError(msgRestaurantNotFound)
		}
		return nil, controller.NewInternalError("no se pudo eliminar el restaurante", err)
	}
	return &doc, nil
}

// SearchFilters are the optional conjunctive search criteria.
type SearchFilters struct {
	Name    string
	Cuisine string
	Borough string
}

// GeoPoint is a search origin as longitude and latitude.
type GeoPoint struct {
	Lng float64
	Lat float64
}

// Search returns restaurants matching the provided non-empty filters.
// With an origin the results come ordered by geodesic distance to it,
// nearest first; without one the order is store-defined.
func (r *Repository) Search(ctx context.Context, filters SearchFilters, origin *GeoPoint) ([]Restaurant, error) {
	filter := searchFilter(filters)

	results := []Restaurant{}
	if origin == nil {
		if err := r.store.Find(ctx, Collection, filter, mongostore.FindOptions{}, &results); err != nil {
			return nil, controller.NewInternalError("no se pudo buscar restaurantes", err)
		}
		return results, nil
	}

	if err := r.store.Aggregate(ctx, Collection, geoNearPipeline(filter, *origin), &results); err != nil {
		return nil, controller.NewInternalError("no se pudo buscar restaurantes por cercanía", err)
	}
	return results, nil
}

func searchFilter(filters SearchFilters) bson.M {
	filter := bson.M{}
	if name := strings.TrimSpace(filters.Name); name != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(name), "$options": "i"}
	}
	if cuisine := strings.TrimSpace(filters.Cuisine); cuisine != "" {
		filter["cuisine"] = cuisine
	}
	if borough := strings.TrimSpace(filters.Borough); borough != "" {
		filter["borough"] = borough
	}
	return filter
}

// geoNearPipeline builds the aggregation ordering matches by geodesic
// distance from origin. $geoNear must be the first stage and requires the
// 2dsphere index on the coordinate field.
func geoNearPipeline(filter bson.M, origin GeoPoint) []bson.M {
	return []bson.M{
		{
			"$geoNear": bson.M{
				"near": bson.M{
					"type":        "Point",
					"coordinates": []float64{origin.Lng, origin.Lat},
				},
				"distanceField": "distance",
				"key":           GeoField,
				"spherical":     true,
				"query":         filter,
			},
		},
	}
}

// parseSort maps a sort spec to a MongoDB sort document. The default is
// creation order, newest first.
func parseSort(spec string) bson.D {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return bson.D{{Key: "_id", Value: -1}}
	}
	if strings.HasPrefix(spec, "-") {
		// A bare "-" names no field; fall back to the default order.
		if field := spec[1:]; field != "" {
			return bson.D{{Key: field, Value: -1}}
		}
		return bson.D{{Key: "_id", Value: -1}}
	}
	return bson.D{{Key: spec, Value: 1}}
}

var objectIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// parseObjectID converts a path parameter into an ObjectID. Malformed
// identifiers cannot resolve to a document, so callers treat them as
// not found.
func parseObjectID(id string) (primitive.ObjectID, bool) {
	if !objectIDPattern.MatchString(id) {
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}
