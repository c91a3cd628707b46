package restaurants

import (
	"bytes"
	"context"
	"math"
	"regexp"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	mongostore "github.com/sabormap/sabormap/pkg/store/mongodb"
)

// fakeStore is an in-memory Executor. It interprets the filter and
// update shapes the repository produces, so tests run against the same
// query wiring as production without a live database.
type fakeStore struct {
	mu   sync.Mutex
	docs []*Restaurant

	// failErr, when set, is returned by every operation.
	failErr error
	// beforeUpdate runs at the start of UpdateOne, before the filter is
	// evaluated. Tests use it to interleave a concurrent writer.
	beforeUpdate func(s *fakeStore)

	updateCalls int
}

func newFakeStore(docs ...*Restaurant) *fakeStore {
	s := &fakeStore{}
	for _, doc := range docs {
		cp := *doc
		if cp.ID.IsZero() {
			cp.ID = primitive.NewObjectID()
		}
		s.docs = append(s.docs, &cp)
	}
	return s
}

func (s *fakeStore) InsertOne(ctx context.Context, collection string, doc interface{}) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return nil, s.failErr
	}

	cp := *doc.(*Restaurant)
	cp.ID = primitive.NewObjectID()
	s.docs = append(s.docs, &cp)
	return cp.ID, nil
}

func (s *fakeStore) FindOne(ctx context.Context, collection string, filter interface{}, result interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}

	doc := s.first(filter.(bson.M))
	if doc == nil {
		return mongo.ErrNoDocuments
	}
	*result.(*Restaurant) = *doc
	return nil
}

func (s *fakeStore) Find(ctx context.Context, collection string, filter interface{}, opts mongostore.FindOptions, results interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}

	matched := s.all(filter.(bson.M))
	if sortDoc, ok := opts.Sort.(bson.D); ok && len(sortDoc) > 0 {
		sortDocs(matched, sortDoc[0].Key, sortDoc[0].Value.(int))
	}
	if opts.Skip > 0 {
		if opts.Skip >= int64(len(matched)) {
			matched = nil
		} else {
			matched = matched[opts.Skip:]
		}
	}
	if opts.Limit > 0 && int64(len(matched)) > opts.Limit {
		matched = matched[:opts.Limit]
	}

	out := make([]Restaurant, 0, len(matched))
	for _, doc := range matched {
		out = append(out, *doc)
	}
	*results.(*[]Restaurant) = out
	return nil
}

func (s *fakeStore) Count(ctx context.Context, collection string, filter interface{}) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return 0, s.failErr
	}
	return int64(len(s.all(filter.(bson.M)))), nil
}

func (s *fakeStore) UpdateOne(ctx context.Context, collection string, filter, update interface{}) (int64, error) {
	s.mu.Lock()
	s.updateCalls++
	if s.beforeUpdate != nil {
		s.beforeUpdate(s)
	}
	defer s.mu.Unlock()
	if s.failErr != nil {
		return 0, s.failErr
	}

	doc := s.first(filter.(bson.M))
	if doc == nil {
		return 0, nil
	}
	applyUpdate(doc, update.(bson.M))
	return 1, nil
}

func (s *fakeStore) FindOneAndUpdate(ctx context.Context, collection string, filter, update interface{}, result interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}

	doc := s.first(filter.(bson.M))
	if doc == nil {
		return mongo.ErrNoDocuments
	}
	applyUpdate(doc, update.(bson.M))
	*result.(*Restaurant) = *doc
	return nil
}

func (s *fakeStore) FindOneAndDelete(ctx context.Context, collection string, filter interface{}, result interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}

	for i, doc := range s.docs {
		if s.matches(doc, filter.(bson.M)) {
			*result.(*Restaurant) = *doc
			s.docs = append(s.docs[:i], s.docs[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

// Aggregate supports the proximity pipeline: it reads the $geoNear
// stage, filters by its embedded query, and returns matches ordered by
// great-circle distance to the near point.
func (s *fakeStore) Aggregate(ctx context.Context, collection string, pipeline interface{}, results interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}

	stages := pipeline.([]bson.M)
	geoNear := stages[0]["$geoNear"].(bson.M)
	near := geoNear["near"].(bson.M)["coordinates"].([]float64)
	query := geoNear["query"].(bson.M)

	type scored struct {
		doc  Restaurant
		dist float64
	}
	var matched []scored
	for _, doc := range s.all(query) {
		if doc.Address == nil || len(doc.Address.Coord) < 2 {
			continue
		}
		cp := *doc
		cp.Distance = haversineMeters(near[1], near[0], doc.Address.Coord[1], doc.Address.Coord[0])
		matched = append(matched, scored{doc: cp, dist: cp.Distance})
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].dist < matched[j].dist })

	out := make([]Restaurant, 0, len(matched))
	for _, m := range matched {
		out = append(out, m.doc)
	}
	*results.(*[]Restaurant) = out
	return nil
}

func (s *fakeStore) first(filter bson.M) *Restaurant {
	for _, doc := range s.docs {
		if s.matches(doc, filter) {
			return doc
		}
	}
	return nil
}

func (s *fakeStore) all(filter bson.M) []*Restaurant {
	var out []*Restaurant
	for _, doc := range s.docs {
		if s.matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return out
}

func (s *fakeStore) matches(doc *Restaurant, filter bson.M) bool {
	for key, want := range filter {
		switch key {
		case "_id":
			if doc.ID != want.(primitive.ObjectID) {
				return false
			}
		case "version":
			if doc.Version != want.(int64) {
				return false
			}
		case "name":
			pattern := want.(bson.M)["$regex"].(string)
			re := regexp.MustCompile("(?i)" + pattern)
			if !re.MatchString(doc.Name) {
				return false
			}
		case "cuisine":
			if doc.Cuisine != want.(string) {
				return false
			}
		case "borough":
			if doc.Borough != want.(string) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func applyUpdate(doc *Restaurant, update bson.M) {
	if setFields, ok := update["$set"].(bson.M); ok {
		for key, value := range setFields {
			switch key {
			case "comments":
				doc.Comments = value.([]Comment)
			case "grades":
				doc.Grades = value.([]Grade)
			}
		}
	}
	if setFields, ok := update["$set"].(map[string]interface{}); ok {
		for key, value := range setFields {
			switch key {
			case "name":
				doc.Name = value.(string)
			case "borough":
				doc.Borough = value.(string)
			case "cuisine":
				doc.Cuisine = value.(string)
			case "restaurant_id":
				doc.RestaurantID = value.(string)
			case "address":
				doc.Address = value.(*Address)
			}
		}
	}
	if incFields, ok := update["$inc"].(bson.M); ok {
		if _, ok := incFields["version"]; ok {
			doc.Version++
		}
	}
}

func sortDocs(docs []*Restaurant, field string, direction int) {
	sort.SliceStable(docs, func(i, j int) bool {
		var less bool
		switch field {
		case "name":
			less = docs[i].Name < docs[j].Name
		default:
			less = bytes.Compare(docs[i].ID[:], docs[j].ID[:]) < 0
		}
		if direction < 0 {
			return !less
		}
		return less
	})
}

func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadius = 6371000.0
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadius * math.Asin(math.Sqrt(a))
}
