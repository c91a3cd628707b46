package restaurants

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sabormap/sabormap/pkg/controller"
)

// Embedded sequences are rewritten whole on every mutation, so two
// concurrent writers would silently drop each other's elements without a
// guard. Each write is conditioned on the document version read before
// mutating and bumps it, turning a concurrent overwrite into a miss that
// gets retried on a fresh read.
const maxMutateRetries = 3

var errWriteContention = errors.New("conflicto de escritura persistente")

// EmbeddedSet exposes mutations over one embedded element sequence of a
// restaurant document.
type EmbeddedSet[E any] struct {
	repo        *Repository
	field       string
	notFoundMsg string
	elements    func(*Restaurant) []E
	id          func(E) primitive.ObjectID
	setID       func(*E, primitive.ObjectID)
}

func newCommentSet(repo *Repository) *EmbeddedSet[Comment] {
	return &EmbeddedSet[Comment]{
		repo:        repo,
		field:       "comments",
		notFoundMsg: msgCommentNotFound,
		elements:    func(doc *Restaurant) []Comment { return doc.Comments },
		id:          func(c Comment) primitive.ObjectID { return c.ID },
		setID:       func(c *Comment, id primitive.ObjectID) { c.ID = id },
	}
}

func newGradeSet(repo *Repository) *EmbeddedSet[Grade] {
	return &EmbeddedSet[Grade]{
		repo:        repo,
		field:       "grades",
		notFoundMsg: msgGradeNotFound,
		elements:    func(doc *Restaurant) []Grade { return doc.Grades },
		id:          func(g Grade) primitive.ObjectID { return g.ID },
		setID:       func(g *Grade, id primitive.ObjectID) { g.ID = id },
	}
}

// ListByParent returns the full sequence of the given restaurant.
func (s *EmbeddedSet[E]) ListByParent(ctx context.Context, restaurantID string) ([]E, error) {
	oid, ok := parseObjectID(restaurantID)
	if !ok {
		return nil, controller.NewNotFoundError(msgRestaurantNotFound)
	}

	var doc Restaurant
	if err := s.repo.store.FindOne(ctx, Collection, bson.M{"_id": oid}, &doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, controller.NewNotFoundError(msgRestaurantNotFound)
		}
		return nil, controller.NewInternalError("no se pudo consultar el restaurante", err)
	}

	elems := s.elements(&doc)
	if elems == nil {
		elems = []E{}
	}
	return elems, nil
}

// Append adds elem to the sequence under a fresh identifier and returns
// the stored element.
func (s *EmbeddedSet[E]) Append(ctx context.Context, restaurantID string, elem E) (*E, error) {
	s.setID(&elem, primitive.NewObjectID())
	return s.mutate(ctx, restaurantID, func(current []E) ([]E, *E, error) {
		next := append(append([]E{}, current...), elem)
		out := elem
		return next, &out, nil
	})
}

// UpdateByID applies apply to the element with the given identifier and
// returns the updated element.
func (s *EmbeddedSet[E]) UpdateByID(ctx context.Context, restaurantID, elemID string, apply func(*E)) (*E, error) {
	oid, ok := parseObjectID(elemID)
	if !ok {
		return nil, controller.NewNotFoundError(s.notFoundMsg)
	}
	return s.mutate(ctx, restaurantID, func(current []E) ([]E, *E, error) {
		next := append([]E{}, current...)
		for i := range next {
			if s.id(next[i]) != oid {
				continue
			}
			apply(&next[i])
			out := next[i]
			return next, &out, nil
		}
		return nil, nil, controller.NewNotFoundError(s.notFoundMsg)
	})
}

// RemoveByID deletes the element with the given identifier and returns
// its last snapshot.
func (s *EmbeddedSet[E]) RemoveByID(ctx context.Context, restaurantID, elemID string) (*E, error) {
	oid, ok := parseObjectID(elemID)
	if !ok {
		return nil, controller.NewNotFoundError(s.notFoundMsg)
	}
	return s.mutate(ctx, restaurantID, func(current []E) ([]E, *E, error) {
		next := make([]E, 0, len(current))
		var removed *E
		for _, elem := range current {
			if removed == nil && s.id(elem) == oid {
				out := elem
				removed = &out
				continue
			}
			next = append(next, elem)
		}
		if removed == nil {
			return nil, nil, controller.NewNotFoundError(s.notFoundMsg)
		}
		return next, removed, nil
	})
}

// mutate runs one read-modify-write round over the sequence. apply
// receives the current elements and returns the full replacement plus
// the element to surface to the caller. A write that misses because the
// version moved underneath is retried on a fresh read.
func (s *EmbeddedSet[E]) mutate(ctx context.Context, restaurantID string, apply func([]E) ([]E, *E, error)) (*E, error) {
	oid, ok := parseObjectID(restaurantID)
	if !ok {
		return nil, controller.NewNotFoundError(msgRestaurantNotFound)
	}

	for attempt := 0; attempt < maxMutateRetries; attempt++ {
		var doc Restaurant
		if err := s.repo.store.FindOne(ctx, Collection, bson.M{"_id": oid}, &doc); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, controller.NewNotFoundError(msgRestaurantNotFound)
			}
			return nil, controller.NewInternalError("no se pudo consultar el restaurante", err)
		}

		next, out, err := apply(s.elements(&doc))
		if err != nil {
			return nil, err
		}

		matched, err := s.repo.store.UpdateOne(ctx, Collection,
			bson.M{"_id": oid, "version": doc.Version},
			bson.M{
				"$set": bson.M{s.field: next},
				"$inc": bson.M{"version": 1},
			},
		)
		if err != nil {
			return nil, controller.NewInternalError("no se pudo guardar el restaurante", err)
		}
		if matched > 0 {
			return out, nil
		}

		s.repo.log.WithContext(ctx).Warn("retrying embedded write after version conflict",
			"collection", Collection,
			"field", s.field,
			"restaurant_id", restaurantID,
			"attempt", attempt+1,
		)
	}

	return nil, controller.NewInternalError("ocurrió un error inesperado", errWriteContention)
}
