package restaurants

import (
	"strconv"
	"strings"

	"github.com/sabormap/sabormap/pkg/controller"
	"github.com/sabormap/sabormap/pkg/observability/logger"
	"github.com/sabormap/sabormap/pkg/server/router"
)

// Controller exposes the restaurant catalog over HTTP.
type Controller struct {
	repo *Repository
	log  logger.Logger
}

// NewController creates a Controller backed by repo.
func NewController(repo *Repository, log logger.Logger) *Controller {
	return &Controller{repo: repo, log: log}
}

// RegisterRoutes mounts the catalog routes on r. The search route is
// registered before the parameterized ones so "search" never resolves as
// an identifier.
func (h *Controller) RegisterRoutes(r router.Router) {
	g := r.Group("/restaurants")

	g.GET("/search", h.Search)
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)

	g.GET("/:id/comments", h.ListComments)
	g.POST("/:id/comments", h.AddComment)
	g.PUT("/:id/comments/:commentId", h.UpdateComment)
	g.DELETE("/:id/comments/:commentId", h.DeleteComment)

	g.GET("/:id/grades", h.ListGrades)
	g.POST("/:id/grades", h.AddGrade)
	g.PUT("/:id/grades/:gradeId", h.UpdateGrade)
	g.DELETE("/:id/grades/:gradeId", h.DeleteGrade)
}

// List returns one page of the catalog.
// GET /restaurants?page=&limit=&sort=
func (h *Controller) List(c router.Context) error {
	page, err := queryInt(c, "page", defaultPage)
	if err != nil {
		return controller.Error(c, err)
	}
	limit, err := queryInt(c, "limit", defaultLimit)
	if err != nil {
		return controller.Error(c, err)
	}

	result, err := h.repo.ListPaged(c.Request().Context(), nil, c.Query("sort"), page, limit)
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.Success(c, result)
}

// Search returns restaurants matching the given criteria.
// GET /restaurants/search?name=&cuisine=&borough=&lng=&lat=
func (h *Controller) Search(c router.Context) error {
	origin, err := queryOrigin(c)
	if err != nil {
		return controller.Error(c, err)
	}

	results, err := h.repo.Search(c.Request().Context(), SearchFilters{
		Name:    c.Query("name"),
		Cuisine: c.Query("cuisine"),
		Borough: c.Query("borough"),
	}, origin)
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.Success(c, results)
}

// Get returns a single restaurant.
// GET /restaurants/:id
func (h *Controller) Get(c router.Context) error {
	doc, err := h.repo.FindOne(c.Request().Context(), c.Param("id"))
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.Success(c, doc)
}

// Create registers a new restaurant.
// POST /restaurants
func (h *Controller) Create(c router.Context) error {
	var req CreateRestaurantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return controller.Error(c, err)
	}

	doc, err := h.repo.Create(c.Request().Context(), &req)
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.Created(c, doc)
}

// Update merges the provided fields into a restaurant.
// PUT /restaurants/:id
func (h *Controller) Update(c router.Context) error {
	var req UpdateRestaurantRequest
	if err := bindAndValidate(c, &req); err != nil {
		return controller.Error(c, err)
	}

	doc, err := h.repo.Update(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.Success(c, doc)
}

// Delete removes a restaurant and returns its last snapshot.
// DELETE /restaurants/:id
func (h *Controller) Delete(c router.Context) error {
	doc, err := h.repo.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.Success(c, doc)
}

// ListComments returns all comments of a restaurant.
// GET /restaurants/:id/comments
func (h *Controller) ListComments(c router.Context) error {
	comments, err := h.repo.Comments().ListByParent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.Success(c, comments)
}

// AddComment appends a comment to a restaurant.
// POST /restaurants/:id/comments
func (h *Controller) AddComment(c router.Context) error {
	var req CommentPayload
	if err := bindAndValidate(c, &req); err != nil {
		return controller.Error(c, err)
	}

	created, err := h.repo.Comments().Append(c.Request().Context(), c.Param("id"), Comment{
		Date:    req.Date,
		Comment: req.Comment,
	})
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.Created(c, created)
}

// UpdateComment replaces the text and date of a comment.
// PUT /restaurants/:id/comments/:commentId
func (h *Controller) UpdateComment(c router.Context) error {
	var req CommentPayload
	if err := bindAndValidate(c, &req); err != nil {
		return controller.Error(c, err)
	}

	updated, err := h.repo.Comments().UpdateByID(c.Request().Context(), c.Param("id"), c.Param("commentId"), func(elem *Comment) {
		elem.Date = req.Date
		elem.Comment = req.Comment
	})
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.Success(c, updated)
}

// DeleteComment removes a comment and returns its last snapshot.
// DELETE /restaurants/:id/comments/:commentId
func (h *Controller) DeleteComment(c router.Context) error {
	removed, err := h.repo.Comments().RemoveByID(c.Request().Context(), c.Param("id"), c.Param("commentId"))
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.Success(c, removed)
}

// ListGrades returns all grades of a restaurant.
// GET /restaurants/:id/grades
func (h *Controller) ListGrades(c router.Context) error {
	grades, err := h.repo.Grades().ListByParent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.Success(c, grades)
}

// AddGrade appends a grade to a restaurant.
// POST /restaurants/:id/grades
func (h *Controller) AddGrade(c router.Context) error {
	var req GradePayload
	if err := bindAndValidate(c, &req); err != nil {
		return controller.Error(c, err)
	}

	created, err := h.repo.Grades().Append(c.Request().Context(), c.Param("id"), Grade{
		Date:  req.Date,
		Score: *req.Score,
	})
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.Created(c, created)
}

// UpdateGrade replaces the score and date of a grade.
// PUT /restaurants/:id/grades/:gradeId
func (h *Controller) UpdateGrade(c router.Context) error {
	var req GradePayload
	if err := bindAndValidate(c, &req); err != nil {
		return controller.Error(c, err)
	}

	updated, err := h.repo.Grades().UpdateByID(c.Request().Context(), c.Param("id"), c.Param("gradeId"), func(elem *Grade) {
		elem.Date = req.Date
		elem.Score = *req.Score
	})
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.Success(c, updated)
}

// DeleteGrade removes a grade and returns its last snapshot.
// DELETE /restaurants/:id/grades/:gradeId
func (h *Controller) DeleteGrade(c router.Context) error {
	removed, err := h.repo.Grades().RemoveByID(c.Request().Context(), c.Param("id"), c.Param("gradeId"))
	if err != nil {
		return controller.Error(c, err)
	}
	return controller.Success(c, removed)
}

func bindAndValidate(c router.Context, dto interface{}) error {
	if err := c.Bind(dto); err != nil {
		return controller.NewValidationError("cuerpo JSON inválido", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return controller.ValidateDTO(dto)
}

func queryInt(c router.Context, name string, fallback int64) (int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return 0, controller.NewValidationError("el parámetro '"+name+"' debe ser un entero positivo", nil)
	}
	return n, nil
}

// queryOrigin reads the optional lng/lat pair. Both coordinates are
// required together.
func queryOrigin(c router.Context) (*GeoPoint, error) {
	rawLng := strings.TrimSpace(c.Query("lng"))
	rawLat := strings.TrimSpace(c.Query("lat"))
	if rawLng == "" && rawLat == "" {
		return nil, nil
	}
	if rawLng == "" || rawLat == "" {
		return nil, controller.NewValidationError("los parámetros 'lng' y 'lat' deben enviarse juntos", nil)
	}

	lng, err := strconv.ParseFloat(rawLng, 64)
	if err != nil {
		return nil, controller.NewValidationError("el parámetro 'lng' debe ser un número", nil)
	}
	lat, err := strconv.ParseFloat(rawLat, 64)
	if err != nil {
		return nil, controller.NewValidationError("el parámetro 'lat' debe ser un número", nil)
	}
	if lng < -180 || lng > 180 || lat < -90 || lat > 90 {
		return nil, controller.NewValidationError("coordenadas fuera de rango", nil)
	}
	return &GeoPoint{Lng: lng, Lat: lat}, nil
}
