package restaurants

import (
	"strings"

	"github.com/sabormap/sabormap/pkg/controller"
)

// AddressPayload is the address shape accepted on create and update.
type AddressPayload struct {
	Building string    `json:"building"`
	Street   string    `json:"street"`
	Zipcode  string    `json:"zipcode"`
	Coord    []float64 `json:"coord"`
}

func (p *AddressPayload) toModel() *Address {
	if p == nil {
		return nil
	}
	return &Address{
		Building: p.Building,
		Street:   p.Street,
		Zipcode:  p.Zipcode,
		Coord:    p.Coord,
	}
}

// CreateRestaurantRequest carries the client-supplied fields of a new
// restaurant. The store assigns the identifier.
type CreateRestaurantRequest struct {
	Name         string          `json:"name"`
	Borough      string          `json:"borough"`
	Cuisine      string          `json:"cuisine"`
	Address      *AddressPayload `json:"address"`
	RestaurantID string          `json:"restaurant_id"`
}

func (r *CreateRestaurantRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return controller.NewValidationError("el nombre es obligatorio", nil)
	}
	return nil
}

// UpdateRestaurantRequest carries a partial document update; only fields
// present in the body are merged into the stored document.
type UpdateRestaurantRequest struct {
	Name         *string         `json:"name"`
	Borough      *string         `json:"borough"`
	Cuisine      *string         `json:"cuisine"`
	Address      *AddressPayload `json:"address"`
	RestaurantID *string         `json:"restaurant_id"`
}

func (r *UpdateRestaurantRequest) Validate() error {
	if r.Name == nil && r.Borough == nil && r.Cuisine == nil && r.Address == nil && r.RestaurantID == nil {
		return controller.NewValidationError("no hay campos para actualizar", nil)
	}
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return controller.NewValidationError("el nombre no puede estar vacío", nil)
	}
	return nil
}

// fields returns the $set document for the provided fields only.
func (r *UpdateRestaurantRequest) fields() map[string]interface{} {
	set := map[string]interface{}{}
	if r.Name != nil {
		set["name"] = *r.Name
	}
	if r.Borough != nil {
		set["borough"] = *r.Borough
	}
	if r.Cuisine != nil {
		set["cuisine"] = *r.Cuisine
	}
	if r.Address != nil {
		set["address"] = r.Address.toModel()
	}
	if r.RestaurantID != nil {
		set["restaurant_id"] = *r.RestaurantID
	}
	return set
}

// CommentPayload is the body of comment append and update requests.
type CommentPayload struct {
	Date    string `json:"date"`
	Comment string `json:"comment"`
}

func (p *CommentPayload) Validate() error {
	if strings.TrimSpace(p.Comment) == "" || strings.TrimSpace(p.Date) == "" {
		return controller.NewValidationError("el comentario y la fecha son obligatorios", nil)
	}
	return nil
}

// GradePayload is the body of grade append and update requests.
// Score is a pointer so a zero score is accepted as a valid value.
type GradePayload struct {
	Date  string   `json:"date"`
	Score *float64 `json:"score"`
}

func (p *GradePayload) Validate() error {
	if p.Score == nil || strings.TrimSpace(p.Date) == "" {
		return controller.NewValidationError("la calificación y la fecha son obligatorias", nil)
	}
	return nil
}
