package httpapi

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"lunchstats/internal/domain"

	"github.com/go-playground/validator/v10"
)

type trackPayload struct {
	Date        string              `json:"date" validate:"ymd"`
	UserID      string              `json:"userId"`
	Restaurants []restaurantPayload `json:"restaurants" validate:"dive"`
	Orders      []orderPayload      `json:"orders" validate:"dive"`
}

type restaurantPayload struct {
	ID     string `json:"id" validate:"required"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Logo   string `json:"logo"`
	Status string `json:"status" validate:"omitempty,oneof=available soldout"`
	// SoldOut is the older boolean form of Status.
	SoldOut bool              `json:"soldOut"`
	Menu    []domain.MenuItem `json:"menu"`
}

func (p restaurantPayload) status() string {
	if p.Status == "" && p.SoldOut {
		return domain.StatusSoldOut
	}
	return p.Status
}

type orderPayload struct {
	RestaurantID string             `json:"restaurantId" validate:"required"`
	OrderID      string             `json:"orderId"`
	Items        []domain.OrderItem `json:"items"`
}

type updateAppearancesPayload struct {
	RestaurantID string   `json:"restaurantId" validate:"required"`
	Appearances  []string `json:"appearances" validate:"dive,ymd"`
	SoldOutDates []string `json:"soldOutDates" validate:"dive,ymd"`
}

type ratingPayload struct {
	UserID     string             `json:"userId" validate:"required"`
	Restaurant string             `json:"restaurant" validate:"required"`
	OrderDate  string             `json:"orderDate" validate:"ymd"`
	Rating     int                `json:"rating" validate:"min=1,max=4"`
	Comment    string             `json:"comment" validate:"max=2000"`
	Items      []domain.OrderItem `json:"items"`
}

type replaceOrderPayload struct {
	UserID       string             `json:"userId" validate:"required"`
	RestaurantID string             `json:"restaurantId" validate:"required"`
	Items        []domain.OrderItem `json:"items"`
}

// newValidator reports json field names and knows the ymd date rule.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
		return domain.IsValidDate(fl.Field().String())
	})
	return v
}

// decode reads and validates a JSON body, writing the 400 itself on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		h.fail(w, r, err)
		return false
	}
	return true
}
