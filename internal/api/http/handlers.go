package httpapi

import (
	"net/http"
	"strings"

	"lunchstats/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	Restaurants service.RestaurantServiceInterface
	Ratings     service.RatingServiceInterface
	Orders      service.OrderServiceInterface
	Stats       service.StatsServiceInterface

	prefix   string
	validate *validator.Validate
	log      *logrus.Entry
}

func NewHandler(restaurants service.RestaurantServiceInterface, ratings service.RatingServiceInterface, orders service.OrderServiceInterface, stats service.StatsServiceInterface, prefix string, log *logrus.Entry) *Handler {
	return &Handler{
		Restaurants: restaurants,
		Ratings:     ratings,
		Orders:      orders,
		Stats:       stats,
		prefix:      strings.TrimSuffix(prefix, "/"),
		validate:    newValidator(),
		log:         log.WithField("component", "http"),
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix(h.prefix).Subrouter()
	if h.prefix == "" {
		api = r
	}

	api.HandleFunc("/health", h.healthCheck).Methods("GET")

	api.HandleFunc("/restaurants", h.listRestaurants).Methods("GET")
	api.HandleFunc("/restaurants/appearances/track", h.trackAppearances).Methods("POST")
	api.HandleFunc("/restaurants/update-appearances", h.updateAppearances).Methods("POST")
	api.HandleFunc("/restaurants/stats", h.getRestaurantStats).Methods("GET")
	api.HandleFunc("/restaurants/{id}", h.getRestaurant).Methods("GET")
	api.HandleFunc("/restaurants/{id}/menu", h.getMenu).Methods("GET")

	api.HandleFunc("/ratings", h.submitRating).Methods("POST")
	api.HandleFunc("/ratings/stats", h.getRatingStats).Methods("GET")

	api.HandleFunc("/orders/summary", h.getOrderSummary).Methods("GET")
	api.HandleFunc("/orders/{date}", h.replaceOrder).Methods("PUT")
	api.HandleFunc("/orders/{date}", h.deleteOrder).Methods("DELETE")
	api.HandleFunc("/orders/{date}/qrcode", h.getRatingQRCode).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "healthy", "service": "lunchstats"})
}

type unitResult struct {
	ID      string `json:"id"`
	OrderID string `json:"orderId,omitempty"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type trackResponse struct {
	Date        string       `json:"date"`
	Restaurants []unitResult `json:"restaurants"`
	Orders      []unitResult `json:"orders"`
	Failed      int          `json:"failed"`
}

// trackAppearances treats every restaurant and every order as its own unit of
// work. It only answers 500 when all units failed on the store.
func (h *Handler) trackAppearances(w http.ResponseWriter, r *http.Request) {
	var payload trackPayload
	if !h.decode(w, r, &payload) {
		return
	}
	if len(payload.Restaurants) == 0 && len(payload.Orders) == 0 {
		h.fail(w, r, &service.ValidationError{Field: "restaurants", Message: "restaurants or orders must be provided"})
		return
	}
	if len(payload.Orders) > 0 && strings.TrimSpace(payload.UserID) == "" {
		h.fail(w, r, &service.ValidationError{Field: "userId", Message: "is required with orders"})
		return
	}

	resp := trackResponse{
		Date:        payload.Date,
		Restaurants: make([]unitResult, 0, len(payload.Restaurants)),
		Orders:      make([]unitResult, 0, len(payload.Orders)),
	}
	units, faults := 0, 0

	for _, rp := range payload.Restaurants {
		units++
		result, err := h.Restaurants.TrackAppearance(r.Context(), service.TrackRequest{
			RestaurantID: rp.ID,
			Date:         payload.Date,
			Status:       rp.status(),
			Name:         rp.Name,
			Color:        rp.Color,
			Logo:         rp.Logo,
			Menu:         rp.Menu,
		})
		if err != nil {
			h.log.WithError(err).WithField("restaurant_id", rp.ID).Warn("tracking restaurant failed")
			resp.Failed++
			if service.IsStoreFault(err) {
				faults++
			}
			resp.Restaurants = append(resp.Restaurants, unitResult{ID: rp.ID, Status: "error", Message: err.Error()})
			continue
		}
		resp.Restaurants = append(resp.Restaurants, unitResult{ID: rp.ID, Status: trackStatus(result)})
	}

	if len(payload.Orders) > 0 {
		inputs := make([]service.OrderInput, 0, len(payload.Orders))
		for _, op := range payload.Orders {
			inputs = append(inputs, service.OrderInput{RestaurantID: op.RestaurantID, OrderID: op.OrderID, Items: op.Items})
		}
		outcomes, err := h.Orders.TrackOrders(r.Context(), payload.UserID, payload.Date, inputs)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		for _, outcome := range outcomes {
			units++
			if outcome.Err != nil {
				resp.Failed++
				if service.IsStoreFault(outcome.Err) {
					faults++
				}
			}
			resp.Orders = append(resp.Orders, unitResult{
				ID:      outcome.RestaurantID,
				OrderID: outcome.OrderID,
				Status:  outcome.Status,
				Message: outcome.Message,
			})
		}
	}

	if units > 0 && faults == units {
		respondError(w, http.StatusInternalServerError, "tracking failed", resp)
		return
	}
	respond(w, http.StatusOK, resp)
}

func trackStatus(result *service.TrackResult) string {
	switch {
	case result.Created:
		return "created"
	case result.Changed || result.MenuChanged:
		return "updated"
	default:
		return "unchanged"
	}
}

func (h *Handler) updateAppearances(w http.ResponseWriter, r *http.Request) {
	var payload updateAppearancesPayload
	if !h.decode(w, r, &payload) {
		return
	}
	rec, err := h.Restaurants.UpdateAppearances(r.Context(), payload.RestaurantID, payload.Appearances, payload.SoldOutDates)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, rec)
}

func (h *Handler) listRestaurants(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Restaurants.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"restaurants": ids, "count": len(ids)})
}

func (h *Handler) getRestaurant(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	view, err := h.Stats.Lookup(r.Context(), service.StatsQuery{
		RestaurantID: mux.Vars(r)["id"],
		UserID:       query.Get("userId"),
		OrderDate:    query.Get("orderDate"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, view)
}

func (h *Handler) getRestaurantStats(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	view, err := h.Stats.Compose(r.Context(), service.StatsQuery{
		RestaurantID: query.Get("restaurant"),
		UserID:       query.Get("userId"),
		OrderDate:    query.Get("orderDate"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, view)
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.Restaurants.GetMenu(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, menu)
}

func (h *Handler) submitRating(w http.ResponseWriter, r *http.Request) {
	var payload ratingPayload
	if !h.decode(w, r, &payload) {
		return
	}
	result, err := h.Ratings.Submit(r.Context(), service.RatingInput{
		UserID:       payload.UserID,
		RestaurantID: payload.Restaurant,
		OrderDate:    payload.OrderDate,
		Rating:       payload.Rating,
		Comment:      payload.Comment,
		Items:        payload.Items,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	status := http.StatusCreated
	if result.IsUpdate {
		status = http.StatusOK
	}
	respond(w, status, result)
}

func (h *Handler) getRatingStats(w http.ResponseWriter, r *http.Request) {
	view, err := h.Ratings.Stats(r.Context(), r.URL.Query().Get("restaurant"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, view)
}

func (h *Handler) getOrderSummary(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	summaries, err := h.Orders.Summary(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"userId": userID, "restaurants": summaries})
}

func (h *Handler) replaceOrder(w http.ResponseWriter, r *http.Request) {
	var payload replaceOrderPayload
	if !h.decode(w, r, &payload) {
		return
	}
	entry, err := h.Orders.ReplaceOrder(r.Context(), payload.UserID, payload.RestaurantID, mux.Vars(r)["date"], payload.Items)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, entry)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	date := mux.Vars(r)["date"]
	if err := h.Orders.DeleteOrder(r.Context(), query.Get("userId"), query.Get("restaurantId"), date); err != nil {
		h.fail(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"deleted": true, "date": date})
}

func (h *Handler) getRatingQRCode(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	png, err := h.Orders.RatingQR(r.Context(), query.Get("userId"), query.Get("restaurantId"), mux.Vars(r)["date"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
