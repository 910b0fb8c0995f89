package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"lunchstats/internal/cache"
	"lunchstats/internal/domain"

	"github.com/sirupsen/logrus"
)

type TrackRequest struct {
	RestaurantID string
	Date         string
	Status       string
	Name         string
	Color        string
	Logo         string
	// Menu is nil when the caller sent no snapshot.
	Menu []domain.MenuItem
}

type TrackResult struct {
	RestaurantID string `json:"restaurantId"`
	Created      bool   `json:"created"`
	Changed      bool   `json:"changed"`
	MenuChanged  bool   `json:"menuChanged"`
}

type RestaurantService struct {
	records
	now func() time.Time
}

func NewRestaurantService(accessor *cache.Accessor, log *logrus.Entry) *RestaurantService {
	return &RestaurantService{
		records: records{accessor: accessor, log: log},
		now:     time.Now,
	}
}

func validateTrack(req TrackRequest) error {
	if strings.TrimSpace(req.RestaurantID) == "" {
		return invalid("restaurantId", "is required")
	}
	if !domain.IsValidDate(req.Date) {
		return invalid("date", "must match YYYY-MM-DD")
	}
	switch req.Status {
	case "", domain.StatusAvailable, domain.StatusSoldOut:
	default:
		return invalid("status", "must be available or soldout")
	}
	return nil
}

// TrackAppearance records that the restaurant was offered on req.Date. Repeating a
// call that changes nothing performs no writes.
func (s *RestaurantService) TrackAppearance(ctx context.Context, req TrackRequest) (*TrackResult, error) {
	if err := validateTrack(req); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	result := &TrackResult{RestaurantID: req.RestaurantID}

	rec, err := s.loadRestaurant(ctx, req.RestaurantID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = domain.NewRestaurantRecord(req.RestaurantID, now)
		result.Created = true
		result.Changed = true
	}

	var added bool
	if rec.Appearances, added = domain.InsertDate(rec.Appearances, req.Date); added {
		rec.RefreshBounds()
		result.Changed = true
	}
	if req.Status == domain.StatusSoldOut {
		if rec.SoldOutDates, added = domain.InsertDate(rec.SoldOutDates, req.Date); added {
			result.Changed = true
		}
	}
	if applyDisplayFields(rec, req) {
		result.Changed = true
	}

	if result.Changed {
		rec.UpdatedAt = now
		if err := s.saveRestaurant(ctx, rec); err != nil {
			return nil, err
		}
	}

	if req.Menu != nil {
		changed, err := s.trackMenu(ctx, req.RestaurantID, req.Menu, now)
		if err != nil {
			return nil, err
		}
		result.MenuChanged = changed
	}

	s.log.WithFields(logrus.Fields{
		"restaurant_id": req.RestaurantID,
		"date":          req.Date,
		"changed":       result.Changed,
		"menu_changed":  result.MenuChanged,
	}).Debug("tracked appearance")
	return result, nil
}

// applyDisplayFields only accepts values that are non-empty, differ from the id and
// differ from what is stored, so a raw id never overwrites a known name.
func applyDisplayFields(rec *domain.RestaurantRecord, req TrackRequest) bool {
	changed := false
	accept := func(incoming, stored string) (string, bool) {
		incoming = strings.TrimSpace(incoming)
		if incoming == "" || incoming == rec.ID || incoming == stored {
			return stored, false
		}
		return incoming, true
	}

	stored := ""
	if rec.Name != nil {
		stored = *rec.Name
	}
	if name, ok := accept(req.Name, stored); ok {
		rec.Name = &name
		changed = true
	}
	if color, ok := accept(req.Color, rec.Color); ok {
		rec.Color = color
		changed = true
	}
	if logo, ok := accept(req.Logo, rec.Logo); ok {
		rec.Logo = logo
		changed = true
	}
	return changed
}

func (s *RestaurantService) trackMenu(ctx context.Context, restaurantID string, snapshot []domain.MenuItem, now time.Time) (bool, error) {
	// A snapshot with no usable items carries no menu information.
	incoming := domain.CleanMenuItems(snapshot)
	if len(incoming) == 0 {
		return false, nil
	}

	menu, err := s.loadMenu(ctx, restaurantID)
	if err != nil {
		return false, err
	}

	var existing []domain.MenuItem
	if menu != nil {
		existing = menu.Items
		if !domain.CompareMenus(existing, incoming) {
			return false, nil
		}
	}

	next := &domain.Menu{
		RestaurantID: restaurantID,
		Items:        domain.MergeMenu(existing, incoming),
		UpdatedAt:    now,
	}
	if err := s.saveMenu(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateAppearances overwrites both date lists. Inputs are sorted and deduplicated
// first; the record is created if it does not exist yet.
func (s *RestaurantService) UpdateAppearances(ctx context.Context, restaurantID string, appearances, soldOutDates []string) (*domain.RestaurantRecord, error) {
	if strings.TrimSpace(restaurantID) == "" {
		return nil, invalid("restaurantId", "is required")
	}
	for _, date := range append(slices.Clone(appearances), soldOutDates...) {
		if !domain.IsValidDate(date) {
			return nil, invalid("dates", "every date must match YYYY-MM-DD")
		}
	}

	now := s.now().UTC()
	rec, err := s.loadRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	created := rec == nil
	if created {
		rec = domain.NewRestaurantRecord(restaurantID, now)
	}

	nextAppearances := domain.NormalizeDates(appearances)
	nextSoldOut := domain.NormalizeDates(soldOutDates)
	if !created && slices.Equal(rec.Appearances, nextAppearances) && slices.Equal(rec.SoldOutDates, nextSoldOut) {
		return rec, nil
	}

	rec.Appearances = nextAppearances
	rec.SoldOutDates = nextSoldOut
	rec.RefreshBounds()
	rec.UpdatedAt = now
	if err := s.saveRestaurant(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *RestaurantService) Get(ctx context.Context, restaurantID string) (*domain.RestaurantRecord, error) {
	rec, err := s.loadRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

func (s *RestaurantService) GetMenu(ctx context.Context, restaurantID string) (*domain.Menu, error) {
	menu, err := s.loadMenu(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if menu == nil {
		return nil, ErrNotFound
	}
	return menu, nil
}

func (s *RestaurantService) List(ctx context.Context) ([]string, error) {
	return s.listRestaurantIDs(ctx)
}
