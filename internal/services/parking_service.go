package services

import (
	"context"
	"strings"

	"github.com/parkseva/api/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageSize = 8
	MaxPageSize     = 24
	// MaxPage keeps (page-1)*MaxPageSize well inside int range.
	MaxPage = 100000
)

// normalizePage clamps page into [1, MaxPage] and limit into
// [1, MaxPageSize], defaulting an unset limit.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit == 0 {
		limit = DefaultPageSize
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

type SearchSpotsRequest struct {
	Query         string   `form:"query" validate:"max=100"`
	Date          string   `form:"date" validate:"omitempty,datetime=2006-01-02"`
	StartTime     string   `form:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime       string   `form:"endTime" validate:"omitempty,datetime=15:04"`
	MaxPrice      *float64 `form:"maxPrice" validate:"omitempty,gte=0"`
	OnlyAvailable *bool    `form:"onlyAvailable"`
	Sort          string   `form:"sort"`
	Page          int      `form:"page" validate:"max=100000"`
	Limit         int      `form:"limit"`
}

type SpotResult struct {
	*models.Spot
	Available bool `json:"available"`
}

type SearchSpotsResult struct {
	Results []SpotResult `json:"results"`
	models.Page
}

type ParkingService struct {
	spotsRepo    models.SpotsRepo
	availability *AvailabilityChecker
}

func NewParkingService(spotsRepo models.SpotsRepo, availability *AvailabilityChecker) *ParkingService {
	return &ParkingService{
		spotsRepo:    spotsRepo,
		availability: availability,
	}
}

// Search pages through active spots. When a full date and time window is
// given every result is checked against the ledger, and with OnlyAvailable
// (the default) spots without capacity are dropped from the page. Dropping
// happens after paging, so a page can be short while Total still counts the
// unfiltered matches.
func (ps *ParkingService) Search(ctx context.Context, req SearchSpotsRequest) (*SearchSpotsResult, error) {
	req.Query = strings.TrimSpace(req.Query)
	if err := models.Validate.Struct(req); err != nil {
		return nil, err
	}

	var (
		window    models.TimeWindow
		hasWindow bool
	)
	if req.Date != "" && req.StartTime != "" && req.EndTime != "" {
		w, err := models.ParseTimeWindow(req.StartTime, req.EndTime)
		if err != nil {
			return nil, err
		}
		window, hasWindow = w, true
	}

	page, limit := normalizePage(req.Page, req.Limit)
	spots, total, err := ps.spotsRepo.SearchSpots(ctx, models.SpotSearch{
		Query:    req.Query,
		MaxPrice: req.MaxPrice,
		Sort:     models.NormalizeSort(req.Sort),
		Offset:   (page - 1) * limit,
		Limit:    limit,
	})
	if err != nil {
		return nil, err
	}

	var available map[primitive.ObjectID]bool
	if hasWindow && len(spots) > 0 {
		available, err = ps.availability.Annotate(ctx, spots, req.Date, window)
		if err != nil {
			return nil, err
		}
	}

	onlyAvailable := req.OnlyAvailable == nil || *req.OnlyAvailable
	results := make([]SpotResult, 0, len(spots))
	for _, s := range spots {
		ok := true
		if hasWindow {
			ok = available[s.ID]
		}
		if hasWindow && onlyAvailable && !ok {
			continue
		}
		results = append(results, SpotResult{Spot: s, Available: ok})
	}

	return &SearchSpotsResult{
		Results: results,
		Page: models.Page{
			TotalPages: models.TotalPages(total, limit),
			Total:      total,
		},
	}, nil
}
