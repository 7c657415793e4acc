package confighandler

import (
	"context"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"kudos/internal/domain/feedback"
	"kudos/internal/domain/period"
	"kudos/internal/transport/http/api"
	"kudos/internal/transport/http/middleware"
	"kudos/internal/transport/http/shared"
)

type CategoryLister interface {
	Categories(ctx context.Context, kind string) ([]feedback.Category, error)
}

type Handler struct {
	Categories CategoryLister
	Rating     feedback.RatingConfig
}

func NewHandler(categories CategoryLister, rating feedback.RatingConfig) *Handler {
	return &Handler{Categories: categories, Rating: rating}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/config", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleConfig)
		r.Get("/categories", h.handleCategories)
	})
}

type ratingBand struct {
	Rating   feedback.Rating `json:"rating"`
	Label    string          `json:"label"`
	MinRed   float64         `json:"minPercentageRed"`
	HasFloor bool            `json:"hasFloor"`
}

type clientConfig struct {
	Categories  []string         `json:"categories"`
	KudosBadges []feedback.Badge `json:"kudosBadges"`
	Periods     []period.Option  `json:"periods"`
	Ratings     []ratingBand     `json:"ratings"`
	DefaultIcon string           `json:"defaultBadgeIcon"`
}

func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	var official, kudos []feedback.Category
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		official, err = h.Categories.Categories(ctx, feedback.CategoryKindOfficial)
		return err
	})
	g.Go(func() error {
		var err error
		kudos, err = h.Categories.Categories(ctx, feedback.CategoryKindKudos)
		return err
	})
	if err := g.Wait(); err != nil {
		shared.FailError(w, reqID, err, "config_failed", "failed to load configuration")
		return
	}

	badges := make([]feedback.Badge, 0, len(kudos))
	for _, c := range kudos {
		badges = append(badges, feedback.BadgeFromComment(c.Name))
	}
	api.Success(w, clientConfig{
		Categories:  categoryNames(official),
		KudosBadges: badges,
		Periods:     period.Options(),
		Ratings:     h.ratingBands(),
		DefaultIcon: feedback.DefaultBadgeIcon,
	}, reqID)
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	categories, err := h.Categories.Categories(r.Context(), feedback.CategoryKindOfficial)
	if err != nil {
		shared.FailError(w, reqID, err, "categories_failed", "failed to load categories")
		return
	}
	api.Success(w, categoryNames(categories), reqID)
}

func categoryNames(categories []feedback.Category) []string {
	sorted := make([]feedback.Category, len(categories))
	copy(sorted, categories)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SortOrder < sorted[j].SortOrder })
	names := make([]string, 0, len(sorted))
	for _, c := range sorted {
		names = append(names, c.Name)
	}
	return names
}

func (h *Handler) ratingBands() []ratingBand {
	return []ratingBand{
		{Rating: feedback.RatingExcellent, Label: h.Rating.Label(feedback.RatingExcellent), MinRed: h.Rating.Excellent, HasFloor: true},
		{Rating: feedback.RatingGood, Label: h.Rating.Label(feedback.RatingGood), MinRed: h.Rating.Good, HasFloor: true},
		{Rating: feedback.RatingSatisfactory, Label: h.Rating.Label(feedback.RatingSatisfactory), MinRed: h.Rating.Satisfactory, HasFloor: true},
		{Rating: feedback.RatingUnsatisfactory, Label: h.Rating.Label(feedback.RatingUnsatisfactory)},
		{Rating: feedback.RatingNoData, Label: h.Rating.Label(feedback.RatingNoData)},
	}
}
