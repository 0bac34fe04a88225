package handlers

import (
	"net/http"

	"github.com/tweettube/backend/internal/repositories"
)

// DashboardHandler serves the channel owner's dashboard.
type DashboardHandler struct {
	videos        VideoStore
	subscriptions SubscriptionStore
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(deps Dependencies) *DashboardHandler {
	return &DashboardHandler{videos: deps.Videos, subscriptions: deps.Subscriptions}
}

// channelDashboardStats aggregates the caller's channel counters.
type channelDashboardStats struct {
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalLikes       int64 `json:"totalLikes"`
}

// Stats returns live aggregate counters for the caller's channel.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	stats, err := h.videos.Stats(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	subscribers, err := h.subscriptions.CountSubscribers(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, channelDashboardStats{
		TotalSubscribers: subscribers,
		TotalVideos:      stats.TotalVideos,
		TotalViews:       stats.TotalViews,
		TotalLikes:       stats.TotalLikes,
	}, "Channel stats fetched successfully")
}

type dateParts struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// dashboardVideo is a channel video row with the creation date broken into
// calendar parts for the dashboard UI.
type dashboardVideo struct {
	repositories.ChannelVideo
	CreatedAt dateParts `json:"createdAt"`
}

// Videos lists every video on the caller's channel, unpublished included,
// with live like counts.
func (h *DashboardHandler) Videos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	rows, err := h.videos.ListByOwner(ctx, user.ID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	videos := make([]dashboardVideo, 0, len(rows))
	for _, row := range rows {
		year, month, day := row.Video.CreatedAt.Date()
		videos = append(videos, dashboardVideo{
			ChannelVideo: row,
			CreatedAt:    dateParts{Year: year, Month: int(month), Day: day},
		})
	}

	respondData(ctx, w, http.StatusOK, videos, "Channel videos fetched successfully")
}
