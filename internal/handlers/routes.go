package handlers

import "net/http"

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := NewHealthHandler()
	users := NewUserHandler(deps)
	videos := NewVideoHandler(deps)
	comments := NewCommentHandler(deps)
	tweets := NewTweetHandler(deps)
	likes := NewLikeHandler(deps)
	subscriptions := NewSubscriptionHandler(deps)
	playlists := NewPlaylistHandler(deps)
	dashboard := NewDashboardHandler(deps)

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return requireAuth(deps.Tokens, deps.Users, next)
	}
	credential := func(scope string, next http.HandlerFunc) http.HandlerFunc {
		return rateLimited(deps.CredentialLimiter, scope, next)
	}

	mux.HandleFunc("GET /api/v1/healthcheck", health.Check)

	mux.HandleFunc("POST /api/v1/users/register", credential("register", users.Register))
	mux.HandleFunc("POST /api/v1/users/login", credential("login", users.Login))
	mux.HandleFunc("POST /api/v1/users/refresh-token", credential("refresh", users.RefreshSession))
	mux.HandleFunc("POST /api/v1/users/logout", authed(users.Logout))
	mux.HandleFunc("POST /api/v1/users/change-password", authed(users.ChangePassword))
	mux.HandleFunc("GET /api/v1/users/current-user", authed(users.CurrentUser))
	mux.HandleFunc("PATCH /api/v1/users/update-account", authed(users.UpdateAccount))
	mux.HandleFunc("PATCH /api/v1/users/avatar", authed(users.UpdateAvatar))
	mux.HandleFunc("PATCH /api/v1/users/cover-image", authed(users.UpdateCoverImage))
	mux.HandleFunc("GET /api/v1/users/c/{username}", authed(users.ChannelProfile))
	mux.HandleFunc("GET /api/v1/users/history", authed(users.WatchHistory))

	mux.HandleFunc("GET /api/v1/video", videos.List)
	mux.HandleFunc("POST /api/v1/video", authed(videos.Publish))
	mux.HandleFunc("GET /api/v1/video/{videoId}", authed(videos.Get))
	mux.HandleFunc("PATCH /api/v1/video/{videoId}", authed(videos.Update))
	mux.HandleFunc("DELETE /api/v1/video/{videoId}", authed(videos.Delete))
	mux.HandleFunc("PATCH /api/v1/video/toggle/publish/{videoId}", authed(videos.TogglePublish))

	mux.HandleFunc("GET /api/v1/comment/{videoId}", authed(comments.List))
	mux.HandleFunc("POST /api/v1/comment/{videoId}", authed(comments.Create))
	mux.HandleFunc("PATCH /api/v1/comment/c/{commentId}", authed(comments.Update))
	mux.HandleFunc("DELETE /api/v1/comment/c/{commentId}", authed(comments.Delete))

	mux.HandleFunc("POST /api/v1/likes/toggle/v/{videoId}", authed(likes.ToggleVideo))
	mux.HandleFunc("POST /api/v1/likes/toggle/c/{commentId}", authed(likes.ToggleComment))
	mux.HandleFunc("POST /api/v1/likes/toggle/t/{tweetId}", authed(likes.ToggleTweet))
	mux.HandleFunc("GET /api/v1/likes/videos", authed(likes.LikedVideos))

	mux.HandleFunc("POST /api/v1/subscriptions/c/{channelId}", authed(subscriptions.Toggle))
	mux.HandleFunc("GET /api/v1/subscriptions/c/{channelId}", authed(subscriptions.Subscribers))
	mux.HandleFunc("GET /api/v1/subscriptions/u/{subscriberId}", authed(subscriptions.SubscribedChannels))

	mux.HandleFunc("POST /api/v1/tweet", authed(tweets.Create))
	mux.HandleFunc("GET /api/v1/tweet/user/{userId}", authed(tweets.ListForUser))
	mux.HandleFunc("PATCH /api/v1/tweet/{tweetId}", authed(tweets.Update))
	mux.HandleFunc("DELETE /api/v1/tweet/{tweetId}", authed(tweets.Delete))

	mux.HandleFunc("POST /api/v1/playlist", authed(playlists.Create))
	mux.HandleFunc("GET /api/v1/playlist/{playlistId}", authed(playlists.Get))
	mux.HandleFunc("PATCH /api/v1/playlist/{playlistId}", authed(playlists.Update))
	mux.HandleFunc("DELETE /api/v1/playlist/{playlistId}", authed(playlists.Delete))
	mux.HandleFunc("PATCH /api/v1/playlist/add/{videoId}/{playlistId}", authed(playlists.AddVideo))
	mux.HandleFunc("PATCH /api/v1/playlist/remove/{videoId}/{playlistId}", authed(playlists.RemoveVideo))
	mux.HandleFunc("GET /api/v1/playlist/user/{userId}", authed(playlists.ListForUser))

	mux.HandleFunc("GET /api/v1/dashboard/stats", authed(dashboard.Stats))
	mux.HandleFunc("GET /api/v1/dashboard/videos", authed(dashboard.Videos))
}
