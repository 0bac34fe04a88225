package handlers

import (
	"net/http"
)

// SubscriptionHandler serves subscription toggles and listings.
type SubscriptionHandler struct {
	subscriptions      SubscriptionStore
	users              UserStore
	allowSelfSubscribe bool
}

// NewSubscriptionHandler constructs a SubscriptionHandler.
func NewSubscriptionHandler(deps Dependencies) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions:      deps.Subscriptions,
		users:              deps.Users,
		allowSelfSubscribe: deps.AllowSelfSubscribe,
	}
}

// Toggle flips the caller's subscription to a channel and reports the new
// state. Subscribing to one's own channel is allowed unless disabled by
// configuration.
func (h *SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, _ := currentUser(ctx)

	channelID, err := pathID(r, "channelId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if !h.allowSelfSubscribe && channelID == user.ID {
		respondError(ctx, w, errBadRequest("Cannot subscribe to your own channel"))
		return
	}

	if _, err := h.users.FindByID(ctx, channelID); err != nil {
		respondError(ctx, w, notFoundAs(err, "Channel does not exist"))
		return
	}

	subscribed, err := h.subscriptions.Toggle(ctx, user.ID, channelID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, map[string]any{"isSubscribed": subscribed}, "Subscription toggled successfully")
}

// Subscribers lists a channel's subscribers with their live subscriber
// counts and whether the channel subscribes back.
func (h *SubscriptionHandler) Subscribers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	channelID, err := pathID(r, "channelId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if _, err := h.users.FindByID(ctx, channelID); err != nil {
		respondError(ctx, w, notFoundAs(err, "Channel does not exist"))
		return
	}

	subscribers, err := h.subscriptions.ListSubscribers(ctx, channelID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, subscribers, "Subscribers fetched successfully")
}

// SubscribedChannels lists the channels a user subscribes to, each with its
// latest published video when one exists.
func (h *SubscriptionHandler) SubscribedChannels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subscriberID, err := pathID(r, "subscriberId")
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	if _, err := h.users.FindByID(ctx, subscriberID); err != nil {
		respondError(ctx, w, notFoundAs(err, "User not found"))
		return
	}

	channels, err := h.subscriptions.ListSubscribedChannels(ctx, subscriberID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, channels, "Subscribed channels fetched successfully")
}
