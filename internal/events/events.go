// Package events declares the storefront's typed bus events. Publishers and
// subscribers share these declarations instead of raw topic strings.
package events

import (
	"time"

	"github.com/nfrund/zina/internal/pubsub"
)

// FavoriteToggledPayload is published when a product enters or leaves a
// signed-in customer's favorites.
type FavoriteToggledPayload struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Added       bool      `json:"added"`
	At          time.Time `json:"at"`
}

// ProfileUpdatedPayload is published after a successful profile save.
type ProfileUpdatedPayload struct {
	Name string    `json:"name"`
	At   time.Time `json:"at"`
}

// SignedInPayload is published after login or registration.
type SignedInPayload struct {
	Registered bool      `json:"registered"`
	At         time.Time `json:"at"`
}

var (
	FavoriteToggled = pubsub.NewEvent[FavoriteToggledPayload]("favorites.toggled", "A product was added to or removed from favorites")
	ProfileUpdated  = pubsub.NewEvent[ProfileUpdatedPayload]("profile.updated", "The customer saved their profile")
	SignedIn        = pubsub.NewEvent[SignedInPayload]("auth.signed_in", "The customer signed in or registered")
)
