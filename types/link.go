package types

import "time"

// Link maps a short slug to a destination URL.
type Link struct {
	// ID is the opaque unique identifier of the link.
	ID string `json:"id" db:"id"`

	// Slug is the short identifier visitors use. Unique across the whole
	// namespace, not per user.
	Slug string `json:"slug" db:"slug"`

	// URL is the destination the slug redirects to.
	URL string `json:"url" db:"url"`

	// Title is the human-readable label shown on the dashboard.
	Title string `json:"title" db:"title"`

	// Publish marks the link as published on the dashboard.
	Publish bool `json:"publish" db:"publish"`

	// UserID is the identifier of the owning user.
	UserID string `json:"user_id" db:"user_id"`

	// Clicks is the number of recorded visits, maintained by the click
	// worker. Zero when click recording is disabled.
	Clicks int64 `json:"clicks" db:"clicks"`

	// CreatedAt is the timestamp at which the link was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
