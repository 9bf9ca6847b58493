package domain

import "time"

// Post is a blog article.
type Post struct {
	Slug        string    `json:"slug" yaml:"slug"`
	Title       string    `json:"title" yaml:"title"`
	Author      string    `json:"author,omitempty" yaml:"author"`
	CoverURL    string    `json:"cover_url,omitempty" yaml:"cover_url"`
	BodyHTML    string    `json:"body_html" yaml:"body_html"`
	Tags        []string  `json:"tags,omitempty" yaml:"tags"`
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`
}

// PostPage is one page of the blog index.
type PostPage struct {
	Items      []Post `json:"items"`
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
}

// Notification is an account message shown on the notifications screen.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// UnreadCount counts notifications not yet marked read.
func UnreadCount(ns []Notification) int {
	n := 0
	for _, x := range ns {
		if !x.Read {
			n++
		}
	}
	return n
}
