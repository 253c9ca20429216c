package entity

import (
	"time"
)

// Review is a single rating+text record attached to a book. Reviews are
// created once by the review transaction and never updated or deleted.
type Review struct {
	ID        string    `json:"id" firestore:"id"`
	Rating    int       `json:"rating" firestore:"rating"` // 1-5
	Text      string    `json:"text" firestore:"text"`
	UserID    string    `json:"user_id,omitempty" firestore:"userId"` // empty for anonymous reviews
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}
