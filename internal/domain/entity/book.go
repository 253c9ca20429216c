package entity

import (
	"time"
)

// Book is a reviewable item. The rating rollup fields (NumRatings,
// SumRating, AvgRating) are derived from the ratings subcollection and
// are only ever written by the review transaction, never by handlers.
type Book struct {
	ID              string    `json:"id" firestore:"id"`
	Title           string    `json:"title" firestore:"title"`
	Author          string    `json:"author" firestore:"author"`
	Genre           string    `json:"genre" firestore:"genre"`
	PublicationYear int       `json:"publication_year" firestore:"publicationYear"`
	Price           int       `json:"price" firestore:"price"` // ordinal tier, 1-4
	Photo           string    `json:"photo,omitempty" firestore:"photo,omitempty"`
	NumRatings      int       `json:"num_ratings" firestore:"numRatings"`
	SumRating       float64   `json:"sum_rating" firestore:"sumRating"`
	AvgRating       float64   `json:"avg_rating" firestore:"avgRating"`
	Timestamp       time.Time `json:"timestamp" firestore:"timestamp"`
}

// ApplyRating returns the rollup fields after one more rating is
// counted. A zero-valued book yields 1/rating/rating, so the first
// review initializes the rollup without a special case.
func (b *Book) ApplyRating(rating int) (numRatings int, sumRating, avgRating float64) {
	numRatings = b.NumRatings + 1
	sumRating = b.SumRating + float64(rating)
	avgRating = sumRating / float64(numRatings)
	return numRatings, sumRating, avgRating
}
