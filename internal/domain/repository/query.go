package repository

// BookFilter holds the user-supplied listing options. Zero values mean
// "not filtered". Price is the raw "$" token from the filter bar; its
// length selects the price tier.
type BookFilter struct {
	Genre           string
	Author          string
	PublicationYear int
	Price           string
	Sort            string // "Rating" (default) or "Review"
}

// Predicate is a single equality condition over a stored field.
type Predicate struct {
	Field string
	Value interface{}
}

// SortSpec orders results by one field.
type SortSpec struct {
	Field      string
	Descending bool
}

// BookQuery is a composed filter+sort specification. It is a pure value:
// identical filters always produce an identical query, with predicates
// in a fixed order and exactly one sort directive.
type BookQuery struct {
	Predicates []Predicate
	Sort       SortSpec
}

const (
	SortByRating = "Rating"
	SortByReview = "Review"
)

// BuildBookQuery translates filter options into a BookQuery. All
// non-empty filters compose conjunctively as equality predicates, in the
// order genre, author, publicationYear, price. The price token maps to
// its tier by length ("$$" filters for tier 2). Sort defaults to average
// rating descending; "Review" sorts by review count descending.
func BuildBookQuery(f BookFilter) BookQuery {
	var q BookQuery

	if f.Genre != "" {
		q.Predicates = append(q.Predicates, Predicate{Field: "genre", Value: f.Genre})
	}
	if f.Author != "" {
		q.Predicates = append(q.Predicates, Predicate{Field: "author", Value: f.Author})
	}
	if f.PublicationYear != 0 {
		q.Predicates = append(q.Predicates, Predicate{Field: "publicationYear", Value: f.PublicationYear})
	}
	if f.Price != "" {
		q.Predicates = append(q.Predicates, Predicate{Field: "price", Value: len(f.Price)})
	}

	switch f.Sort {
	case SortByReview:
		q.Sort = SortSpec{Field: "numRatings", Descending: true}
	default:
		q.Sort = SortSpec{Field: "avgRating", Descending: true}
	}

	return q
}
