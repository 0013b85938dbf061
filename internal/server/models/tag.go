package models

type TagCategory string

const (
	TagPositive TagCategory = "POSITIVE"
	TagNegative TagCategory = "NEGATIVE"
)

func (c TagCategory) Valid() bool {
	return c == TagPositive || c == TagNegative
}

// Tag is a predefined review descriptor. Tags sharing a non-empty Group are
// mutually exclusive within one review.
type Tag struct {
	ID       int64
	Name     string
	Category TagCategory
	Group    string
}
