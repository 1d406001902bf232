package catalog

import (
	"math"
	"strings"
)

const maxStars = 5

// StarRating is the glyph breakdown of a 0-5 rating: whole points render
// full, a remainder of at least .5 renders one half star.
type StarRating struct {
	Full  int    `json:"full"`
	Half  int    `json:"half"`
	Empty int    `json:"empty"`
	Text  string `json:"text"`
}

// Stars converts rating into glyph counts. Out-of-range ratings are clamped.
func Stars(rating float64) StarRating {
	if math.IsNaN(rating) || rating < 0 {
		rating = 0
	}
	if rating > maxStars {
		rating = maxStars
	}
	full := int(math.Floor(rating))
	half := 0
	if rating-float64(full) >= 0.5 && full < maxStars {
		half = 1
	}
	empty := maxStars - full - half
	return StarRating{
		Full:  full,
		Half:  half,
		Empty: empty,
		Text:  strings.Repeat("★", full) + strings.Repeat("⯪", half) + strings.Repeat("☆", empty),
	}
}
