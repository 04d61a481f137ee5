package models

// Art carries the resolved image locators of a record plus the badge color
// computed from the poster at download time. The color is persisted, not
// recomputed per render.
type Art struct {
	PosterPath   string // file:// or resource:// locator
	BackdropPath string // file:// locator or empty
	Color        bool   // true: poster corner is dark, use a light badge
}
