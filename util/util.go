// Package util is a set of utility variables or methods
package util

import mapset "github.com/deckarep/golang-set/v2"

// SupportedImageExt are media extensions accepted for hero and promo assets.
var SupportedImageExt = mapset.NewSet(
	".jpeg", ".jpg", ".JPEG", ".JPG",
	".png", ".PNG",
	".webp", ".WEBP",
)

// SupportedFragmentExt are slide fragment file extensions.
var SupportedFragmentExt = mapset.NewSet(".html", ".htm")

// KnownSlides are the slide keys the admin form knows about, in form order.
var KnownSlides = []string{"status", "events", "hours", "games", "leaderboard", "promo", "memes", "faculty"}
