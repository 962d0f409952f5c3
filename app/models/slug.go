package models

import "github.com/gosimple/slug"

// Slugify derives the URL slug for a title or name.
func Slugify(text string) string {
	return slug.Make(text)
}
