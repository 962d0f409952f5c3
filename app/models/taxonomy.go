package models

// NewCategory returns a category with a derived slug.
func NewCategory(name string) *Category {
	return &Category{Name: name, Slug: Slugify(name)}
}

func (c *Category) String() string {
	return c.Name
}

// NewAuthor returns an author.
func NewAuthor(name, email string) *Author {
	return &Author{Name: name, Email: email}
}

func (a *Author) String() string {
	return a.Name
}
