package models

import "time"

// Product is a catalog listing owned by exactly one user.
type Product struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Area        string    `json:"area" db:"area"`
	Regions     string    `json:"regions" db:"regions"`
	Ingredients string    `json:"ingredients" db:"ingredients"`
	DateAdded   time.Time `json:"date_added" db:"date_added"`
	UserID      int       `json:"user_id" db:"user_id"`
}

// ProductFields is the writable field set of a product. On update every field
// overwrites the stored value, so callers must send the complete current set.
type ProductFields struct {
	Name        string
	Description string
	Area        string
	Regions     string
	Ingredients string
	DateAdded   time.Time
	UserID      int
}

// Fields returns the writable fields of p.
func (p Product) Fields() ProductFields {
	return ProductFields{
		Name:        p.Name,
		Description: p.Description,
		Area:        p.Area,
		Regions:     p.Regions,
		Ingredients: p.Ingredients,
		DateAdded:   p.DateAdded,
		UserID:      p.UserID,
	}
}

// Apply overwrites every writable field of p with f.
func (p *Product) Apply(f ProductFields) {
	p.Name = f.Name
	p.Description = f.Description
	p.Area = f.Area
	p.Regions = f.Regions
	p.Ingredients = f.Ingredients
	p.DateAdded = f.DateAdded
	p.UserID = f.UserID
}
