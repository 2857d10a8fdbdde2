package models

// Category is one entry in the static complaint category catalog used by
// the dashboard dropdowns. There is no referential integrity between a
// complaint's type and this catalog.
type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// ComplaintCategories returns the category catalog
func ComplaintCategories() []Category {
	return []Category{
		{ID: 1, Name: "Potholes", Icon: "🕳️", Color: "orange"},
		{ID: 2, Name: "Garbage", Icon: "🗑️", Color: "green"},
		{ID: 3, Name: "Street Light", Icon: "💡", Color: "yellow"},
		{ID: 4, Name: "Drainage", Icon: "🚰", Color: "blue"},
		{ID: 5, Name: "Sewage", Icon: "🚿", Color: "brown"},
		{ID: 6, Name: "Roads", Icon: "🛣️", Color: "gray"},
		{ID: 7, Name: "Traffic Light", Icon: "🚦", Color: "red"},
		{ID: 8, Name: "Water Supply", Icon: "💧", Color: "cyan"},
		{ID: 9, Name: "Graffiti", Icon: "🎨", Color: "purple"},
	}
}
