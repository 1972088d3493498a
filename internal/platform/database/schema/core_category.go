// Copyright (c) 2026 GalleManga. All rights reserved.

package schema

// CoreCategoryTable represents the 'core.category' table
type CoreCategoryTable struct {
	Table       string
	ID          string
	Name        string
	Description string
	CreatedAt   string
}

// CoreCategory is the schema definition for core.category
var CoreCategory = CoreCategoryTable{
	Table:       "core.category",
	ID:          "id",
	Name:        "name",
	Description: "description",
	CreatedAt:   "createdat",
}

func (t CoreCategoryTable) Columns() []string {
	return []string{t.ID, t.Name, t.Description, t.CreatedAt}
}
