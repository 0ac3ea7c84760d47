package schema

// OrgDepartmentTable represents the 'org.department' table
type OrgDepartmentTable struct {
	Table       string
	ID          string
	Name        string
	Slug        string
	Description string
	CreatedAt   string
	UpdatedAt   string
}

var OrgDepartment = OrgDepartmentTable{
	Table:       "org.department",
	ID:          "id",
	Name:        "name",
	Slug:        "slug",
	Description: "description",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}
