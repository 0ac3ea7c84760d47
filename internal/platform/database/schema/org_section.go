package schema

// OrgSectionTable represents the 'org.section' table
type OrgSectionTable struct {
	Table        string
	ID           string
	DepartmentID string
	Name         string
	Slug         string
	CreatedAt    string
	UpdatedAt    string
}

var OrgSection = OrgSectionTable{
	Table:        "org.section",
	ID:           "id",
	DepartmentID: "departmentid",
	Name:         "name",
	Slug:         "slug",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}
