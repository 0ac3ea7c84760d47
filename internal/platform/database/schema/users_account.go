package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table        string
	ID           string
	Username     string
	Password     string
	DisplayName  string
	Role         string
	IsActive     string
	TokenVersion string
	LastLoginAt  string
	DepartmentID string
	SectionID    string
	CreatedAt    string
	UpdatedAt    string
	DeletedAt    string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:        "users.account",
	ID:           "id",
	Username:     "username",
	Password:     "passwordhash",
	DisplayName:  "displayname",
	Role:         "role",
	IsActive:     "isactive",
	TokenVersion: "tokenversion",
	LastLoginAt:  "lastloginat",
	DepartmentID: "departmentid",
	SectionID:    "sectionid",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
	DeletedAt:    "deletedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Username, t.Password, t.DisplayName, t.Role, t.IsActive,
		t.TokenVersion, t.LastLoginAt, t.DepartmentID, t.SectionID,
		t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
