package domain

import "time"

// Seeded role ids.
const (
	RoleContentCreator    int64 = 1
	RoleProductionCompany int64 = 2
	RolePlatformAdmin     int64 = 3
	RoleViewer            int64 = 4
)

type Role struct {
	ID          int64
	Name        string
	Description string
	Permissions []RolePermission // Ordered by id
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type RolePermission struct {
	ID           int64
	RoleID       int64
	PermissionID int64
	Name         string
	Description  string
}
