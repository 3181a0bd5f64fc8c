package usersdk

import (
	"encoding/json"
	"time"
)

// ============================================================================
// Envelope
// ============================================================================

// Envelope is the body of every response the service writes. Data is kept
// raw so callers can decode it into the type the endpoint documents.
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	Type       string          `json:"type"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// ============================================================================
// Authentication Types
// ============================================================================

// LoginRequest authenticates with a username or email and a password.
type LoginRequest struct {
	// Username is the account's username or email
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by login, account update and password reset.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        UserInfo  `json:"user"`
}

// LogoutResponse reports whether the call changed the account status.
// LoggedOut is false when the account was already logged out.
type LogoutResponse struct {
	LoggedOut bool `json:"loggedOut"`
}

// ============================================================================
// Account Types
// ============================================================================

// RegisterRequest creates a new account. RoleID selects the profile shape.
type RegisterRequest struct {
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	Password       string   `json:"password"`
	RecoveryEmail  string   `json:"recoveryEmail,omitempty"`
	PhoneNumber    string   `json:"phoneNumber,omitempty"`
	ProfileImgPath string   `json:"profileImgPath,omitempty"`
	Country        string   `json:"country,omitempty"`
	State          string   `json:"state,omitempty"`
	ZipCode        string   `json:"zipCode,omitempty"`
	RoleID         int64    `json:"roleId"`
	Profile        *Profile `json:"profile,omitempty"`
}

// UpdateAccountRequest changes the non-empty fields of an account.
// UserID defaults to the caller; only admins may name another account.
type UpdateAccountRequest struct {
	UserID         int64  `json:"userId,omitempty"`
	Username       string `json:"username,omitempty"`
	Email          string `json:"email,omitempty"`
	Password       string `json:"password,omitempty"`
	RecoveryEmail  string `json:"recoveryEmail,omitempty"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	ProfileImgPath string `json:"profileImgPath,omitempty"`
	Country        string `json:"country,omitempty"`
	State          string `json:"state,omitempty"`
	ZipCode        string `json:"zipCode,omitempty"`
}

// DeactivateRequest names the account to deactivate. Zero means the caller.
type DeactivateRequest struct {
	UserID int64 `json:"userId,omitempty"`
}

// ResetPasswordRequest sets a new password after proving control of the
// email with a verification code.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

// VerifyEmailRequest consumes a code and activates the matching account.
type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// UserInfo is the public view of an account. The password hash is never
// returned.
type UserInfo struct {
	ID              int64     `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	RecoveryEmail   string    `json:"recoveryEmail,omitempty"`
	PhoneNumber     string    `json:"phoneNumber,omitempty"`
	ProfileImgPath  string    `json:"profileImgPath,omitempty"`
	Country         string    `json:"country,omitempty"`
	State           string    `json:"state,omitempty"`
	ZipCode         string    `json:"zipCode,omitempty"`
	RoleID          int64     `json:"roleId"`
	AccountStatusID int64     `json:"accountStatusId"`
	Profile         Profile   `json:"profile"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// UserPage is one page of GET /users/{limit}/{cursor}.
type UserPage struct {
	Users      []UserInfo `json:"users"`
	Cursor     int        `json:"cursor"`
	NextCursor int        `json:"nextCursor"`
}

// CountResponse is returned by GET /users/count.
type CountResponse struct {
	Total int64 `json:"total"`
}

// LoginHistoryInfo is one login attempt.
type LoginHistoryInfo struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"userId"`
	LoginTimestamp  time.Time `json:"loginTimestamp"`
	IPAddress       string    `json:"ipAddress"`
	Device          string    `json:"device"`
	FailedAttempts  int       `json:"failedAttempts"`
	LoginSuccessful bool      `json:"loginSuccessful"`
}

// ============================================================================
// Profile Types
// ============================================================================

// Profile kinds as they appear on the wire.
const (
	ProfileNone              = "none"
	ProfileContentCreator    = "content_creator"
	ProfileProductionCompany = "production_company"
	ProfilePlatformAdmin     = "platform_admin"
	ProfileViewer            = "viewer"
)

// Profile is the role specific part of an account. Only the payload that
// matches Kind is set.
type Profile struct {
	Kind              string                    `json:"kind"`
	ContentCreator    *ContentCreatorProfile    `json:"contentCreator,omitempty"`
	ProductionCompany *ProductionCompanyProfile `json:"productionCompany,omitempty"`
	PlatformAdmin     *PlatformAdminProfile     `json:"platformAdmin,omitempty"`
	Viewer            *ViewerProfile            `json:"viewer,omitempty"`
}

type ContentCreatorProfile struct {
	FirstName    string     `json:"firstName,omitempty"`
	LastName     string     `json:"lastName,omitempty"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	Nrc          string     `json:"nrc,omitempty"`
	Biography    string     `json:"biography,omitempty"`
	SocialLinks  string     `json:"socialLinks,omitempty"`
	PortfolioURL string     `json:"portfolioUrl,omitempty"`
}

type ProductionCompanyProfile struct {
	CompanyName    string     `json:"companyName,omitempty"`
	CompanyWebsite string     `json:"companyWebsite,omitempty"`
	FoundingDate   *time.Time `json:"foundingDate,omitempty"`
	Biography      string     `json:"biography,omitempty"`
	SocialLinks    string     `json:"socialLinks,omitempty"`
	PortfolioURL   string     `json:"portfolioUrl,omitempty"`
}

type PlatformAdminProfile struct {
	FirstName      string     `json:"firstName,omitempty"`
	LastName       string     `json:"lastName,omitempty"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty"`
	EmploymentDate *time.Time `json:"employmentDate,omitempty"`
	JobRole        string     `json:"jobRole,omitempty"`
}

type ViewerProfile struct {
	FirstName   string     `json:"firstName,omitempty"`
	LastName    string     `json:"lastName,omitempty"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
}

// ============================================================================
// Role Types
// ============================================================================

// PermissionInfo is one entry of a role's permission list.
type PermissionInfo struct {
	ID           int64  `json:"id"`
	RoleID       int64  `json:"roleId"`
	PermissionID int64  `json:"permissionId"`
	Name         string `json:"name"`
	Description  string `json:"description"`
}

// RoleInfo is a role with its ordered permissions.
type RoleInfo struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Permissions []PermissionInfo `json:"permissions"`
}

// RoleRequest creates a role or replaces one, permissions included.
type RoleRequest struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Permissions []PermissionRequest `json:"permissions"`
}

// PermissionRequest describes one permission of a role, or the new name
// and description of an existing permission.
type PermissionRequest struct {
	PermissionID int64  `json:"permissionId"`
	Name         string `json:"name"`
	Description  string `json:"description"`
}

// ============================================================================
// Account Status Types
// ============================================================================

type AccountStatusInfo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AccountStatusRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ============================================================================
// Verification Types
// ============================================================================

// CodeResponse reports the outcome of sending or validating a code.
type CodeResponse struct {
	Email   string `json:"email"`
	Success bool   `json:"success"`
}

// ============================================================================
// Bootstrap Types
// ============================================================================

// BootstrapRequest creates the first platform admin.
type BootstrapRequest struct {
	AdminUsername string `json:"adminUsername"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword,omitempty"` // Empty asks the service to generate one
}

// BootstrapResponse is the data of a successful POST /bootstrap.
type BootstrapResponse struct {
	Admin             UserInfo `json:"admin"`
	GeneratedPassword string   `json:"generatedPassword,omitempty"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is the data of /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks is only filled in by /readyz.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}
