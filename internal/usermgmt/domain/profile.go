package domain

import "time"

type ProfileKind string

const (
	ProfileNone              ProfileKind = "none"
	ProfileContentCreator    ProfileKind = "content_creator"
	ProfileProductionCompany ProfileKind = "production_company"
	ProfilePlatformAdmin     ProfileKind = "platform_admin"
	ProfileViewer            ProfileKind = "viewer"
)

// Profile holds the role specific part of a user. Exactly one payload
// matching Kind is set; ProfileNone carries none.
type Profile struct {
	Kind              ProfileKind               `json:"kind"`
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

// ProfileKindForRole maps a role id onto the profile shape users of that
// role carry. Unknown roles get no profile.
func ProfileKindForRole(roleID int64) ProfileKind {
	switch roleID {
	case RoleContentCreator:
		return ProfileContentCreator
	case RoleProductionCompany:
		return ProfileProductionCompany
	case RolePlatformAdmin:
		return ProfilePlatformAdmin
	case RoleViewer:
		return ProfileViewer
	default:
		return ProfileNone
	}
}

// DefaultProfile returns an empty profile of the shape matching roleID.
func DefaultProfile(roleID int64) Profile {
	kind := ProfileKindForRole(roleID)
	p := Profile{Kind: kind}
	switch kind {
	case ProfileContentCreator:
		p.ContentCreator = &ContentCreatorProfile{}
	case ProfileProductionCompany:
		p.ProductionCompany = &ProductionCompanyProfile{}
	case ProfilePlatformAdmin:
		p.PlatformAdmin = &PlatformAdminProfile{}
	case ProfileViewer:
		p.Viewer = &ViewerProfile{}
	}
	return p
}

// Normalize fills in a missing kind or payload so that stored profiles
// always match their role.
func (p Profile) Normalize(roleID int64) Profile {
	want := ProfileKindForRole(roleID)
	if p.Kind != want {
		return DefaultProfile(roleID)
	}
	def := DefaultProfile(roleID)
	switch want {
	case ProfileContentCreator:
		if p.ContentCreator == nil {
			return def
		}
		return Profile{Kind: want, ContentCreator: p.ContentCreator}
	case ProfileProductionCompany:
		if p.ProductionCompany == nil {
			return def
		}
		return Profile{Kind: want, ProductionCompany: p.ProductionCompany}
	case ProfilePlatformAdmin:
		if p.PlatformAdmin == nil {
			return def
		}
		return Profile{Kind: want, PlatformAdmin: p.PlatformAdmin}
	case ProfileViewer:
		if p.Viewer == nil {
			return def
		}
		return Profile{Kind: want, Viewer: p.Viewer}
	}
	return def
}

// DateOfBirth returns the birth date carried by person profiles, if any.
func (p Profile) DateOfBirth() *time.Time {
	switch {
	case p.ContentCreator != nil:
		return p.ContentCreator.DateOfBirth
	case p.PlatformAdmin != nil:
		return p.PlatformAdmin.DateOfBirth
	case p.Viewer != nil:
		return p.Viewer.DateOfBirth
	}
	return nil
}
