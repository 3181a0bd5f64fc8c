package http

import (
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/pkg/usersdk"
)

func toUserInfo(u domain.User) usersdk.UserInfo {
	return usersdk.UserInfo{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		RecoveryEmail:   u.RecoveryEmail,
		PhoneNumber:     u.PhoneNumber,
		ProfileImgPath:  u.ProfileImgPath,
		Country:         u.Country,
		State:           u.State,
		ZipCode:         u.ZipCode,
		RoleID:          u.RoleID,
		AccountStatusID: u.AccountStatusID,
		Profile:         toSDKProfile(u.Profile),
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func toUserInfos(users []domain.User) []usersdk.UserInfo {
	out := make([]usersdk.UserInfo, len(users))
	for i, u := range users {
		out[i] = toUserInfo(u)
	}
	return out
}

// The payload structs share their layout with the domain ones.
func toSDKProfile(p domain.Profile) usersdk.Profile {
	return usersdk.Profile{
		Kind:              string(p.Kind),
		ContentCreator:    (*usersdk.ContentCreatorProfile)(p.ContentCreator),
		ProductionCompany: (*usersdk.ProductionCompanyProfile)(p.ProductionCompany),
		PlatformAdmin:     (*usersdk.PlatformAdminProfile)(p.PlatformAdmin),
		Viewer:            (*usersdk.ViewerProfile)(p.Viewer),
	}
}

func fromSDKProfile(p usersdk.Profile) domain.Profile {
	return domain.Profile{
		Kind:              domain.ProfileKind(p.Kind),
		ContentCreator:    (*domain.ContentCreatorProfile)(p.ContentCreator),
		ProductionCompany: (*domain.ProductionCompanyProfile)(p.ProductionCompany),
		PlatformAdmin:     (*domain.PlatformAdminProfile)(p.PlatformAdmin),
		Viewer:            (*domain.ViewerProfile)(p.Viewer),
	}
}

func toTokenResponse(tok domain.AccessToken, u domain.User) usersdk.TokenResponse {
	return usersdk.TokenResponse{
		AccessToken: tok.Token,
		TokenType:   tok.TokenType,
		ExpiresAt:   tok.ExpiresAt,
		User:        toUserInfo(u),
	}
}

func toRoleInfo(r domain.Role) usersdk.RoleInfo {
	perms := make([]usersdk.PermissionInfo, len(r.Permissions))
	for i, p := range r.Permissions {
		perms[i] = toPermissionInfo(p)
	}
	return usersdk.RoleInfo{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: perms,
	}
}

func toPermissionInfo(p domain.RolePermission) usersdk.PermissionInfo {
	return usersdk.PermissionInfo{
		ID:           p.ID,
		RoleID:       p.RoleID,
		PermissionID: p.PermissionID,
		Name:         p.Name,
		Description:  p.Description,
	}
}

func fromRoleRequest(id int64, req usersdk.RoleRequest) domain.Role {
	perms := make([]domain.RolePermission, len(req.Permissions))
	for i, p := range req.Permissions {
		perms[i] = domain.RolePermission{
			RoleID:       id,
			PermissionID: p.PermissionID,
			Name:         p.Name,
			Description:  p.Description,
		}
	}
	return domain.Role{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Permissions: perms,
	}
}

func toStatusInfo(s domain.AccountStatus) usersdk.AccountStatusInfo {
	return usersdk.AccountStatusInfo{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
	}
}

func toHistoryInfo(h domain.LoginHistory) usersdk.LoginHistoryInfo {
	return usersdk.LoginHistoryInfo{
		ID:              h.ID,
		UserID:          h.UserID,
		LoginTimestamp:  h.LoginTimestamp,
		IPAddress:       h.IPAddress,
		Device:          h.Device,
		FailedAttempts:  h.FailedAttempts,
		LoginSuccessful: h.LoginSuccessful,
	}
}
