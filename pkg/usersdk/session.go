package usersdk

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Session is an authenticated client holding a bearer token. Tokens are
// not refreshed; log in again once one expires.
type Session struct {
	client *Client
	token  string
	user   UserInfo
}

// AccessToken returns the bearer token of this session.
func (s *Session) AccessToken() string { return s.token }

// User returns the account the session was opened for.
func (s *Session) User() UserInfo { return s.user }

func (s *Session) call(ctx context.Context, method, path string, in, out any, expected int) error {
	return s.client.call(ctx, s.token, method, path, nil, in, out, expected)
}

// Logout moves the session's account to LoggedOut. It reports false when
// the account was already logged out. The token stays valid until expiry.
func (s *Session) Logout(ctx context.Context) (bool, error) {
	var out LogoutResponse
	if err := s.call(ctx, http.MethodPost, "/logout", nil, &out, http.StatusOK); err != nil {
		return false, err
	}
	return out.LoggedOut, nil
}

// UpdateAccount changes the non-empty fields of req and returns a new token
// reflecting them.
func (s *Session) UpdateAccount(ctx context.Context, req UpdateAccountRequest) (*TokenResponse, error) {
	var tok TokenResponse
	if err := s.call(ctx, http.MethodPut, "/users/update", req, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Deactivate deactivates userID, or the caller's own account when zero.
func (s *Session) Deactivate(ctx context.Context, userID int64) error {
	return s.call(ctx, http.MethodPut, "/deactivate-account", DeactivateRequest{UserID: userID}, nil, http.StatusOK)
}

// LoginStatus returns the latest login attempt of userID.
func (s *Session) LoginStatus(ctx context.Context, userID int64) (*LoginHistoryInfo, error) {
	var out LoginHistoryInfo
	path := "/login-status/" + strconv.FormatInt(userID, 10)
	if err := s.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginHistory returns login attempts of userID, newest first.
func (s *Session) LoginHistory(ctx context.Context, userID int64, skip, limit int) ([]LoginHistoryInfo, error) {
	var out []LoginHistoryInfo
	path := "/loginhistory/" + strconv.FormatInt(userID, 10) + "/" + strconv.Itoa(skip) + "/" + strconv.Itoa(limit)
	if err := s.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// Register creates an account with this session's authority. Platform
// admin accounts can only be registered this way.
func (s *Session) Register(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	var user UserInfo
	if err := s.call(ctx, http.MethodPost, "/users", req, &user, http.StatusCreated); err != nil {
		return nil, err
	}
	return &user, nil
}

// RemoveUser hard deletes an account. Requires an admin session.
func (s *Session) RemoveUser(ctx context.Context, userID int64) error {
	return s.call(ctx, http.MethodDelete, "/users/"+strconv.FormatInt(userID, 10), nil, nil, http.StatusOK)
}

// ChangeAccountStatus sets any status on an account. Requires an admin session.
func (s *Session) ChangeAccountStatus(ctx context.Context, userID, statusID int64) (*AccountStatusInfo, error) {
	var out AccountStatusInfo
	path := "/users/" + strconv.FormatInt(userID, 10) + "/status/" + strconv.FormatInt(statusID, 10)
	if err := s.call(ctx, http.MethodPut, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangeRole moves an account to another role, resetting its profile.
// Requires an admin session.
func (s *Session) ChangeRole(ctx context.Context, userID, roleID int64) (*RoleInfo, error) {
	var out RoleInfo
	path := "/users/" + strconv.FormatInt(userID, 10) + "/role/" + strconv.FormatInt(roleID, 10)
	if err := s.call(ctx, http.MethodPut, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns a page of accounts ordered by id.
func (s *Session) ListUsers(ctx context.Context, limit, cursor int) (*UserPage, error) {
	var out UserPage
	path := "/users/" + strconv.Itoa(limit) + "/" + strconv.Itoa(cursor)
	if err := s.call(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// QueryUsers filters accounts by one of username, email, userid, roleid or
// accountstatusid.
func (s *Session) QueryUsers(ctx context.Context, property, value string, limit int) ([]UserInfo, error) {
	q := url.Values{}
	q.Set("property", property)
	q.Set("value", value)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out []UserInfo
	if err := s.call(ctx, http.MethodGet, "/users/by-property?"+q.Encode(), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out, nil
}

// CountUsers returns the number of accounts.
func (s *Session) CountUsers(ctx context.Context) (int64, error) {
	var out CountResponse
	if err := s.call(ctx, http.MethodGet, "/users/count", nil, &out, http.StatusOK); err != nil {
		return 0, err
	}
	return out.Total, nil
}

// GetProfile reads the profile of userID from the endpoint for kind, e.g.
// "viewers".
func (s *Session) GetProfile(ctx context.Context, kind string, userID int64) (*UserInfo, error) {
	var out UserInfo
	if err := s.call(ctx, http.MethodGet, profilePath(kind, userID), nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile replaces the profile of userID through the endpoint for kind.
func (s *Session) UpdateProfile(ctx context.Context, kind string, userID int64, p Profile) (*UserInfo, error) {
	var out UserInfo
	if err := s.call(ctx, http.MethodPut, profilePath(kind, userID), p, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func profilePath(kind string, userID int64) string {
	return "/" + kind + "/" + strconv.FormatInt(userID, 10)
}
