package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/domain"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/notify"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/service"
	"github.com/aussiebroadwan/usermgmt/internal/usermgmt/store"
	"github.com/aussiebroadwan/usermgmt/pkg/httpx"
	"github.com/aussiebroadwan/usermgmt/pkg/jwtx"
	"github.com/aussiebroadwan/usermgmt/pkg/slogx"

	_ "github.com/aussiebroadwan/usermgmt/api/usermgmt" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// adminRole is the role claim of platform admins.
const adminRole = "3"

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       jwtx.Signer
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store               store.Store
	AccountService      *service.AccountService
	DirectoryService    *service.DirectoryService
	VerificationService *service.VerificationService
	TokenService        *service.TokenService
	RolesService        *service.RolesService
	StatusService       *service.AccountStatusService
	ProfileService      *service.ProfileService
	BootstrapService    *service.BootstrapService
	Hub                 *notify.Hub // Optional: nil disables the notification stream
}

func NewRouter(
	signer jwtx.Signer,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerAccount()
	r.registerVerification()
	r.registerUsers()
	r.registerRoles()
	r.registerStatuses()
	r.registerProfiles()
	r.registerNotifications()
	r.registerSystem()
	r.registerBootstrap()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			User Management Service API
//	@version		0.1.0
//	@description	Registration, authentication and administration of users with role specific profiles.
//	@description
//	@description				Every response is wrapped in an envelope: {statusCode, type, message, data}.
//	@description				Access tokens are HS256 signed JWTs carrying the account email (name) and role id (role).
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/usermgmt
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authed requires any valid token.
func (r *Router) authed(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RateLimitByUser(limit),
	)
}

// admin requires a platform admin token.
func (r *Router) admin(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyRole(adminRole),
		httpx.RateLimitByUser(limit),
	)
}

// selfOrAdmin requires the token subject to match the {userId} path value,
// or a platform admin token.
func (r *Router) selfOrAdmin(h http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
	return httpx.Chain(h,
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireSelfOrAnyRole("userId", adminRole),
		httpx.RateLimitByUser(limit),
	)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AccountService: r.AccountService,
		TokenService:   r.TokenService,
	}

	// POST /login - strict per address and identifier, with a looser
	// ceiling per address across identifiers
	r.Mux.Handle("POST /login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "username"),
		),
	)

	// POST /logout - resolves the account from the token's name claim
	r.Mux.Handle("POST /logout", r.authed(h.HandleLogout, httpx.ModerateLimit))
}

func (r *Router) registerAccount() {
	h := &AccountHandler{
		AccountService: r.AccountService,
		TokenService:   r.TokenService,
	}

	// Target account comes from the body and is checked in the handler
	r.Mux.Handle("PUT /users/update", r.authed(h.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("PUT /deactivate-account", r.authed(h.HandleDeactivate, httpx.ModerateLimit))

	r.Mux.Handle("GET /login-status/{userId}", r.selfOrAdmin(h.HandleLoginStatus, httpx.LenientLimit))
	r.Mux.Handle("GET /loginhistory/{userId}/{skip}/{limit}", r.selfOrAdmin(h.HandleLoginHistory, httpx.LenientLimit))
}

func (r *Router) registerVerification() {
	h := &VerificationHandler{
		VerificationService: r.VerificationService,
		AccountService:      r.AccountService,
		DirectoryService:    r.DirectoryService,
		TokenService:        r.TokenService,
	}

	// GET /sendemailcode/{email} - strict limit per IP and address (each call sends a mail)
	r.Mux.Handle("GET /sendemailcode/{email}",
		httpx.Chain(http.HandlerFunc(h.HandleSendCode),
			httpx.RateLimitByIPAndPathValue(httpx.StrictLimit, "email"),
		),
	)

	// Code checks are strict by IP to stop guessing six digit codes
	r.Mux.Handle("GET /validateemailcode/{email}/{code}",
		httpx.Chain(http.HandlerFunc(h.HandleValidateCode),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /verifyemail",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyEmail),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /resetpassword",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{
		DirectoryService: r.DirectoryService,
		Verifier:         r.verifier,
	}

	// POST /users - public registration; platform admins need an admin token
	r.Mux.Handle("POST /users",
		httpx.Chain(http.HandlerFunc(h.HandleAdd),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("DELETE /users/{id}", r.admin(h.HandleRemove, httpx.ModerateLimit))
	r.Mux.Handle("PUT /users/{id}/status/{statusId}", r.admin(h.HandleChangeStatus, httpx.ModerateLimit))
	r.Mux.Handle("PUT /users/{id}/role/{roleId}", r.admin(h.HandleChangeRole, httpx.ModerateLimit))
	r.Mux.Handle("GET /users/{limit}/{cursor}", r.admin(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /users/by-property", r.admin(h.HandleQuery, httpx.LenientLimit))
	r.Mux.Handle("GET /users/count", r.admin(h.HandleCount, httpx.LenientLimit))
}

func (r *Router) registerRoles() {
	h := &RolesHandler{RolesService: r.RolesService}

	// Reads are open to any authenticated caller
	r.Mux.Handle("GET /roles", r.authed(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /roles/{roleId}", r.authed(h.HandleGet, httpx.LenientLimit))

	r.Mux.Handle("POST /roles", r.admin(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("PUT /roles/{roleId}", r.admin(h.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /roles/{roleId}", r.admin(h.HandleDelete, httpx.ModerateLimit))
	r.Mux.Handle("PUT /permissions/{permissionId}", r.admin(h.HandleUpdatePermission, httpx.ModerateLimit))
}

func (r *Router) registerStatuses() {
	h := &StatusesHandler{StatusService: r.StatusService}

	r.Mux.Handle("GET /account-status", r.authed(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("GET /account-status/{id}", r.authed(h.HandleGet, httpx.LenientLimit))

	r.Mux.Handle("POST /account-status", r.admin(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("PUT /account-status/{id}", r.admin(h.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /account-status/{id}", r.admin(h.HandleDelete, httpx.ModerateLimit))
}

// profileEndpoints maps each profile path prefix onto the kind it serves.
var profileEndpoints = map[string]domain.ProfileKind{
	"content-creators":     domain.ProfileContentCreator,
	"production-companies": domain.ProfileProductionCompany,
	"platform-admins":      domain.ProfilePlatformAdmin,
	"viewers":              domain.ProfileViewer,
}

func (r *Router) registerProfiles() {
	for prefix, kind := range profileEndpoints {
		h := &ProfileHandler{ProfileService: r.ProfileService, Kind: kind}

		r.Mux.Handle("GET /"+prefix+"/{userId}", r.selfOrAdmin(h.HandleGet, httpx.LenientLimit))
		r.Mux.Handle("PUT /"+prefix+"/{userId}", r.selfOrAdmin(h.HandleUpdate, httpx.ModerateLimit))
	}
}

func (r *Router) registerNotifications() {
	if r.Hub == nil {
		return
	}
	h := &NotificationsHandler{Hub: r.Hub}

	// Long lived stream; one connection per admin is plenty
	r.Mux.Handle("GET /hubs/notifications", r.admin(h.ServeHTTP, httpx.StrictLimit))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	h := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /bootstrap",
		httpx.Chain(h,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}
