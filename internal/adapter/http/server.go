package adapthttp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-playground/validator/v10"
	"golang.org/x/oauth2"

	"healthcharts/internal/app"
	"healthcharts/internal/domain"
	"healthcharts/internal/observability"
)

var validate = validator.New()

// OIDCConfig holds the SSO provider. The zero value disables SSO.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// NewOIDCConfig discovers the issuer and builds the code-flow config.
func NewOIDCConfig(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) (OIDCConfig, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return OIDCConfig{}, fmt.Errorf("oidc discovery: %w", err)
	}
	return OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	charts  *app.ChartsService
	samples *app.SamplesService
	perms   *app.PermissionService
	authSvc *app.AuthService
	metrics *observability.Metrics
	webDir  string

	oidcConfig  OIDCConfig
	forwardAuth bool
	disableAuth bool
	testUser    *domain.User
}

// New creates a Server wired to the given application services.
func New(cs *app.ChartsService, ss *app.SamplesService, ps *app.PermissionService, as *app.AuthService, webDir string) *Server {
	return &Server{charts: cs, samples: ss, perms: ps, authSvc: as, webDir: webDir}
}

// WithOIDC enables SSO login.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// WithForwardAuth trusts the Remote-User header set by an auth proxy.
func (s *Server) WithForwardAuth() *Server {
	s.forwardAuth = true
	return s
}

// WithMetrics instruments every API route and serves /metrics.
func (s *Server) WithMetrics(m *observability.Metrics) *Server {
	s.metrics = m
	return s
}

// WithoutAuth disables authentication; every request acts as user 1. Tests only.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	s.testUser = &domain.User{ID: 1, Username: "test"}
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()

	// Public.
	s.route(api, "GET /health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}))
	s.route(api, "GET /config", http.HandlerFunc(s.handleConfig))
	s.route(api, "POST /auth/setup", http.HandlerFunc(s.handleSetupUser))
	s.route(api, "POST /auth/login", http.HandlerFunc(s.handleLogin))
	s.route(api, "POST /auth/logout", http.HandlerFunc(s.handleLogout))
	s.route(api, "GET /auth/sso/login", http.HandlerFunc(s.handleSSOLogin))
	s.route(api, "GET /auth/sso/callback", http.HandlerFunc(s.handleSSOCallback))

	// Authenticated.
	protected := func(pattern string, h http.HandlerFunc) {
		s.route(api, pattern, s.authMiddleware(h))
	}
	protected("GET /permissions", s.handlePermissionsGet)
	protected("PUT /permissions", s.handlePermissionsPut)
	protected("POST /charts/refresh", s.handleChartsRefresh)
	protected("GET /charts/steps", s.handleStepChart)
	protected("GET /charts/steps/weekdays", s.handleStepWeekdays)
	protected("GET /charts/weight", s.handleWeightChart)
	protected("GET /charts/weight/diffs", s.handleWeightDiffs)
	protected("GET /samples/{metric}", s.handleSamplesList)
	protected("POST /samples", s.handleSampleCreate)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if s.metrics != nil {
		root.Handle("GET /metrics", s.metrics.Handler())
	}
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(recoverer(compress(withNoCache(root))))
}

func (s *Server) route(mux *http.ServeMux, pattern string, h http.Handler) {
	mux.Handle(pattern, s.metrics.WrapHandler("/api"+patternPath(pattern), h))
}
