// Package api provides the HTTP API for the application
package api

import (
	"strings"
	"time"

	"walletsync/internal/core/version"
	"walletsync/internal/platform/config"
	"walletsync/internal/platform/logger"
	phttp "walletsync/internal/platform/net/http"
	"walletsync/internal/platform/net/middleware"
	"walletsync/internal/platform/store"

	"walletsync/internal/modkit"
	"walletsync/internal/modkit/httpkit"
	"walletsync/internal/modkit/module"
	"walletsync/internal/modkit/swaggerkit"

	metamod "walletsync/internal/services/api/meta/module"
	authmod "walletsync/internal/services/auth/module"
	convmod "walletsync/internal/services/convergence/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mounted exposes the modules that own background work so the caller can stop them
type Mounted struct {
	Auth *authmod.Module
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) (Mounted, error) {
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	// convergence owns the policy set, auth reads its email window from it
	co, err := convmod.FromConfig(deps.Cfg)
	if err != nil {
		return Mounted{}, err
	}
	conv := convmod.New(deps, co)
	policies := module.MustPortsOf[convmod.Ports](conv).Policies

	ao, err := authmod.FromConfig(deps.Cfg)
	if err != nil {
		return Mounted{}, err
	}
	ao.EmailWait = policies.EmailWait
	auth := authmod.New(deps, ao)
	reg := module.MustPortsOf[authmod.Ports](auth).Registry

	open := []module.Module{
		metamod.New(deps, modkit.WithPorts(metamod.Status{
			Policies:     policies,
			LiveAttempts: reg.Live,
		})),
	}
	guarded := []module.Module{conv, auth}
	apiCfg := opt.Config.Prefix("CORE_API_")
	port := operatorPort(apiCfg.MayCSV("OPERATOR_TOKENS", nil))
	stack := httpkit.CommonStack(httpkit.StackOptions{
		Timeout:     apiCfg.MayDuration("REQUEST_TIMEOUT", 5*time.Minute),
		SlowRequest: apiCfg.MayDuration("SLOW_REQUEST", 0),
		CORSOrigins: apiCfg.MayCSV("CORS_ORIGINS", nil),
	})

	httpkit.MountAPIV1(r, stack, func(api httpkit.Router) {
		swaggerkit.Mount(r, swaggerkit.Docs{
			Enabled: opt.EnableSwagger,
			Base:    apiCfg.MayString("DOCS_PATH", ""),
			Server:  apiCfg.MayString("DOCS_SERVER_URL", ""),
			Build:   version.Info("walletsync-api"),
		})
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range append(open, guarded...) {
			// register each module's ports under its own name for cross module lookups
			module.Register(m.Name(), m.Ports())
		}
		for _, m := range open {
			m.MountRoutes(api)
		}
		httpkit.Protected(api, port, func(pr httpkit.Router) {
			for _, m := range guarded {
				m.MountRoutes(pr)
			}
		})
	})
	return Mounted{Auth: auth}, nil
}

// operatorPort parses name:token pairs, no pairs means the API is open
func operatorPort(pairs []string) middleware.AuthPort {
	tokens := map[string]string{}
	for _, p := range pairs {
		name, tok, ok := strings.Cut(p, ":")
		if !ok || name == "" || tok == "" {
			logger.Named("api").Warn().Msg("ignoring malformed operator token entry")
			continue
		}
		tokens[tok] = name
	}
	if len(tokens) == 0 {
		return nil
	}
	return httpkit.NewPortFunc(httpkit.StaticTokens(tokens))
}
