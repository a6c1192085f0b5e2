package app

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/valyala/fasthttp"

	"pagethread/pkg/api"
	"pagethread/pkg/auth"
	"pagethread/pkg/banner"
	"pagethread/pkg/httpx"
	"pagethread/pkg/logger"
	"pagethread/pkg/shutdown"
	"pagethread/pkg/store"
)

// printBanner prints the startup banner and build info.
func (a *App) printBanner() {
	verStr := a.version
	if a.commit != "none" && a.commit != "" {
		verStr += " (" + a.commit + ")"
	}
	if a.buildDate != "unknown" && a.buildDate != "" {
		verStr += " @ " + a.buildDate
	}
	banner.Print(a.addr, a.dbPath, a.source, verStr)
}

// healthz reports liveness; readyz additionally checks the store. Both
// are transport-neutral so the optional fasthttp probe listener can
// serve the same handlers.
func healthz(w httpx.ResponseWriter, _ *httpx.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (a *App) readyz(w httpx.ResponseWriter, _ *httpx.Request) {
	w.Header().Set("Content-Type", "application/json")
	if !store.Ready() {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	ver := a.version
	if ver == "" {
		ver = "dev"
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok","version":"` + ver + `"}`))
}

// setupHTTPHandlers sets up all HTTP handlers on the provided mux.
func (a *App) setupHTTPHandlers(mux *http.ServeMux) {
	mux.Handle("/healthz", httpx.NetHTTP(healthz))
	mux.Handle("/readyz", httpx.NetHTTP(a.readyz))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/docs/", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))
	mux.Handle("/openapi.yaml", http.FileServer(http.Dir("./docs")))
	mux.Handle("/", api.Handler(a.secConfig()))
}

func (a *App) secConfig() auth.SecConfig {
	rc := a.cfg.Runtime()
	return auth.SecConfig{
		AllowedOrigins: append([]string{}, a.cfg.Security.CORS.AllowedOrigins...),
		RPS:            a.cfg.Security.RateLimit.RPS,
		Burst:          a.cfg.Security.RateLimit.Burst,
		BackendKeys:    rc.BackendKeys,
		FrontendKeys:   rc.FrontendKeys,
		AdminKeys:      rc.AdminKeys,
	}
}

// startHTTP builds the handler, starts the HTTP listener (and the
// optional fasthttp probe listener) and returns an error channel.
func (a *App) startHTTP(ctx context.Context) <-chan error {
	mux := http.NewServeMux()
	a.setupHTTPHandlers(mux)

	srv := &http.Server{Addr: a.addr, Handler: mux}
	errCh := make(chan error, 2)

	go func() {
		logger.Info("http_listening", "addr", a.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	if probe := a.cfg.Server.ProbeAddress; probe != "" {
		probeSrv := &fasthttp.Server{Handler: a.probeHandler()}
		go func() {
			logger.Info("probe_listening", "addr", probe)
			if err := probeSrv.ListenAndServe(probe); err != nil {
				errCh <- err
			}
		}()
		go func() {
			<-ctx.Done()
			_ = probeSrv.Shutdown()
		}()
	}

	go func() {
		<-ctx.Done()
		shutdown.Drain(srv)
	}()

	return errCh
}

// probeHandler routes /healthz and /readyz on the fasthttp listener.
func (a *App) probeHandler() fasthttp.RequestHandler {
	health := httpx.FastHTTP(healthz)
	ready := httpx.FastHTTP(a.readyz)
	return func(ctx *fasthttp.RequestCtx) {
		switch string(ctx.Path()) {
		case "/healthz":
			health(ctx)
		case "/readyz":
			ready(ctx)
		default:
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	}
}
