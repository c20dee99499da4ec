package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/project-manager/engine/internal/api/handlers"
	mw "github.com/project-manager/engine/internal/api/middleware"
)

type Dependencies struct {
	// BasePath prefixes every resource route, e.g. "/api".
	BasePath           string
	ProjectsHandler    *handlers.ProjectsHandler
	FilesHandler       *handlers.FilesHandler
	SubProjectsHandler *handlers.SubProjectsHandler
	StatsHandler       *handlers.StatsHandler
	HealthHandler      *handlers.HealthHandler
	// UploadDir is served read-only at BasePath + "/uploads/". Empty disables it.
	UploadDir string
	// HMACSecret enables bearer auth on resource routes when set.
	HMACSecret  []byte
	RateLimiter *mw.RateLimiter
	CORSOrigins []string
	Development bool
	Metrics     bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	if dep.Metrics {
		r.Use(mw.Prometheus)
	}
	r.Use(mw.NewSecure(mw.SecureOptions(dep.Development)))
	r.Use(mw.CORS(dep.CORSOrigins...))
	if dep.RateLimiter != nil {
		r.Use(dep.RateLimiter.Handler)
	}
	r.Use(chimid.Compress(5))

	if dep.HealthHandler != nil {
		r.Get("/healthz", dep.HealthHandler.Liveness)
		r.Get("/readyz", dep.HealthHandler.Readiness)
	}
	if dep.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	base := "/" + strings.Trim(dep.BasePath, "/")
	if base == "/" {
		r.Group(func(api chi.Router) { mountResources(api, "", dep) })
	} else {
		r.Route(base, func(api chi.Router) {
			api.NotFound(handlers.NotFound)
			api.MethodNotAllowed(handlers.MethodNotAllowed)
			mountResources(api, base, dep)
		})
	}
	return r
}

func mountResources(api chi.Router, base string, dep Dependencies) {
	if dep.UploadDir != "" {
		api.Get("/uploads/*", blobServer(base+"/uploads/", dep.UploadDir))
	}

	api.Group(func(res chi.Router) {
		if len(dep.HMACSecret) > 0 {
			res.Use(mw.Auth(dep.HMACSecret))
		}

		res.Get("/projects.php", dep.ProjectsHandler.Get)
		res.Post("/projects.php", dep.ProjectsHandler.Create)
		res.Put("/projects.php", dep.ProjectsHandler.Replace)
		res.Delete("/projects.php", dep.ProjectsHandler.Delete)

		res.Post("/upload.php", dep.FilesHandler.Upload)
		res.Get("/files.php", dep.FilesHandler.Get)
		res.Delete("/files.php", dep.FilesHandler.Delete)

		res.Get("/subprojects.php", dep.SubProjectsHandler.Get)
		res.Post("/subprojects.php", dep.SubProjectsHandler.Create)
		res.Put("/subprojects.php", dep.SubProjectsHandler.Update)
		res.Delete("/subprojects.php", dep.SubProjectsHandler.Delete)

		res.Get("/stats.php", dep.StatsHandler.Get)
	})
}

// blobServer serves single stored blobs; directory paths are not listed.
func blobServer(prefix, dir string) http.HandlerFunc {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")
		if key == "" || strings.Contains(key, "/") || strings.HasPrefix(key, ".") {
			handlers.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
		fs.ServeHTTP(w, r)
	}
}
