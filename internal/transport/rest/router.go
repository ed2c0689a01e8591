package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/profaxno/admin-management/internal/company"
	"github.com/profaxno/admin-management/internal/documenttype"
	"github.com/profaxno/admin-management/internal/permission"
	"github.com/profaxno/admin-management/internal/productunit"
	"github.com/profaxno/admin-management/internal/role"
	"github.com/profaxno/admin-management/internal/transport/middleware"
	"github.com/profaxno/admin-management/internal/transport/swagger"
	"github.com/profaxno/admin-management/internal/user"
)

// RegisterAllRoutes mounts the admin API. Every entity exposes the same
// verbs: PUT upsert, POST batch, POST search, DELETE by id; replicated
// entities additionally expose the synchronize sweep.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, companyHandler *company.Handler, permissionHandler *permission.Handler, roleHandler *role.Handler, userHandler *user.Handler, productUnitHandler *productunit.Handler, documentTypeHandler *documenttype.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if companyHandler != nil {
			r.Route("/companies", func(cr chi.Router) {
				cr.Put("/", companyHandler.Upsert)
				cr.Post("/batch", companyHandler.UpdateBatch)
				cr.Post("/search", companyHandler.Search)
				cr.Post("/synchronize", companyHandler.Synchronize)
				cr.Delete("/{id}", companyHandler.Delete)
			})
		}

		if permissionHandler != nil {
			r.Route("/permissions", func(pr chi.Router) {
				pr.Put("/", permissionHandler.Upsert)
				pr.Post("/batch", permissionHandler.UpdateBatch)
				pr.Post("/search", permissionHandler.Search)
				pr.Delete("/{id}", permissionHandler.Delete)
			})
		}

		if roleHandler != nil {
			r.Route("/roles", func(rr chi.Router) {
				rr.Put("/", roleHandler.Upsert)
				rr.Post("/batch", roleHandler.UpdateBatch)
				rr.Post("/search", roleHandler.Search)
				rr.Delete("/{id}", roleHandler.Delete)
			})
		}

		if userHandler != nil {
			r.Route("/users", func(ur chi.Router) {
				ur.Put("/", userHandler.Upsert)
				ur.Post("/batch", userHandler.UpdateBatch)
				ur.Post("/search", userHandler.Search)
				ur.Post("/synchronize", userHandler.Synchronize)
				ur.Get("/email/{email}", userHandler.GetByEmail)
				ur.Get("/{id}", userHandler.GetByID)
				ur.Delete("/{id}", userHandler.Delete)
			})
		}

		if productUnitHandler != nil {
			r.Route("/product-units", func(pr chi.Router) {
				pr.Put("/", productUnitHandler.Upsert)
				pr.Post("/batch", productUnitHandler.UpdateBatch)
				pr.Post("/search", productUnitHandler.Search)
				pr.Post("/synchronize", productUnitHandler.Synchronize)
				pr.Delete("/{id}", productUnitHandler.Delete)
			})
		}

		if documentTypeHandler != nil {
			r.Route("/document-types", func(dr chi.Router) {
				dr.Put("/", documentTypeHandler.Upsert)
				dr.Post("/batch", documentTypeHandler.UpdateBatch)
				dr.Post("/search", documentTypeHandler.Search)
				dr.Post("/synchronize", documentTypeHandler.Synchronize)
				dr.Delete("/{id}", documentTypeHandler.Delete)
			})
		}
	})
}
