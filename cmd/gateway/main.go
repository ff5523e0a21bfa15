package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	api "github.com/quizforce/quizforce/internal/api/http"
	"github.com/quizforce/quizforce/internal/audit"
	auth "github.com/quizforce/quizforce/internal/auth/middleware"
	"github.com/quizforce/quizforce/internal/config"
	"github.com/quizforce/quizforce/internal/db"
	"github.com/quizforce/quizforce/internal/exam"
	"github.com/quizforce/quizforce/internal/rbac"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if err := ensureAdmin(ctx, dbh, cfg.AdminUser, cfg.AdminPassHash); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	store := exam.NewSQLStore(dbh, cfg.DBDriver)
	events := audit.NewEventRepo(dbh)
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Protected API (JWT → subject/role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, true))

		// Catalog
		pr.With(rbac.Require("catalog:view")).
			Get("/certifications", api.ListCertificationsHandler(store))
		pr.With(rbac.Require("catalog:view")).
			Get("/certifications/{certID}", api.GetCertificationHandler(store))
		pr.With(rbac.Require("catalog:view")).
			Get("/certifications/{certID}/packages", api.ListPackagesHandler(store))
		pr.With(rbac.Require("catalog:view")).
			Get("/certifications/{certID}/exams", api.ListPracticeExamsHandler(store))
		pr.With(rbac.Require("catalog:view")).
			Get("/exams/{examID}/questions", api.GetExamQuestionsHandler(store))

		// Enrollment
		pr.With(rbac.Require("enrollment:create")).
			Post("/enrollments", api.EnrollHandler(store))
		pr.With(rbac.Require("enrollment:view-own")).
			Get("/enrollments", api.ListEnrollmentsHandler(store))

		// Attempt flow
		pr.With(rbac.Require("attempt:create")).
			Post("/attempts", api.StartAttemptHandler(store))
		pr.With(rbac.Require("attempt:save")).
			Post("/attempts/{attemptID}/answers", api.SaveAnswerHandler(store))
		pr.With(rbac.Require("attempt:submit")).
			Post("/attempts/{attemptID}/submit", api.SubmitAttemptHandler(store))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{attemptID}", api.GetAttemptHandler(store))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts/{attemptID}/results", api.GetResultsHandler(store))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/attempts", api.ListAttemptsHandler(store))

		// Admin
		pr.With(rbac.Require("catalog:manage")).
			Post("/admin/certifications", api.UpsertCertificationHandler(store, cfg.DefaultPassingThresholdPct))
		pr.With(rbac.Require("catalog:manage")).
			Post("/admin/knowledge-areas", api.UpsertKnowledgeAreaHandler(store))
		pr.With(rbac.Require("catalog:manage")).
			Post("/admin/packages", api.UpsertPackageHandler(store))
		pr.With(rbac.Require("catalog:manage")).
			Post("/admin/exams", api.UpsertPracticeExamHandler(store))
		pr.With(rbac.Require("question:manage")).
			Post("/admin/questions", api.UpsertQuestionHandler(store))
		pr.With(rbac.Require("question:manage")).
			Delete("/admin/questions/{questionID}", api.DeleteQuestionHandler(store))
		pr.With(rbac.Require("users:list")).
			Get("/admin/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/admin/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("events:view")).
			Get("/admin/events", api.ListEventsHandler(events))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

// ensureAdmin seeds the bootstrap admin account when ADMIN_PASS_HASH is
// configured. No-op if the user already exists.
func ensureAdmin(ctx context.Context, dbh *sql.DB, username, passHash string) error {
	if passHash == "" {
		return nil
	}
	_, err := dbh.ExecContext(ctx,
		`INSERT INTO users (id, username, role, password_hash, created_at)
		 VALUES ($1,$2,'admin',$3,$4)
		 ON CONFLICT (username) DO NOTHING`,
		uuid.NewString(), username, passHash, time.Now().Unix())
	return err
}
