package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quizforce/quizforce/internal/exam"
	"github.com/quizforce/quizforce/internal/rbac"
)

func ListCertificationsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
		offset := parseIntDefault(r.URL.Query().Get("offset"), 0)

		list, err := store.ListCertifications(r.Context(), exam.ListOpts{Q: q, Limit: limit, Offset: offset})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetCertificationHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := store.GetCertification(r.Context(), chi.URLParam(r, "certID"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func ListPackagesHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListPackages(r.Context(), chi.URLParam(r, "certID"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func ListPracticeExamsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListPracticeExams(r.Context(), chi.URLParam(r, "certID"))
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GetExamQuestionsHandler serves an exam's questions with answer keys
// stripped, for the test-taking UI. Requires enrollment in a package
// covering the exam (admins bypass).
func GetExamQuestionsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		if rbac.RoleFromContext(r.Context()) != "admin" {
			ok, err := store.HasAccess(r.Context(), rbac.SubjectFromContext(r.Context()), examID)
			if err != nil {
				writeStoreError(w, err)
				return
			}
			if !ok {
				writeStoreError(w, exam.ErrNoAccess)
				return
			}
		}
		qs, err := store.GetExamQuestionsPublic(r.Context(), examID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}
