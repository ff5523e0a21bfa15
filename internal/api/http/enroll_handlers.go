package http

import (
	"encoding/json"
	"net/http"

	"github.com/quizforce/quizforce/internal/exam"
	"github.com/quizforce/quizforce/internal/rbac"
)

// EnrollHandler enrolls the caller in a package. Only free enrollment is
// accepted here; purchase enrollments are written by the payment
// collaborator outside this API.
func EnrollHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		var req struct {
			PackageID string `json:"package_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.PackageID == "" {
			http.Error(w, "package_id required", http.StatusBadRequest)
			return
		}
		e, err := store.Enroll(r.Context(), sub, req.PackageID, "free")
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

func ListEnrollmentsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		list, err := store.ListEnrollments(r.Context(), sub)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
