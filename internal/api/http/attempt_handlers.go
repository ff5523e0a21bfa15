package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quizforce/quizforce/internal/exam"
	"github.com/quizforce/quizforce/internal/rbac"
)

func StartAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub := rbac.SubjectFromContext(r.Context())
		var req struct {
			ExamID string `json:"exam_id"`
			Mode   string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.ExamID == "" {
			http.Error(w, "exam_id required", http.StatusBadRequest)
			return
		}
		a, err := store.StartAttempt(r.Context(), req.ExamID, sub, req.Mode)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

func SaveAnswerHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		var req struct {
			QuestionID        string   `json:"question_id"`
			SelectedAnswerIDs []string `json:"selected_answer_ids"`
			TimeSpentSec      int      `json:"time_spent_sec"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.QuestionID == "" {
			http.Error(w, "question_id required", http.StatusBadRequest)
			return
		}
		if err := requireAttemptOwner(r, store, attemptID); err != nil {
			writeStoreError(w, err)
			return
		}
		err := store.SaveAnswer(r.Context(), exam.SubmittedAnswer{
			AttemptID:         attemptID,
			QuestionID:        req.QuestionID,
			SelectedAnswerIDs: req.SelectedAnswerIDs,
			TimeSpentSec:      req.TimeSpentSec,
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func SubmitAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		if err := requireAttemptOwner(r, store, attemptID); err != nil {
			writeStoreError(w, err)
			return
		}
		res, err := store.SubmitAttempt(r.Context(), attemptID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func GetAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		if err := requireAttemptOwner(r, store, attemptID); err != nil {
			writeStoreError(w, err)
			return
		}
		a, err := store.GetAttempt(r.Context(), attemptID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GetResultsHandler serves the full scored breakdown for review mode.
func GetResultsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attemptID := chi.URLParam(r, "attemptID")
		if err := requireAttemptOwner(r, store, attemptID); err != nil {
			writeStoreError(w, err)
			return
		}
		res, err := store.GetResults(r.Context(), attemptID)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /attempts?exam_id=...&user_id=...&status=...&limit=50&offset=0
// Callers without attempt:view-all see only their own attempts.
func ListAttemptsHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role := rbac.RoleFromContext(r.Context())
		sub := rbac.SubjectFromContext(r.Context())

		examID := strings.TrimSpace(r.URL.Query().Get("exam_id"))
		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		status := strings.TrimSpace(r.URL.Query().Get("status"))
		limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
		offset := parseIntDefault(r.URL.Query().Get("offset"), 0)

		if role != "admin" {
			userID = sub
		}

		list, err := store.ListAttempts(r.Context(), exam.AttemptListOpts{
			ExamID: examID,
			UserID: userID,
			Status: status,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// requireAttemptOwner lets the attempt's owner and admins through.
func requireAttemptOwner(r *http.Request, store exam.Store, attemptID string) error {
	role := rbac.RoleFromContext(r.Context())
	if role == "admin" {
		return nil
	}
	a, err := store.GetAttempt(r.Context(), attemptID)
	if err != nil {
		return err
	}
	if a.UserID != rbac.SubjectFromContext(r.Context()) {
		return exam.ErrNoAccess
	}
	return nil
}
