package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/quizforce/quizforce/internal/audit"
	"github.com/quizforce/quizforce/internal/exam"
)

// UpsertCertificationHandler creates or replaces a certification. A zero
// passing threshold falls back to the configured default.
func UpsertCertificationHandler(store exam.Store, defaultThresholdPct int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c exam.Certification
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if c.Name == "" || c.Slug == "" {
			http.Error(w, "name and slug required", http.StatusBadRequest)
			return
		}
		if c.PassingThresholdPct == 0 {
			c.PassingThresholdPct = defaultThresholdPct
		}
		if c.PassingThresholdPct <= 0 || c.PassingThresholdPct > 100 {
			http.Error(w, "passing_threshold_pct must be 1-100", http.StatusBadRequest)
			return
		}
		if err := store.PutCertification(r.Context(), c); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func UpsertKnowledgeAreaHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var a exam.KnowledgeArea
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if a.CertificationID == "" || a.Name == "" {
			http.Error(w, "certification_id and name required", http.StatusBadRequest)
			return
		}
		if err := store.PutKnowledgeArea(r.Context(), a); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func UpsertPackageHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p exam.Package
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if p.CertificationID == "" || p.Name == "" {
			http.Error(w, "certification_id and name required", http.StatusBadRequest)
			return
		}
		if err := store.PutPackage(r.Context(), p); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func UpsertPracticeExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e exam.PracticeExam
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if e.CertificationID == "" || e.Title == "" {
			http.Error(w, "certification_id and title required", http.StatusBadRequest)
			return
		}
		if err := store.PutPracticeExam(r.Context(), e); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// UpsertQuestionHandler creates or replaces a question together with its
// full candidate-answer set.
func UpsertQuestionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q exam.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if q.PracticeExamID == "" || q.KnowledgeAreaID == "" || q.Text == "" {
			http.Error(w, "practice_exam_id, knowledge_area_id and text required", http.StatusBadRequest)
			return
		}
		if q.RequiredSelections < 1 {
			q.RequiredSelections = 1
		}
		correct := 0
		for _, a := range q.Answers {
			if a.IsCorrect {
				correct++
			}
		}
		if correct == 0 {
			http.Error(w, "at least one answer must be correct", http.StatusBadRequest)
			return
		}
		if correct != q.RequiredSelections {
			http.Error(w, "required_selections must match the number of correct answers", http.StatusBadRequest)
			return
		}
		if err := store.PutQuestion(r.Context(), q); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListEventsHandler pages through the audit event log. Consumers poll
// with ?after=<last seen offset>.
func ListEventsHandler(events *audit.EventRepo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		after, _ := strconv.ParseInt(r.URL.Query().Get("after"), 10, 64)
		if after < 0 {
			after = 0
		}
		limit := parseIntDefault(r.URL.Query().Get("limit"), 100)
		out, err := events.Since(r.Context(), after, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if out == nil {
			out = []audit.Event{}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func DeleteQuestionHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuestion(r.Context(), chi.URLParam(r, "questionID")); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
