package exam_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/quizforce/quizforce/internal/db"
	"github.com/quizforce/quizforce/internal/exam"
	"github.com/quizforce/quizforce/internal/scoring"
)

func openTestStore(t *testing.T) *exam.SQLStore {
	t.Helper()
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return exam.NewSQLStore(dbh, "sqlite")
}

// seedCatalog builds one certification with two knowledge areas, a free
// package, and a three-question exam (two single-answer in area one, one in
// area two).
func seedCatalog(t *testing.T, s *exam.SQLStore) (certID, pkgID, examID string) {
	t.Helper()
	ctx := context.Background()

	cert := exam.Certification{ID: "cert-1", Slug: "cloud-admin", Name: "Cloud Administrator", PassingThresholdPct: 65, Active: true}
	if err := s.PutCertification(ctx, cert); err != nil {
		t.Fatalf("put certification: %v", err)
	}
	areas := []exam.KnowledgeArea{
		{ID: "ka-um", CertificationID: "cert-1", Name: "User Management", WeightPct: 40},
		{ID: "ka-ds", CertificationID: "cert-1", Name: "Data Security", WeightPct: 60},
	}
	for _, a := range areas {
		if err := s.PutKnowledgeArea(ctx, a); err != nil {
			t.Fatalf("put area: %v", err)
		}
	}
	if err := s.PutPackage(ctx, exam.Package{ID: "pkg-1", CertificationID: "cert-1", Name: "Starter", PriceCents: 0, Active: true}); err != nil {
		t.Fatalf("put package: %v", err)
	}
	if err := s.PutPracticeExam(ctx, exam.PracticeExam{ID: "exam-1", CertificationID: "cert-1", Title: "Practice Exam 1", TimeLimitMin: 60, Active: true}); err != nil {
		t.Fatalf("put exam: %v", err)
	}

	areaFor := map[int]string{1: "ka-um", 2: "ka-um", 3: "ka-ds"}
	for i := 1; i <= 3; i++ {
		qid := fmt.Sprintf("q%d", i)
		q := exam.Question{
			ID:                 qid,
			PracticeExamID:     "exam-1",
			KnowledgeAreaID:    areaFor[i],
			Text:               fmt.Sprintf("Question %d", i),
			Difficulty:         "medium",
			Position:           i,
			RequiredSelections: 1,
			Answers: []exam.Answer{
				{ID: qid + "-a", Text: "right", Letter: "A", IsCorrect: true},
				{ID: qid + "-b", Text: "wrong", Letter: "B"},
				{ID: qid + "-c", Text: "also wrong", Letter: "C"},
			},
		}
		if err := s.PutQuestion(ctx, q); err != nil {
			t.Fatalf("put question %s: %v", qid, err)
		}
	}
	return "cert-1", "pkg-1", "exam-1"
}

func TestCatalogRoundTrip(t *testing.T) {
	s := openTestStore(t)
	certID, _, examID := seedCatalog(t, s)
	ctx := context.Background()

	c, err := s.GetCertification(ctx, certID)
	if err != nil {
		t.Fatalf("get certification: %v", err)
	}
	if len(c.Areas) != 2 {
		t.Fatalf("areas = %d, want 2", len(c.Areas))
	}

	exams, err := s.ListPracticeExams(ctx, certID)
	if err != nil {
		t.Fatalf("list exams: %v", err)
	}
	if len(exams) != 1 || exams[0].QuestionCount != 3 {
		t.Fatalf("exams = %+v, want one exam with 3 questions", exams)
	}

	qs, err := s.GetExamQuestionsPublic(ctx, examID)
	if err != nil {
		t.Fatalf("public questions: %v", err)
	}
	if len(qs) != 3 {
		t.Fatalf("questions = %d, want 3", len(qs))
	}
	for _, q := range qs {
		for _, a := range q.Answers {
			if a.IsCorrect {
				t.Fatalf("answer key leaked on question %s", q.ID)
			}
		}
	}
}

func TestStartAttemptRequiresEnrollment(t *testing.T) {
	s := openTestStore(t)
	_, pkgID, examID := seedCatalog(t, s)
	ctx := context.Background()

	if _, err := s.StartAttempt(ctx, examID, "u1", "exam"); !errors.Is(err, exam.ErrNoAccess) {
		t.Fatalf("expected ErrNoAccess, got %v", err)
	}

	if _, err := s.Enroll(ctx, "u1", pkgID, "free"); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	a, err := s.StartAttempt(ctx, examID, "u1", "exam")
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	if a.Status != exam.StatusInProgress {
		t.Fatalf("status = %q, want in_progress", a.Status)
	}

	// Starting again returns the same in-progress attempt, not a new one.
	again, err := s.StartAttempt(ctx, examID, "u1", "exam")
	if err != nil {
		t.Fatalf("start again: %v", err)
	}
	if again.ID != a.ID {
		t.Fatalf("expected existing attempt %s, got %s", a.ID, again.ID)
	}
}

func TestEnrollIdempotent(t *testing.T) {
	s := openTestStore(t)
	_, pkgID, _ := seedCatalog(t, s)
	ctx := context.Background()

	first, err := s.Enroll(ctx, "u1", pkgID, "free")
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	second, err := s.Enroll(ctx, "u1", pkgID, "free")
	if err != nil {
		t.Fatalf("re-enroll: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("re-enroll created a second row: %s vs %s", first.ID, second.ID)
	}

	list, err := s.ListEnrollments(ctx, "u1")
	if err != nil {
		t.Fatalf("list enrollments: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("enrollments = %d, want 1", len(list))
	}
}

func TestEnrollFreeRejectsPricedPackage(t *testing.T) {
	s := openTestStore(t)
	certID, _, _ := seedCatalog(t, s)
	ctx := context.Background()

	paid := exam.Package{ID: "pkg-paid", CertificationID: certID, Name: "Pro", PriceCents: 4900, Active: true}
	if err := s.PutPackage(ctx, paid); err != nil {
		t.Fatalf("put package: %v", err)
	}

	if _, err := s.Enroll(ctx, "u1", paid.ID, "free"); !errors.Is(err, exam.ErrNoAccess) {
		t.Fatalf("free enroll on priced package: err = %v, want ErrNoAccess", err)
	}
	if _, err := s.Enroll(ctx, "u1", paid.ID, "purchase"); err != nil {
		t.Fatalf("purchase enroll: %v", err)
	}
}

func TestSaveAnswerGuards(t *testing.T) {
	s := openTestStore(t)
	_, pkgID, examID := seedCatalog(t, s)
	ctx := context.Background()

	err := s.SaveAnswer(ctx, exam.SubmittedAnswer{AttemptID: "nope", QuestionID: "q1", SelectedAnswerIDs: []string{"q1-a"}})
	if !errors.Is(err, exam.ErrNotFound) {
		t.Fatalf("unknown attempt: err = %v, want ErrNotFound", err)
	}

	if _, err := s.Enroll(ctx, "u1", pkgID, "free"); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	a, err := s.StartAttempt(ctx, examID, "u1", "exam")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.SaveAnswer(ctx, exam.SubmittedAnswer{AttemptID: a.ID, QuestionID: "q1", SelectedAnswerIDs: []string{"q1-a"}}); err != nil {
		t.Fatalf("save on open attempt: %v", err)
	}
	if _, err := s.SubmitAttempt(ctx, a.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// The guard rides in the insert, so a post-submit save writes no row.
	err = s.SaveAnswer(ctx, exam.SubmittedAnswer{AttemptID: a.ID, QuestionID: "q2", SelectedAnswerIDs: []string{"q2-a"}})
	if !errors.Is(err, exam.ErrAlreadySubmitted) {
		t.Fatalf("save after submit: err = %v, want ErrAlreadySubmitted", err)
	}
	res, err := s.GetResults(ctx, a.ID)
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	if res.CorrectAnswers != 1 {
		t.Fatalf("correct = %d, want 1: rejected save must not reach the stored answers", res.CorrectAnswers)
	}
}

func TestSubmitAttemptScoresAndWritesBack(t *testing.T) {
	s := openTestStore(t)
	_, pkgID, examID := seedCatalog(t, s)
	ctx := context.Background()

	started := time.Unix(1_700_000_000, 0)
	now := started
	s.WithClock(func() time.Time { return now })

	if _, err := s.Enroll(ctx, "u1", pkgID, "free"); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	a, err := s.StartAttempt(ctx, examID, "u1", "exam")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	answers := []exam.SubmittedAnswer{
		{AttemptID: a.ID, QuestionID: "q1", SelectedAnswerIDs: []string{"q1-a"}, TimeSpentSec: 240},
		{AttemptID: a.ID, QuestionID: "q2", SelectedAnswerIDs: []string{"q2-b"}, TimeSpentSec: 240},
		{AttemptID: a.ID, QuestionID: "q3", SelectedAnswerIDs: []string{"q3-a"}, TimeSpentSec: 240},
	}
	for _, sa := range answers {
		if err := s.SaveAnswer(ctx, sa); err != nil {
			t.Fatalf("save answer %s: %v", sa.QuestionID, err)
		}
	}

	now = started.Add(12 * time.Minute)
	res, err := s.SubmitAttempt(ctx, a.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.ScorePct != 67 || !res.Passed {
		t.Fatalf("results = %d%%/passed=%v, want 67%%/true", res.ScorePct, res.Passed)
	}
	if res.TimeEfficiency != scoring.TimeExcellent {
		t.Fatalf("time efficiency = %q, want excellent (4 min/question)", res.TimeEfficiency)
	}

	stored, err := s.GetAttempt(ctx, a.ID)
	if err != nil {
		t.Fatalf("get attempt: %v", err)
	}
	if stored.Status != exam.StatusSubmitted {
		t.Fatalf("status = %q, want submitted", stored.Status)
	}
	if stored.ScorePct != 67 || stored.CorrectAnswers != 2 || stored.TotalQuestions != 3 || !stored.Passed {
		t.Fatalf("write-back mismatch: %+v", stored)
	}
	if stored.CompletedAt == nil {
		t.Fatalf("completed_at not set")
	}
	if stored.TimeSpentMin != 12 {
		t.Fatalf("time_spent_min = %v, want 12", stored.TimeSpentMin)
	}

	// Saving after submission is rejected.
	err = s.SaveAnswer(ctx, exam.SubmittedAnswer{AttemptID: a.ID, QuestionID: "q1", SelectedAnswerIDs: []string{"q1-b"}})
	if !errors.Is(err, exam.ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}

	// A second submit returns the stored results unchanged.
	again, err := s.SubmitAttempt(ctx, a.ID)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if again.ScorePct != res.ScorePct || again.CorrectAnswers != res.CorrectAnswers {
		t.Fatalf("resubmit changed results: %+v vs %+v", again, res)
	}
}

func TestGetResultsReviewBreakdown(t *testing.T) {
	s := openTestStore(t)
	_, pkgID, examID := seedCatalog(t, s)
	ctx := context.Background()

	if _, err := s.Enroll(ctx, "u1", pkgID, "free"); err != nil {
		t.Fatalf("enroll: %v", err)
	}
	a, err := s.StartAttempt(ctx, examID, "u1", "practice")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := s.GetResults(ctx, a.ID); !errors.Is(err, exam.ErrNotSubmitted) {
		t.Fatalf("results before submit: want ErrNotSubmitted, got %v", err)
	}

	_ = s.SaveAnswer(ctx, exam.SubmittedAnswer{AttemptID: a.ID, QuestionID: "q1", SelectedAnswerIDs: []string{"q1-a"}})
	_ = s.SaveAnswer(ctx, exam.SubmittedAnswer{AttemptID: a.ID, QuestionID: "q3", SelectedAnswerIDs: []string{"q3-a"}})
	if _, err := s.SubmitAttempt(ctx, a.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	res, err := s.GetResults(ctx, a.ID)
	if err != nil {
		t.Fatalf("get results: %v", err)
	}
	if len(res.Areas) != 2 {
		t.Fatalf("areas = %d, want 2", len(res.Areas))
	}
	um, ds := res.Areas[0], res.Areas[1]
	if um.AreaID != "ka-um" || um.Correct != 1 || um.Total != 2 || um.ScorePct != 50 {
		t.Fatalf("User Management = %+v", um)
	}
	if ds.AreaID != "ka-ds" || ds.Correct != 1 || ds.Total != 1 || ds.ScorePct != 100 {
		t.Fatalf("Data Security = %+v", ds)
	}
	if len(res.Questions) != 3 || res.Questions[1].Correct {
		t.Fatalf("per-question review = %+v", res.Questions)
	}
}

func TestListAttemptsFilters(t *testing.T) {
	s := openTestStore(t)
	_, pkgID, examID := seedCatalog(t, s)
	ctx := context.Background()

	for _, u := range []string{"u1", "u2"} {
		if _, err := s.Enroll(ctx, u, pkgID, "free"); err != nil {
			t.Fatalf("enroll %s: %v", u, err)
		}
		if _, err := s.StartAttempt(ctx, examID, u, "exam"); err != nil {
			t.Fatalf("start %s: %v", u, err)
		}
	}

	all, err := s.ListAttempts(ctx, exam.AttemptListOpts{ExamID: examID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("attempts = %d, want 2", len(all))
	}

	mine, err := s.ListAttempts(ctx, exam.AttemptListOpts{UserID: "u1"})
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 1 || mine[0].UserID != "u1" {
		t.Fatalf("filtered attempts = %+v", mine)
	}
}
