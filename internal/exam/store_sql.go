package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/quizforce/quizforce/internal/audit"
	"github.com/quizforce/quizforce/internal/scoring"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrNoAccess         = errors.New("no access to exam")
	ErrAlreadySubmitted = errors.New("attempt already submitted")
	ErrNotSubmitted     = errors.New("attempt not submitted")
)

// SQLStore implements Store over database/sql. It works unchanged on both
// the modernc sqlite and pgx drivers ($n placeholders).
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	now    func() time.Time
	events *audit.EventRepo
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver, now: time.Now, events: audit.NewEventRepo(db)}
}

// WithClock overrides the store's clock. Tests use it to pin attempt
// timings.
func (s *SQLStore) WithClock(now func() time.Time) *SQLStore {
	s.now = now
	return s
}

/* ---------------- Catalog ---------------- */

func (s *SQLStore) ListCertifications(ctx context.Context, opts ListOpts) ([]Certification, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT id, slug, name, description, passing_threshold_pct, active, created_at
	        FROM certifications WHERE active = TRUE`
	args := []any{}
	n := 1
	if opts.Q != "" {
		q += fmt.Sprintf(` AND name LIKE $%d`, n)
		args = append(args, "%"+opts.Q+"%")
		n++
	}
	q += fmt.Sprintf(` ORDER BY name LIMIT $%d OFFSET $%d`, n, n+1)
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Certification
	for rows.Next() {
		var c Certification
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.PassingThresholdPct, &c.Active, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetCertification(ctx context.Context, id string) (Certification, error) {
	var c Certification
	err := s.db.QueryRowContext(ctx,
		`SELECT id, slug, name, description, passing_threshold_pct, active, created_at
		   FROM certifications WHERE id=$1 OR slug=$1`, id).
		Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &c.PassingThresholdPct, &c.Active, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Certification{}, ErrNotFound
	}
	if err != nil {
		return Certification{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, certification_id, name, weight_pct FROM knowledge_areas
		  WHERE certification_id=$1 ORDER BY name`, c.ID)
	if err != nil {
		return Certification{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var a KnowledgeArea
		if err := rows.Scan(&a.ID, &a.CertificationID, &a.Name, &a.WeightPct); err != nil {
			return Certification{}, err
		}
		c.Areas = append(c.Areas, a)
	}
	return c, rows.Err()
}

func (s *SQLStore) ListPackages(ctx context.Context, certID string) ([]Package, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, certification_id, name, description, price_cents, active, created_at
		   FROM packages WHERE certification_id=$1 AND active = TRUE ORDER BY price_cents, name`, certID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Package
	for rows.Next() {
		var p Package
		if err := rows.Scan(&p.ID, &p.CertificationID, &p.Name, &p.Description, &p.PriceCents, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListPracticeExams(ctx context.Context, certID string) ([]PracticeExam, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.certification_id, e.title, e.time_limit_min, e.active, e.created_at,
		        (SELECT COUNT(1) FROM questions q WHERE q.practice_exam_id = e.id)
		   FROM practice_exams e WHERE e.certification_id=$1 AND e.active = TRUE ORDER BY e.title`, certID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PracticeExam
	for rows.Next() {
		var e PracticeExam
		if err := rows.Scan(&e.ID, &e.CertificationID, &e.Title, &e.TimeLimitMin, &e.Active, &e.CreatedAt, &e.QuestionCount); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetPracticeExam(ctx context.Context, id string) (PracticeExam, error) {
	var e PracticeExam
	err := s.db.QueryRowContext(ctx,
		`SELECT e.id, e.certification_id, e.title, e.time_limit_min, e.active, e.created_at,
		        (SELECT COUNT(1) FROM questions q WHERE q.practice_exam_id = e.id)
		   FROM practice_exams e WHERE e.id=$1`, id).
		Scan(&e.ID, &e.CertificationID, &e.Title, &e.TimeLimitMin, &e.Active, &e.CreatedAt, &e.QuestionCount)
	if errors.Is(err, sql.ErrNoRows) {
		return PracticeExam{}, ErrNotFound
	}
	return e, err
}

/* ---------------- Admin authoring ---------------- */

func (s *SQLStore) PutCertification(ctx context.Context, c Certification) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO certifications (id, slug, name, description, passing_threshold_pct, active, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (id) DO UPDATE SET slug=EXCLUDED.slug, name=EXCLUDED.name,
		   description=EXCLUDED.description, passing_threshold_pct=EXCLUDED.passing_threshold_pct,
		   active=EXCLUDED.active`,
		c.ID, c.Slug, c.Name, c.Description, c.PassingThresholdPct, c.Active, s.now().Unix())
	return err
}

func (s *SQLStore) PutKnowledgeArea(ctx context.Context, a KnowledgeArea) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO knowledge_areas (id, certification_id, name, weight_pct)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, weight_pct=EXCLUDED.weight_pct`,
		a.ID, a.CertificationID, a.Name, a.WeightPct)
	return err
}

func (s *SQLStore) PutPackage(ctx context.Context, p Package) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO packages (id, certification_id, name, description, price_cents, active, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (id) DO UPDATE SET name=EXCLUDED.name, description=EXCLUDED.description,
		   price_cents=EXCLUDED.price_cents, active=EXCLUDED.active`,
		p.ID, p.CertificationID, p.Name, p.Description, p.PriceCents, p.Active, s.now().Unix())
	return err
}

func (s *SQLStore) PutPracticeExam(ctx context.Context, e PracticeExam) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO practice_exams (id, certification_id, title, time_limit_min, active, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title,
		   time_limit_min=EXCLUDED.time_limit_min, active=EXCLUDED.active`,
		e.ID, e.CertificationID, e.Title, e.TimeLimitMin, e.Active, s.now().Unix())
	return err
}

// PutQuestion upserts a question and replaces its candidate answers in one
// transaction.
func (s *SQLStore) PutQuestion(ctx context.Context, q Question) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO questions (id, practice_exam_id, knowledge_area_id, text, difficulty, position, required_selections)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (id) DO UPDATE SET knowledge_area_id=EXCLUDED.knowledge_area_id,
		   text=EXCLUDED.text, difficulty=EXCLUDED.difficulty, position=EXCLUDED.position,
		   required_selections=EXCLUDED.required_selections`,
		q.ID, q.PracticeExamID, q.KnowledgeAreaID, q.Text, q.Difficulty, q.Position, q.RequiredSelections); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM answers WHERE question_id=$1`, q.ID); err != nil {
		return err
	}
	for _, a := range q.Answers {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO answers (id, question_id, text, letter, is_correct) VALUES ($1,$2,$3,$4,$5)`,
			a.ID, q.ID, a.Text, a.Letter, a.IsCorrect); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

/* ---------------- Enrollment ---------------- */

// Enroll is idempotent per user+package: re-enrolling returns the existing
// row.
func (s *SQLStore) Enroll(ctx context.Context, userID, packageID, source string) (Enrollment, error) {
	var price int
	err := s.db.QueryRowContext(ctx,
		`SELECT price_cents FROM packages WHERE id=$1 AND active = TRUE`, packageID).Scan(&price)
	if errors.Is(err, sql.ErrNoRows) {
		return Enrollment{}, ErrNotFound
	}
	if err != nil {
		return Enrollment{}, err
	}
	// A free-source enrollment cannot claim a priced package; paid access
	// arrives with source "purchase" from the payment writer.
	if source == "free" && price > 0 {
		return Enrollment{}, ErrNoAccess
	}

	r, err := s.db.ExecContext(ctx,
		`INSERT INTO enrollments (id, user_id, package_id, source, created_at)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (user_id, package_id) DO NOTHING`,
		uuid.NewString(), userID, packageID, source, s.now().Unix())
	if err != nil {
		return Enrollment{}, err
	}
	inserted, _ := r.RowsAffected()

	var e Enrollment
	err = s.db.QueryRowContext(ctx,
		`SELECT id, user_id, package_id, source, created_at FROM enrollments
		  WHERE user_id=$1 AND package_id=$2`, userID, packageID).
		Scan(&e.ID, &e.UserID, &e.PackageID, &e.Source, &e.CreatedAt)
	if err != nil {
		return Enrollment{}, err
	}
	if inserted > 0 {
		s.emit(ctx, audit.TypeEnrollmentCreated, e.ID, e)
	}
	return e, nil
}

func (s *SQLStore) ListEnrollments(ctx context.Context, userID string) ([]Enrollment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, package_id, source, created_at FROM enrollments
		  WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Enrollment
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.ID, &e.UserID, &e.PackageID, &e.Source, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// HasAccess reports whether the user holds an enrollment in any package of
// the exam's certification.
func (s *SQLStore) HasAccess(ctx context.Context, userID, examID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1)
		   FROM enrollments en
		   JOIN packages p ON p.id = en.package_id
		   JOIN practice_exams e ON e.certification_id = p.certification_id
		  WHERE en.user_id=$1 AND e.id=$2`, userID, examID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

/* ---------------- Attempt lifecycle ---------------- */

// StartAttempt opens an attempt for the user on the exam. If the user
// already has an in-progress attempt on it, that attempt is returned
// instead of opening a second one.
func (s *SQLStore) StartAttempt(ctx context.Context, examID, userID, mode string) (Attempt, error) {
	if _, err := s.GetPracticeExam(ctx, examID); err != nil {
		return Attempt{}, err
	}
	ok, err := s.HasAccess(ctx, userID, examID)
	if err != nil {
		return Attempt{}, err
	}
	if !ok {
		return Attempt{}, ErrNoAccess
	}

	var existing string
	err = s.db.QueryRowContext(ctx,
		`SELECT id FROM attempts WHERE exam_id=$1 AND user_id=$2 AND status=$3`,
		examID, userID, StatusInProgress).Scan(&existing)
	if err == nil {
		return s.GetAttempt(ctx, existing)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, err
	}

	if mode != string(scoring.ModePractice) {
		mode = string(scoring.ModeExam)
	}
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (id, exam_id, user_id, mode, status, started_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		id, examID, userID, mode, StatusInProgress, s.now().Unix()); err != nil {
		return Attempt{}, err
	}
	return s.GetAttempt(ctx, id)
}

// SaveAnswer upserts the learner's selection for one question. The status
// guard rides in the write itself, so once a submit has committed no
// further rows can land on the attempt.
func (s *SQLStore) SaveAnswer(ctx context.Context, sa SubmittedAnswer) error {
	buf, err := json.Marshal(sa.SelectedAnswerIDs)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO submitted_answers (attempt_id, question_id, selected_ids_json, time_spent_sec)
		 SELECT $1, $2, $3, $4
		  WHERE EXISTS (SELECT 1 FROM attempts WHERE id=$1 AND status=$5)
		 ON CONFLICT (attempt_id, question_id) DO UPDATE SET
		   selected_ids_json=EXCLUDED.selected_ids_json, time_spent_sec=EXCLUDED.time_spent_sec`,
		sa.AttemptID, sa.QuestionID, string(buf), sa.TimeSpentSec, StatusInProgress)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := s.GetAttempt(ctx, sa.AttemptID); err != nil {
			return err
		}
		return ErrAlreadySubmitted
	}
	return nil
}

// SubmitAttempt closes the attempt: it loads the typed question join and
// the stored answers, runs the scoring engine, and writes the derived
// fields back onto the attempt. Submitting an already-submitted attempt
// returns its stored results unchanged.
func (s *SQLStore) SubmitAttempt(ctx context.Context, attemptID string) (scoring.Results, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return scoring.Results{}, err
	}
	if a.Status == StatusSubmitted {
		return s.GetResults(ctx, attemptID)
	}
	if a.Status != StatusInProgress {
		return scoring.Results{}, fmt.Errorf("attempt %s is %s", attemptID, a.Status)
	}

	questions, threshold, err := s.loadScoringInput(ctx, a.ExamID)
	if err != nil {
		return scoring.Results{}, err
	}
	submitted, err := s.loadSubmittedAnswers(ctx, attemptID)
	if err != nil {
		return scoring.Results{}, err
	}

	completedAt := s.now().Unix()
	minutes := float64(completedAt-a.StartedAt) / 60.0
	if minutes < 0 {
		minutes = 0
	}

	res := scoring.ComputeResults(questions, submitted, scoring.AttemptInfo{
		ID:               a.ID,
		Mode:             scoring.Mode(a.Mode),
		TimeSpentMinutes: minutes,
	}, threshold)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return scoring.Results{}, err
	}
	defer tx.Rollback()

	r, err := tx.ExecContext(ctx,
		`UPDATE attempts SET status=$1, score_pct=$2, correct_answers=$3, total_questions=$4,
		        passed=$5, performance=$6, time_efficiency=$7, time_spent_min=$8, completed_at=$9
		  WHERE id=$10 AND status=$11`,
		StatusSubmitted, res.ScorePct, res.CorrectAnswers, res.TotalQuestions,
		res.Passed, string(res.Performance), string(res.TimeEfficiency), minutes, completedAt,
		attemptID, StatusInProgress)
	if err != nil {
		return scoring.Results{}, err
	}
	if n, _ := r.RowsAffected(); n == 0 {
		// lost the race to a concurrent submit; the stored results win
		return s.GetResults(ctx, attemptID)
	}
	if err := tx.Commit(); err != nil {
		return scoring.Results{}, err
	}
	s.emit(ctx, audit.TypeAttemptSubmitted, attemptID, map[string]any{
		"attempt_id": attemptID,
		"user_id":    a.UserID,
		"exam_id":    a.ExamID,
		"score_pct":  res.ScorePct,
		"passed":     res.Passed,
	})
	return res, nil
}

// emit records an audit event. Failures are logged, not surfaced: the
// caller's write has already committed.
func (s *SQLStore) emit(ctx context.Context, typ, key string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Append(ctx, typ, key, payload); err != nil {
		log.Printf("audit: append %s %s: %v", typ, key, err)
	}
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	var a Attempt
	err := s.db.QueryRowContext(ctx,
		`SELECT id, exam_id, user_id, mode, status, score_pct, correct_answers, total_questions,
		        passed, performance, time_efficiency, time_spent_min, started_at, completed_at
		   FROM attempts WHERE id=$1`, id).
		Scan(&a.ID, &a.ExamID, &a.UserID, &a.Mode, &a.Status, &a.ScorePct, &a.CorrectAnswers,
			&a.TotalQuestions, &a.Passed, &a.Performance, &a.TimeEfficiency, &a.TimeSpentMin,
			&a.StartedAt, &a.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, ErrNotFound
	}
	return a, err
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT id, exam_id, user_id, mode, status, score_pct, correct_answers, total_questions,
	             passed, performance, time_efficiency, time_spent_min, started_at, completed_at
	        FROM attempts WHERE 1=1`
	args := []any{}
	n := 1
	add := func(cond, val string) {
		q += fmt.Sprintf(" AND %s=$%d", cond, n)
		args = append(args, val)
		n++
	}
	if opts.ExamID != "" {
		add("exam_id", opts.ExamID)
	}
	if opts.UserID != "" {
		add("user_id", opts.UserID)
	}
	if opts.Status != "" {
		add("status", opts.Status)
	}
	q += fmt.Sprintf(" ORDER BY started_at DESC LIMIT $%d OFFSET $%d", n, n+1)
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.ExamID, &a.UserID, &a.Mode, &a.Status, &a.ScorePct,
			&a.CorrectAnswers, &a.TotalQuestions, &a.Passed, &a.Performance, &a.TimeEfficiency,
			&a.TimeSpentMin, &a.StartedAt, &a.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetResults rebuilds the full Results for a submitted attempt. The engine
// is deterministic, so recomputing from the stored answers reproduces what
// was written at submission.
func (s *SQLStore) GetResults(ctx context.Context, attemptID string) (scoring.Results, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return scoring.Results{}, err
	}
	if a.Status != StatusSubmitted {
		return scoring.Results{}, ErrNotSubmitted
	}
	questions, threshold, err := s.loadScoringInput(ctx, a.ExamID)
	if err != nil {
		return scoring.Results{}, err
	}
	submitted, err := s.loadSubmittedAnswers(ctx, attemptID)
	if err != nil {
		return scoring.Results{}, err
	}
	return scoring.ComputeResults(questions, submitted, scoring.AttemptInfo{
		ID:               a.ID,
		Mode:             scoring.Mode(a.Mode),
		TimeSpentMinutes: a.TimeSpentMin,
	}, threshold), nil
}

/* ---------------- Question fetch ---------------- */

// GetExamQuestionsPublic returns the exam's questions with answer keys
// stripped, for delivery to a test taker.
func (s *SQLStore) GetExamQuestionsPublic(ctx context.Context, examID string) ([]Question, error) {
	questions, err := s.loadAuthoredQuestions(ctx, examID)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		for j := range questions[i].Answers {
			questions[i].Answers[j].IsCorrect = false
		}
	}
	return questions, nil
}

func (s *SQLStore) loadAuthoredQuestions(ctx context.Context, examID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, practice_exam_id, knowledge_area_id, text, difficulty, position, required_selections
		   FROM questions WHERE practice_exam_id=$1 ORDER BY position`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Question
	byID := map[string]int{}
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.PracticeExamID, &q.KnowledgeAreaID, &q.Text, &q.Difficulty, &q.Position, &q.RequiredSelections); err != nil {
			return nil, err
		}
		byID[q.ID] = len(out)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	arows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.question_id, a.text, a.letter, a.is_correct
		   FROM answers a JOIN questions q ON q.id = a.question_id
		  WHERE q.practice_exam_id=$1 ORDER BY a.letter`, examID)
	if err != nil {
		return nil, err
	}
	defer arows.Close()
	for arows.Next() {
		var a Answer
		if err := arows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.Letter, &a.IsCorrect); err != nil {
			return nil, err
		}
		if i, ok := byID[a.QuestionID]; ok {
			out[i].Answers = append(out[i].Answers, a)
		}
	}
	return out, arows.Err()
}

// loadScoringInput builds the engine's typed question view for an exam,
// joined with knowledge-area names/weights, plus the certification's
// passing threshold.
func (s *SQLStore) loadScoringInput(ctx context.Context, examID string) ([]scoring.Question, int, error) {
	var threshold int
	err := s.db.QueryRowContext(ctx,
		`SELECT c.passing_threshold_pct
		   FROM practice_exams e JOIN certifications c ON c.id = e.certification_id
		  WHERE e.id=$1`, examID).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, ErrNotFound
	}
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT q.id, q.text, q.difficulty, q.position, q.required_selections,
		        q.knowledge_area_id, ka.name, ka.weight_pct
		   FROM questions q JOIN knowledge_areas ka ON ka.id = q.knowledge_area_id
		  WHERE q.practice_exam_id=$1 ORDER BY q.position`, examID)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []scoring.Question
	byID := map[string]int{}
	for rows.Next() {
		var q scoring.Question
		var diff string
		if err := rows.Scan(&q.ID, &q.Text, &diff, &q.Position, &q.RequiredSelections,
			&q.KnowledgeAreaID, &q.KnowledgeAreaName, &q.KnowledgeAreaWeight); err != nil {
			return nil, 0, err
		}
		q.Difficulty = scoring.Difficulty(diff)
		byID[q.ID] = len(out)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	arows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.question_id, a.text, a.letter, a.is_correct
		   FROM answers a JOIN questions q ON q.id = a.question_id
		  WHERE q.practice_exam_id=$1 ORDER BY a.letter`, examID)
	if err != nil {
		return nil, 0, err
	}
	defer arows.Close()
	for arows.Next() {
		var a scoring.Answer
		if err := arows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.Letter, &a.IsCorrect); err != nil {
			return nil, 0, err
		}
		if i, ok := byID[a.QuestionID]; ok {
			out[i].Answers = append(out[i].Answers, a)
		}
	}
	return out, threshold, arows.Err()
}

func (s *SQLStore) loadSubmittedAnswers(ctx context.Context, attemptID string) ([]scoring.SubmittedAnswer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT attempt_id, question_id, selected_ids_json, time_spent_sec
		   FROM submitted_answers WHERE attempt_id=$1`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []scoring.SubmittedAnswer
	for rows.Next() {
		var sa scoring.SubmittedAnswer
		var idsJSON string
		if err := rows.Scan(&sa.AttemptID, &sa.QuestionID, &idsJSON, &sa.TimeSpentSec); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(idsJSON), &sa.SelectedAnswerIDs); err != nil {
			// malformed selection rows score as unanswered rather than
			// failing the whole submission
			log.Printf("attempt %s question %s: bad selected ids: %v", sa.AttemptID, sa.QuestionID, err)
			sa.SelectedAnswerIDs = nil
		}
		out = append(out, sa)
	}
	return out, rows.Err()
}
