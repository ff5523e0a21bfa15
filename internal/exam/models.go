package exam

// Certification is one certification track in the catalog (e.g. a cloud
// administrator cert). PassingThresholdPct is the inclusive pass mark
// applied to every practice exam under it.
type Certification struct {
	ID                  string          `json:"id"`
	Slug                string          `json:"slug"`
	Name                string          `json:"name"`
	Description         string          `json:"description,omitempty"`
	PassingThresholdPct int             `json:"passing_threshold_pct"`
	Active              bool            `json:"active"`
	CreatedAt           int64           `json:"created_at,omitempty"`
	Areas               []KnowledgeArea `json:"areas,omitempty"`
}

// KnowledgeArea is a syllabus topic grouping. WeightPct is its declared
// share of the certification syllabus, used for reporting only.
type KnowledgeArea struct {
	ID              string  `json:"id"`
	CertificationID string  `json:"certification_id"`
	Name            string  `json:"name"`
	WeightPct       float64 `json:"weight_pct"`
}

// Package is a purchasable (or free) bundle granting access to a
// certification's practice exams. Payment handling lives outside this
// service; only the enrollment row it produces is stored here.
type Package struct {
	ID              string `json:"id"`
	CertificationID string `json:"certification_id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	PriceCents      int64  `json:"price_cents"`
	Active          bool   `json:"active"`
	CreatedAt       int64  `json:"created_at,omitempty"`
}

// PracticeExam is one exam definition under a certification.
type PracticeExam struct {
	ID              string `json:"id"`
	CertificationID string `json:"certification_id"`
	Title           string `json:"title"`
	TimeLimitMin    int    `json:"time_limit_min"`
	QuestionCount   int    `json:"question_count"`
	Active          bool   `json:"active"`
	CreatedAt       int64  `json:"created_at,omitempty"`
}

// Question is the authoring-side shape: what admins create and the store
// persists. The scoring engine consumes its own read-only view, built at
// the persistence boundary during submission.
type Question struct {
	ID                 string   `json:"id"`
	PracticeExamID     string   `json:"practice_exam_id"`
	KnowledgeAreaID    string   `json:"knowledge_area_id"`
	Text               string   `json:"text"`
	Difficulty         string   `json:"difficulty"` // easy|medium|hard
	Position           int      `json:"position"`
	RequiredSelections int      `json:"required_selections"`
	Answers            []Answer `json:"answers,omitempty"`
}

// Answer is one candidate answer. IsCorrect never reaches students;
// student-facing reads strip it.
type Answer struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	Letter     string `json:"letter"` // A-E
	IsCorrect  bool   `json:"is_correct,omitempty"`
}

// Enrollment grants a user access to one package. Source records how it
// was obtained: "free" via the API, "purchase" written by the payment
// collaborator.
type Enrollment struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	PackageID string `json:"package_id"`
	Source    string `json:"source"` // free|purchase
	CreatedAt int64  `json:"created_at,omitempty"`
}

// Attempt statuses.
const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
	StatusExpired    = "expired"
)

// Attempt is one user taking one practice exam. The score fields are
// written exactly once, at submission, from the scoring engine's output.
type Attempt struct {
	ID             string  `json:"id"`
	ExamID         string  `json:"exam_id"`
	UserID         string  `json:"user_id"`
	Mode           string  `json:"mode"`   // exam|practice
	Status         string  `json:"status"` // in_progress|submitted|expired
	ScorePct       int     `json:"score_pct"`
	CorrectAnswers int     `json:"correct_answers"`
	TotalQuestions int     `json:"total_questions"`
	Passed         bool    `json:"passed"`
	Performance    string  `json:"performance,omitempty"`
	TimeEfficiency string  `json:"time_efficiency,omitempty"`
	TimeSpentMin   float64 `json:"time_spent_min"`
	StartedAt      int64   `json:"started_at"`
	CompletedAt    *int64  `json:"completed_at,omitempty"`
}

// SubmittedAnswer is the learner's stored selection(s) for one question of
// one attempt.
type SubmittedAnswer struct {
	AttemptID         string   `json:"attempt_id"`
	QuestionID        string   `json:"question_id"`
	SelectedAnswerIDs []string `json:"selected_answer_ids"`
	TimeSpentSec      int      `json:"time_spent_sec"`
}
