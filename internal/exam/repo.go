package exam

import (
	"context"

	"github.com/quizforce/quizforce/internal/scoring"
)

type ListOpts struct {
	Q      string
	Limit  int
	Offset int
}

type AttemptListOpts struct {
	ExamID string // filter by practice exam
	UserID string // filter by user (forced to the caller for students)
	Status string // optional: in_progress|submitted|expired
	Limit  int
	Offset int
}

// Store is the persistence boundary. The SQL implementation works over
// database/sql with either the sqlite or pgx driver.
type Store interface {
	// Catalog
	ListCertifications(ctx context.Context, opts ListOpts) ([]Certification, error)
	GetCertification(ctx context.Context, id string) (Certification, error)
	ListPackages(ctx context.Context, certID string) ([]Package, error)
	ListPracticeExams(ctx context.Context, certID string) ([]PracticeExam, error)
	GetPracticeExam(ctx context.Context, id string) (PracticeExam, error)

	// Admin authoring
	PutCertification(ctx context.Context, c Certification) error
	PutKnowledgeArea(ctx context.Context, a KnowledgeArea) error
	PutPackage(ctx context.Context, p Package) error
	PutPracticeExam(ctx context.Context, e PracticeExam) error
	PutQuestion(ctx context.Context, q Question) error
	DeleteQuestion(ctx context.Context, id string) error

	// Enrollment
	Enroll(ctx context.Context, userID, packageID, source string) (Enrollment, error)
	ListEnrollments(ctx context.Context, userID string) ([]Enrollment, error)
	HasAccess(ctx context.Context, userID, examID string) (bool, error)

	// Attempt lifecycle
	StartAttempt(ctx context.Context, examID, userID, mode string) (Attempt, error)
	SaveAnswer(ctx context.Context, sa SubmittedAnswer) error
	SubmitAttempt(ctx context.Context, attemptID string) (scoring.Results, error)
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)
	GetResults(ctx context.Context, attemptID string) (scoring.Results, error)

	// Student-safe question fetch (answer keys stripped)
	GetExamQuestionsPublic(ctx context.Context, examID string) ([]Question, error)
}
