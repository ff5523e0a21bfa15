package scoring

// Difficulty is one of the three fixed question bands.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists the bands in their canonical display order. Every
// breakdown the engine produces contains all three, in this order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Mode distinguishes a timed exam session from untimed self-paced practice.
type Mode string

const (
	ModeExam     Mode = "exam"
	ModePractice Mode = "practice"
)

// PerformanceLevel is the qualitative bucket derived from a score percentage.
type PerformanceLevel string

const (
	PerfExcellent        PerformanceLevel = "excellent"
	PerfGood             PerformanceLevel = "good"
	PerfNeedsImprovement PerformanceLevel = "needs_improvement"
	PerfPoor             PerformanceLevel = "poor"
)

// TimeEfficiency is the qualitative bucket derived from average time spent
// per question.
type TimeEfficiency string

const (
	TimeExcellent TimeEfficiency = "excellent"
	TimeGood      TimeEfficiency = "good"
	TimeAdequate  TimeEfficiency = "adequate"
	TimeRushed    TimeEfficiency = "rushed"
)

// Answer is one candidate answer attached to a question.
type Answer struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct"`
	Letter     string `json:"letter"` // A-E
}

// Question is the read-only view the engine grades against. Answers carries
// the full candidate set including the is-correct flags; KnowledgeAreaID and
// the embedded area name/weight come from the persistence-boundary join.
type Question struct {
	ID                 string     `json:"id"`
	Text               string     `json:"text"`
	Difficulty         Difficulty `json:"difficulty"`
	Position           int        `json:"position"`
	RequiredSelections int        `json:"required_selections"` // 1 single-choice, 2+ multi-select
	Answers            []Answer   `json:"answers"`

	KnowledgeAreaID     string  `json:"knowledge_area_id"`
	KnowledgeAreaName   string  `json:"knowledge_area_name"`
	KnowledgeAreaWeight float64 `json:"knowledge_area_weight"` // syllabus share, display-only
}

// SubmittedAnswer is the learner's selection(s) for one question of one
// attempt. A question with no SubmittedAnswer row is scored incorrect.
type SubmittedAnswer struct {
	AttemptID         string   `json:"attempt_id"`
	QuestionID        string   `json:"question_id"`
	SelectedAnswerIDs []string `json:"selected_answer_ids"`
	TimeSpentSec      int      `json:"time_spent_sec"`
}

// AttemptInfo is the slice of attempt metadata the engine needs.
type AttemptInfo struct {
	ID               string  `json:"id"`
	Mode             Mode    `json:"mode"`
	TimeSpentMinutes float64 `json:"time_spent_minutes"`
}

// QuestionResult records the outcome of a single question, in exam order,
// for later review-mode display.
type QuestionResult struct {
	QuestionID        string   `json:"question_id"`
	Position          int      `json:"position"`
	Correct           bool     `json:"correct"`
	SelectedAnswerIDs []string `json:"selected_answer_ids"`
}

// AreaScore is the per-knowledge-area breakdown entry. WeightPct is the
// area's declared syllabus weight, passed through unchanged.
type AreaScore struct {
	AreaID    string           `json:"area_id"`
	Name      string           `json:"name"`
	WeightPct float64          `json:"weight_pct"`
	Correct   int              `json:"correct"`
	Total     int              `json:"total"`
	ScorePct  int              `json:"score_pct"`
	Level     PerformanceLevel `json:"level"`
}

// DifficultyScore is one band of the per-difficulty breakdown.
type DifficultyScore struct {
	Difficulty Difficulty `json:"difficulty"`
	Correct    int        `json:"correct"`
	Total      int        `json:"total"`
	ScorePct   int        `json:"score_pct"`
}

// Results is the immutable output of ComputeResults. It retains no
// references to the inputs.
type Results struct {
	AttemptID      string            `json:"attempt_id"`
	ScorePct       int               `json:"score_pct"`
	CorrectAnswers int               `json:"correct_answers"`
	TotalQuestions int               `json:"total_questions"`
	Passed         bool              `json:"passed"`
	Questions      []QuestionResult  `json:"questions"`
	Areas          []AreaScore       `json:"areas"`
	Difficulty     []DifficultyScore `json:"difficulty"`
	Performance    PerformanceLevel  `json:"performance"`
	TimeEfficiency TimeEfficiency    `json:"time_efficiency"`
}
