package tutor

// Quiz is an answer key.
type Quiz struct {
	QuizID    string         `json:"quiz_id"`
	Questions []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	CorrectAnswer string   `json:"correct_answer"`
	Concepts      []string `json:"concepts"`
}

// Responses are a student's answers to a quiz.
type Responses struct {
	StudentID string           `json:"student_id"`
	Responses []QuestionAnswer `json:"responses"`
}

type QuestionAnswer struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// NormalizedQuiz joins responses with the answer key.
type NormalizedQuiz struct {
	StudentID string               `json:"student_id"`
	QuizID    string               `json:"quiz_id"`
	Questions []NormalizedQuestion `json:"questions"`
}

type NormalizedQuestion struct {
	ID            string   `json:"id"`
	QuestionText  string   `json:"question_text"`
	StudentAnswer string   `json:"student_answer"`
	CorrectAnswer string   `json:"correct_answer"`
	Concepts      []string `json:"concepts"`
}

type WeakConcept struct {
	Concept string `json:"concept"`
	Reason  string `json:"reason,omitempty"`
}

type Diagnosis struct {
	WeakConcepts []WeakConcept `json:"weak_concepts"`
	Summary      string        `json:"summary,omitempty"`
	Error        string        `json:"error,omitempty"`
}

type Explanation struct {
	Concept     string `json:"concept"`
	Explanation string `json:"explanation"`
	Example     string `json:"example,omitempty"`
}

type Explanations struct {
	Items []Explanation `json:"explanations"`
	Error string        `json:"error,omitempty"`
}

type PracticeQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type PracticeGroup struct {
	Concept   string             `json:"concept"`
	Questions []PracticeQuestion `json:"questions"`
}

type PracticeSet struct {
	Groups []PracticeGroup `json:"practice_set"`
	Error  string          `json:"error,omitempty"`
}

type GradeDetail struct {
	Question      string `json:"question"`
	StudentAnswer string `json:"student_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Concept       string `json:"concept"`
}

type GradeReport struct {
	Score   int           `json:"score"`
	Total   int           `json:"total"`
	Details []GradeDetail `json:"details"`
}

type ChatOpening struct {
	Message  string `json:"message"`
	Question string `json:"question"`
	Error    string `json:"error,omitempty"`
}

type ChatEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatTurn struct {
	Feedback     string `json:"feedback"`
	NextQuestion string `json:"next_question"`
	IsCorrect    bool   `json:"is_correct"`
	Concept      string `json:"concept"`
	Difficulty   string `json:"difficulty"`
	Error        string `json:"error,omitempty"`
}

// ChatSettings tune the tutor persona.
type ChatSettings struct {
	Subject    string `json:"subject"`
	Difficulty string `json:"difficulty"`
	GradeLevel string `json:"grade_level"`
}
