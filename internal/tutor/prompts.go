package tutor

import (
	"embed"
	"strings"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.New("").
	Funcs(template.FuncMap{"join": strings.Join}).
	ParseFS(promptFS, "prompts/*.tmpl"))

// TutorName is how the chat tutor introduces itself.
const TutorName = "TutorMate"

const DefaultGradeLevel = "College Year 1"

// Difficulty levels understood by the chat tutor.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

var difficultyStyle = map[string]string{
	DifficultyBeginner:     "Ask simple, foundational questions.",
	DifficultyIntermediate: "Ask conceptual questions.",
	DifficultyAdvanced:     "Ask challenging, advanced questions.",
}

func render(name string, data any) (string, error) {
	var b strings.Builder
	if err := prompts.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s ChatSettings) withDefaults() ChatSettings {
	if strings.TrimSpace(s.Subject) == "" {
		s.Subject = "Math"
	}
	if _, ok := difficultyStyle[s.Difficulty]; !ok {
		s.Difficulty = DifficultyIntermediate
	}
	if strings.TrimSpace(s.GradeLevel) == "" {
		s.GradeLevel = DefaultGradeLevel
	}
	return s
}

func chatSystem(s ChatSettings) (string, error) {
	s = s.withDefaults()
	return render("chat.tmpl", struct {
		Name       string
		Subject    string
		GradeLevel string
		Style      string
	}{TutorName, s.Subject, s.GradeLevel, difficultyStyle[s.Difficulty]})
}
