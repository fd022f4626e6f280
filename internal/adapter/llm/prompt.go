package llm

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"gita/internal/domain"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

var userTemplate = template.Must(
	template.New("user.txt").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(promptTemplates, "templates/user.txt"),
)

// PromptData is what the user prompt template renders.
type PromptData struct {
	Question  string
	Verses    []domain.SelectedVerse
	Discussed []string
	History   []domain.Turn
}

// Prompt is a rendered system/user message pair.
type Prompt struct {
	System string
	User   string
}

// SystemPrompt returns the fixed persona prompt.
func SystemPrompt() string {
	data, err := promptTemplates.ReadFile("templates/system.txt")
	if err != nil {
		panic(fmt.Sprintf("system prompt missing: %v", err))
	}
	return strings.TrimSpace(string(data))
}

// BuildPrompt renders the prompt pair for req. Verses from earlier turns
// that are also selected now are listed only once.
func BuildPrompt(req domain.AnswerRequest) (Prompt, error) {
	data := PromptData{
		Question: req.Question,
		Verses:   req.Verses,
		History:  req.History,
	}

	current := make(map[domain.VerseID]struct{}, len(req.Verses))
	for _, v := range req.Verses {
		current[v.VerseID] = struct{}{}
	}
	seen := make(map[domain.VerseID]struct{})
	for _, group := range req.PriorContext {
		for _, v := range group {
			id := v.ID()
			if _, ok := current[id]; ok {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			data.Discussed = append(data.Discussed, fmt.Sprintf("Chapter %d, Verse %d", v.Chapter, v.VerseNumber))
		}
	}

	var buf bytes.Buffer
	if err := userTemplate.Execute(&buf, data); err != nil {
		return Prompt{}, fmt.Errorf("failed to render prompt: %w", err)
	}

	return Prompt{
		System: SystemPrompt(),
		User:   buf.String(),
	}, nil
}
