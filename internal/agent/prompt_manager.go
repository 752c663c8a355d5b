package agent

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	plannerPromptFile    = "planning.md"
	summarizerPromptFile = "summary.md"
)

// PromptManager loads system prompt overrides from a directory of markdown
// files. "<tool>.md" replaces a tool's built-in prompt, planning.md and
// summary.md replace the pipeline prompts, and every other .md file is
// joined into a persona that prefixes all system prompts.
type PromptManager struct {
	Directory string
	Language  string
}

func NewPromptManager(dir, language string) *PromptManager {
	return &PromptManager{Directory: dir, Language: language}
}

// GetPersona concatenates the persona files in a fixed order. It returns an
// empty string when no directory is configured.
func (pm *PromptManager) GetPersona() (string, error) {
	if pm == nil || pm.Directory == "" {
		return "", nil
	}
	files, err := os.ReadDir(pm.Directory)
	if err != nil {
		return "", fmt.Errorf("failed to read prompts directory: %v", err)
	}

	order := map[string]int{
		"identity.md": 1,
		"soul.md":     2,
		"user.md":     3,
	}

	sort.Slice(files, func(i, j int) bool {
		oi, okI := order[files[i].Name()]
		oj, okJ := order[files[j].Name()]
		if okI && okJ {
			return oi < oj
		}
		if okI {
			return true
		}
		if okJ {
			return false
		}
		return files[i].Name() < files[j].Name()
	})

	var contents []string
	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, ".md") || isOverrideFile(name) {
			continue
		}
		path := filepath.Join(pm.Directory, name)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Warning: Failed to read prompt file %s: %v", path, err)
			continue
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			contents = append(contents, text)
		}
	}
	return strings.Join(contents, "\n\n---\n\n"), nil
}

// SystemPrompt returns the full system prompt for tool.
func (pm *PromptManager) SystemPrompt(tool Tool) string {
	return pm.compose(pm.override(string(tool)+".md", Describe(tool).SystemPrompt))
}

func (pm *PromptManager) PlannerPrompt() string {
	return pm.compose(pm.override(plannerPromptFile, defaultPlannerSystemPrompt))
}

func (pm *PromptManager) SummarizerPrompt() string {
	return pm.compose(pm.override(summarizerPromptFile, defaultSummarizerSystemPrompt))
}

func (pm *PromptManager) override(name, fallback string) string {
	if pm == nil || pm.Directory == "" {
		return fallback
	}
	data, err := os.ReadFile(filepath.Join(pm.Directory, name))
	if err != nil {
		return fallback
	}
	if text := strings.TrimSpace(string(data)); text != "" {
		return text
	}
	return fallback
}

func (pm *PromptManager) compose(prompt string) string {
	persona, err := pm.GetPersona()
	if err != nil {
		log.Printf("Warning: Failed to load persona: %v", err)
	}
	if persona != "" {
		prompt = persona + "\n\n---\n\n" + prompt
	}
	if directive := pm.languageDirective(); directive != "" {
		prompt += "\n\n" + directive
	}
	return prompt
}

var languageNames = map[string]string{
	"ar": "Arabic",
	"en": "English",
	"fr": "French",
	"es": "Spanish",
	"de": "German",
	"tr": "Turkish",
	"ur": "Urdu",
}

func (pm *PromptManager) languageDirective() string {
	if pm == nil || pm.Language == "" {
		return ""
	}
	name, ok := languageNames[strings.ToLower(pm.Language)]
	if !ok {
		name = pm.Language
	}
	return fmt.Sprintf("Always answer in %s.", name)
}

func isOverrideFile(name string) bool {
	if name == plannerPromptFile || name == summarizerPromptFile {
		return true
	}
	_, ok := ParseTool(strings.TrimSuffix(name, ".md"))
	return ok
}
