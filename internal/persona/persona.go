// Package persona maps selectable model IDs to their provider route and the
// system prompt used for player analysis.
package persona

import (
	"errors"
	"fmt"

	"github.com/twobai/playerreport/internal/constants"
)

var ErrUnknownModel = errors.New("unknown model")

const analystInstructions = "You specialize in analyzing 2b2t Minecraft server player data and generating comprehensive player reports. " +
	"Focus on identifying patterns in connection times for timezone estimation, analyzing chat content for group affiliations and behavior patterns, " +
	"and providing detailed insights into player activity levels and reputation. Format your responses as structured reports with clear sections."

const (
	introOpenAI   = "You are a helpful AI assistant created by OpenAI. "
	introGemini   = "You are Gemini, an AI assistant created by Google. "
	introDeepSeek = "You are DeepSeek, an AI assistant created by DeepSeek. "
)

type Model struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Route        string `json:"-"`
	SystemPrompt string `json:"-"`
}

// catalog order is the order shown in the model picker.
var catalog = []Model{
	{ID: "gpt-5-nano", Name: "GPT-5 Nano", Route: "openai/gpt-5-nano", SystemPrompt: introOpenAI + analystInstructions},
	{ID: "gpt-oss-20b", Name: "GPT OSS 20B", Route: "openai/gpt-oss-20b", SystemPrompt: introOpenAI + analystInstructions},
	{ID: "gemini-2.5-flash-lite", Name: "Gemini 2.5 Flash Lite", Route: "google/gemini-2.5-flash-lite", SystemPrompt: introGemini + analystInstructions},
	{ID: "deepseek-chat-v3.1", Name: "DeepSeek Chat v3.1", Route: "deepseek/deepseek-chat-v3.1", SystemPrompt: introDeepSeek + analystInstructions},
}

type Table struct {
	models    []Model
	byID      map[string]Model
	defaultID string
}

func NewTable() *Table {
	return newTable(catalog, constants.DefaultModelID)
}

func newTable(models []Model, defaultID string) *Table {
	t := &Table{models: models, byID: make(map[string]Model, len(models)), defaultID: defaultID}
	for _, m := range models {
		t.byID[m.ID] = m
	}
	return t
}

// Lookup resolves a model ID; an empty ID selects the default model.
func (t *Table) Lookup(id string) (Model, error) {
	if id == "" {
		id = t.defaultID
	}
	m, ok := t.byID[id]
	if !ok {
		return Model{}, fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}
	return m, nil
}

func (t *Table) Models() []Model {
	out := make([]Model, len(t.models))
	copy(out, t.models)
	return out
}
