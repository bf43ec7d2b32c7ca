package training

import (
	"strings"

	"github.com/ashureev/symbient-academy/internal/domain"
)

// SystemPrompt builds the system prompt for an agent at a stage.
// Unknown agents get the shared preamble only.
func (c *Catalog) SystemPrompt(agent domain.Agent, stage domain.Stage) string {
	base := strings.ReplaceAll(c.Preamble, stagePlaceholder, string(stage))
	entry, ok := c.Agents[agent]
	if !ok {
		return base
	}
	return base + "\n\n" + entry.Prompt
}
