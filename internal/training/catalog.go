// Package training holds the static training material: the stage catalog,
// the agent system prompts and the opening messages.
package training

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ashureev/symbient-academy/internal/domain"
)

const stagePlaceholder = "{stage}"

//go:embed catalog.yaml
var defaultCatalog []byte

// StageInfo describes a stage for display.
type StageInfo struct {
	Stage       domain.Stage `json:"stage" yaml:"stage"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description" yaml:"description"`
	Progress    float64      `json:"progress" yaml:"-"`
}

type agentEntry struct {
	Prompt  string `yaml:"prompt"`
	Welcome string `yaml:"welcome"`
}

// Catalog is the parsed training material.
type Catalog struct {
	Preamble string                      `yaml:"preamble"`
	Stages   []StageInfo                 `yaml:"stages"`
	Agents   map[domain.Agent]agentEntry `yaml:"agents"`
}

// LoadCatalog parses the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// MustLoadCatalog is LoadCatalog for package-level initialisation and tests.
func MustLoadCatalog() *Catalog {
	c, err := LoadCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCatalog decodes and validates a catalog payload.
func ParseCatalog(data []byte) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("catalog: payload is empty")
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	for i := range c.Stages {
		c.Stages[i].Progress = c.Stages[i].Stage.Progress()
	}
	return &c, nil
}

// Validate checks that the catalog covers every stage in order and both agents.
func (c *Catalog) Validate() error {
	if !strings.Contains(c.Preamble, stagePlaceholder) {
		return fmt.Errorf("catalog: preamble must contain %s", stagePlaceholder)
	}
	order := domain.Stages()
	if len(c.Stages) != len(order) {
		return fmt.Errorf("catalog: expected %d stages, got %d", len(order), len(c.Stages))
	}
	for i, st := range order {
		if c.Stages[i].Stage != st {
			return fmt.Errorf("catalog: stage %d is %q, want %q", i, c.Stages[i].Stage, st)
		}
		if strings.TrimSpace(c.Stages[i].Title) == "" {
			return fmt.Errorf("catalog: stage %q has no title", st)
		}
	}
	for _, a := range domain.Agents() {
		entry, ok := c.Agents[a]
		if !ok || strings.TrimSpace(entry.Prompt) == "" {
			return fmt.Errorf("catalog: agent %q has no prompt", a)
		}
	}
	return nil
}

// StageInfo returns display information for a stage.
func (c *Catalog) StageInfo(stage domain.Stage) StageInfo {
	if idx := stage.Index(); idx >= 0 && idx < len(c.Stages) {
		return c.Stages[idx]
	}
	return StageInfo{Stage: stage, Title: "Unknown Stage", Description: "Processing..."}
}

// StageList returns all stages in order.
func (c *Catalog) StageList() []StageInfo {
	out := make([]StageInfo, len(c.Stages))
	copy(out, c.Stages)
	return out
}

// Welcome returns the opening message an agent shows when a session starts.
func (c *Catalog) Welcome(agent domain.Agent) string {
	return c.Agents[agent].Welcome
}
