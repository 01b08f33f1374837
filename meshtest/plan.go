package meshtest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadPlan reads a YAML plan. Omitted escalation and embedding settings
// fall back to the built-in values.
func LoadPlan(path string) (Plan, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read plan %q: %w", path, err)
	}
	plan, err := ParsePlan(b)
	if err != nil {
		return Plan{}, fmt.Errorf("plan %q: %w", path, err)
	}
	return plan, nil
}

func ParsePlan(data []byte) (Plan, error) {
	var plan Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&plan); err != nil {
		if errors.Is(err, io.EOF) {
			return Plan{}, fmt.Errorf("plan is empty")
		}
		return Plan{}, fmt.Errorf("parse plan: %w", err)
	}

	if plan.Total() == 0 {
		return Plan{}, fmt.Errorf("plan has no routing or specific cases")
	}
	if err := validateCases("routing", plan.Routing); err != nil {
		return Plan{}, err
	}
	if err := validateCases("specific", plan.Specific); err != nil {
		return Plan{}, err
	}
	for i, text := range plan.Embedding.Texts {
		if strings.TrimSpace(text) == "" {
			return Plan{}, fmt.Errorf("embedding.texts[%d] is empty", i)
		}
	}
	for i, model := range plan.Embedding.Models {
		if strings.TrimSpace(model) == "" {
			return Plan{}, fmt.Errorf("embedding.models[%d] is empty", i)
		}
	}
	if plan.Embedding.Dimensions < 0 {
		return Plan{}, fmt.Errorf("embedding.dimensions must be positive, got %d", plan.Embedding.Dimensions)
	}

	plan.Escalation = plan.Escalation.withDefaults()
	plan.Embedding = plan.Embedding.withDefaults()
	return plan, nil
}

func validateCases(section string, cases []Case) error {
	seen := map[string]struct{}{}
	for i, c := range cases {
		if strings.TrimSpace(c.Description) == "" {
			return fmt.Errorf("%s[%d].description is required", section, i)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%s[%d]: %w", section, i, err)
		}
		if _, ok := seen[c.Description]; ok {
			return fmt.Errorf("%s: duplicate description %q", section, c.Description)
		}
		seen[c.Description] = struct{}{}
	}
	return nil
}
