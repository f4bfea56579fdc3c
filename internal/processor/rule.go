package processor

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/pagesmith/internal/models"
)

// DetectorConfig replaces a processor's built-in detector. Every non-empty
// criterion must match.
type DetectorConfig struct {
	Filename       string `yaml:"filename"`
	SourcePath     string `yaml:"source_path"`
	ContentPattern string `yaml:"content_pattern"`
}

// RuleConfig overrides the priority and/or detector of a named processor.
type RuleConfig struct {
	Type     string          `yaml:"type"`
	Priority *int            `yaml:"priority"`
	Detector *DetectorConfig `yaml:"detector"`
}

// Validate validates the rule.
func (c *RuleConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Type, validation.Required, validation.In(NameCatalog, NameListing, NameArticle)),
	); err != nil {
		return err
	}
	if c.Detector != nil && c.Detector.ContentPattern != "" {
		if _, err := regexp.Compile(c.Detector.ContentPattern); err != nil {
			return fmt.Errorf("content_pattern: %w", err)
		}
	}
	return nil
}

type detector struct {
	filename   string
	sourcePath string
	pattern    *regexp.Regexp
}

func (d detector) match(doc models.Document) bool {
	if d.filename != "" && doc.Name != d.filename {
		return false
	}
	if d.sourcePath != "" && !strings.HasPrefix(doc.Path, d.sourcePath) {
		return false
	}
	if d.pattern != nil && !d.pattern.MatchString(doc.Body) {
		return false
	}
	return true
}

// ruled wraps a processor with configured priority and detector.
type ruled struct {
	Processor
	priority int
	detect   *detector
}

func (r *ruled) Priority() int { return r.priority }

func (r *ruled) Detect(doc models.Document) bool {
	if r.detect == nil {
		return r.Processor.Detect(doc)
	}
	return r.detect.match(doc)
}

// ApplyRule returns p with the rule's overrides applied.
func ApplyRule(p Processor, rule RuleConfig) (Processor, error) {
	w := &ruled{Processor: p, priority: p.Priority()}
	if rule.Priority != nil {
		w.priority = *rule.Priority
	}
	if d := rule.Detector; d != nil {
		w.detect = &detector{filename: d.Filename, sourcePath: d.SourcePath}
		if d.ContentPattern != "" {
			re, err := regexp.Compile(d.ContentPattern)
			if err != nil {
				return nil, fmt.Errorf("processor: rule %s: %w", rule.Type, err)
			}
			w.detect.pattern = re
		}
	}
	return w, nil
}

// Build creates a registry holding the three built-in processors with the
// given rules applied. Rules for the same type apply in order.
func Build(env Env, rules []RuleConfig) (*Registry, error) {
	builtins := map[string]Processor{
		NameCatalog: NewCatalog(env),
		NameListing: NewListing(env),
		NameArticle: NewArticle(env),
	}
	for _, rule := range rules {
		p, ok := builtins[rule.Type]
		if !ok {
			return nil, fmt.Errorf("processor: unknown type %q", rule.Type)
		}
		wrapped, err := ApplyRule(p, rule)
		if err != nil {
			return nil, err
		}
		builtins[rule.Type] = wrapped
	}

	reg, err := NewRegistry(builtins[NameArticle])
	if err != nil {
		return nil, err
	}
	reg.Register(builtins[NameCatalog])
	reg.Register(builtins[NameListing])
	return reg, nil
}
