// Package validate checks the content tree against the editorial contract
// before a build runs. Rules are aggregating: every rule runs against every
// document and all findings are collected into a single report.
package validate

import (
	"fmt"
	"sort"
	"strings"
)

// Document is one content file under validation: a markdown article's parsed
// frontmatter or a decoded JSON record.
type Document struct {
	Path   string
	Fields map[string]any
}

// Issue is a single validation finding.
type Issue struct {
	Path    string
	Rule    string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// Rule inspects one document and reports zero or more findings.
type Rule interface {
	// Name returns a short identifier for this rule (for logging and reports).
	Name() string

	// Check returns one message per finding; an empty slice means the
	// document passes.
	Check(doc Document) []string
}

// RuleChain runs every rule over a document, collecting all findings rather
// than stopping at the first.
type RuleChain struct {
	rules []Rule
}

// NewRuleChain creates a chain with the given rules.
func NewRuleChain(rules ...Rule) *RuleChain {
	return &RuleChain{rules: rules}
}

// Check applies all rules to the document and returns the combined issues.
func (rc *RuleChain) Check(doc Document) []Issue {
	var issues []Issue
	for _, rule := range rc.rules {
		for _, msg := range rule.Check(doc) {
			issues = append(issues, Issue{Path: doc.Path, Rule: rule.Name(), Message: msg})
		}
	}
	return issues
}

// RequiredKeysRule flags documents missing any of a fixed key set.
type RequiredKeysRule struct {
	Keys []string
}

func (RequiredKeysRule) Name() string { return "required_keys" }

func (r RequiredKeysRule) Check(doc Document) []string {
	var missing []string
	for _, key := range r.Keys {
		if _, ok := doc.Fields[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return []string{"missing keys: " + strings.Join(missing, ", ")}
}

// TagsRule requires tags to be a list of strings.
type TagsRule struct{}

func (TagsRule) Name() string { return "tags" }

func (TagsRule) Check(doc Document) []string {
	raw, ok := doc.Fields["tags"]
	if !ok {
		return nil // RequiredKeysRule already reports the absence
	}
	list, ok := raw.([]any)
	if !ok {
		return []string{"tags must be an array"}
	}
	var msgs []string
	for i, tag := range list {
		if _, ok := tag.(string); !ok {
			msgs = append(msgs, fmt.Sprintf("tags[%d] must be a string", i))
		}
	}
	return msgs
}

// VersionRule requires version to be a positive integer.
type VersionRule struct{}

func (VersionRule) Name() string { return "version" }

func (VersionRule) Check(doc Document) []string {
	raw, ok := doc.Fields["version"]
	if !ok {
		return nil
	}
	v, ok := asInt(raw)
	if !ok || v < 1 {
		return []string{"version must be a positive integer"}
	}
	return nil
}

// RevisionHistoryRule requires revision-history entries to be objects
// carrying version and updated-date.
type RevisionHistoryRule struct{}

func (RevisionHistoryRule) Name() string { return "revision_history" }

func (RevisionHistoryRule) Check(doc Document) []string {
	raw, ok := doc.Fields["revision-history"]
	if !ok || raw == nil {
		return nil
	}
	list, ok := raw.([]any)
	if !ok {
		return []string{"revision-history must be an array"}
	}
	var msgs []string
	for i, entry := range list {
		fields, ok := entry.(map[string]any)
		if !ok {
			msgs = append(msgs, fmt.Sprintf("revision-history[%d] must be an object", i))
			continue
		}
		if _, ok := fields["version"]; !ok {
			msgs = append(msgs, fmt.Sprintf("revision-history[%d] missing version", i))
		}
		if _, ok := fields["updated-date"]; !ok {
			msgs = append(msgs, fmt.Sprintf("revision-history[%d] missing updated-date", i))
		}
	}
	return msgs
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}
