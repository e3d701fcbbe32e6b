package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RuleType discriminates generic enrichment rules. The config blob's schema
// depends on this value.
type RuleType string

const (
	RuleTypeKeyword        RuleType = "KEYWORD"
	RuleTypeFormula        RuleType = "FORMULA"
	RuleTypeClassification RuleType = "CLASSIFICATION"
	RuleTypeMargin         RuleType = "MARGIN"
)

// KeywordRule maps a case-insensitive text trigger to a tag, a role and a
// signed score delta. Rules are authored through the external rule-management
// endpoints; this module only reads them.
type KeywordRule struct {
	ID           uuid.UUID
	Keyword      string
	AutoTag      string
	RoleType     string
	IntentImpact int
	IsActive     bool
	CreatedAt    time.Time
}

// Rule is a generic enrichment rule. Config is an opaque JSONB document whose
// schema depends on Type; use the typed decode helpers.
type Rule struct {
	ID        uuid.UUID
	Type      RuleType
	Name      string
	Config    json.RawMessage
	IsActive  bool
	CreatedAt time.Time
}

// FormulaConfig overrides the intent index factor weights. Unknown keys are
// ignored; missing keys keep their defaults.
type FormulaConfig struct {
	Weights map[string]float64 `json:"weights"`
}

// ClassificationConfig labels a lead either by a required tag or by a score
// threshold.
type ClassificationConfig struct {
	Threshold   *int   `json:"threshold,omitempty"`
	Label       string `json:"label"`
	TagRequired string `json:"tagRequired,omitempty"`
}

// MarginConfig overrides the negotiation-window heuristic thresholds.
type MarginConfig struct {
	MaxAgeDays  *int     `json:"maxAgeDays,omitempty"`
	MaxPriceGap *float64 `json:"maxPriceGap,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// FormulaConfig decodes the rule's config as a FORMULA document.
func (r Rule) FormulaConfig() (FormulaConfig, error) {
	var cfg FormulaConfig
	if err := json.Unmarshal(r.Config, &cfg); err != nil {
		return FormulaConfig{}, err
	}
	return cfg, nil
}

// ClassificationConfig decodes the rule's config as a CLASSIFICATION document.
func (r Rule) ClassificationConfig() (ClassificationConfig, error) {
	var cfg ClassificationConfig
	if err := json.Unmarshal(r.Config, &cfg); err != nil {
		return ClassificationConfig{}, err
	}
	if cfg.Label == "" && cfg.TagRequired == "" && cfg.Threshold == nil {
		return ClassificationConfig{}, errEmptyRuleConfig
	}
	return cfg, nil
}

// MarginConfig decodes the rule's config as a MARGIN document.
func (r Rule) MarginConfig() (MarginConfig, error) {
	var cfg MarginConfig
	if err := json.Unmarshal(r.Config, &cfg); err != nil {
		return MarginConfig{}, err
	}
	return cfg, nil
}

// ListActiveKeywordRules returns active keyword rules ordered by
// created_at ASC, id ASC. The order is the deterministic scan order; the
// first matching rule wins any role assignment.
func (r *Repository) ListActiveKeywordRules(ctx context.Context) ([]KeywordRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, keyword, auto_tag, role_type, intent_impact, is_active, created_at
		FROM keyword_rules
		WHERE is_active = true
		ORDER BY created_at ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]KeywordRule, 0)
	for rows.Next() {
		var rule KeywordRule
		if err := rows.Scan(&rule.ID, &rule.Keyword, &rule.AutoTag, &rule.RoleType, &rule.IntentImpact, &rule.IsActive, &rule.CreatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// ListActiveRules returns active generic rules of one type ordered by
// created_at ASC, id ASC.
func (r *Repository) ListActiveRules(ctx context.Context, ruleType RuleType) ([]Rule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, type, name, config, is_active, created_at
		FROM enrichment_rules
		WHERE is_active = true AND type = $1
		ORDER BY created_at ASC, id ASC
	`, string(ruleType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]Rule, 0)
	for rows.Next() {
		var rule Rule
		if err := rows.Scan(&rule.ID, &rule.Type, &rule.Name, &rule.Config, &rule.IsActive, &rule.CreatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}
