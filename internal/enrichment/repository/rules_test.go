package repository

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormulaConfigDecode(t *testing.T) {
	rule := Rule{
		Type:   RuleTypeFormula,
		Config: json.RawMessage(`{"weights": {"responseSpeed": 40, "budgetClarity": 5}}`),
	}

	cfg, err := rule.FormulaConfig()
	require.NoError(t, err)
	assert.Equal(t, 40.0, cfg.Weights["responseSpeed"])
	assert.Equal(t, 5.0, cfg.Weights["budgetClarity"])
}

func TestFormulaConfigRejectsMalformedWeights(t *testing.T) {
	rule := Rule{
		Type:   RuleTypeFormula,
		Config: json.RawMessage(`{"weights": "heavy"}`),
	}

	_, err := rule.FormulaConfig()
	assert.Error(t, err)
}

func TestClassificationConfigDecode(t *testing.T) {
	rule := Rule{
		Type:   RuleTypeClassification,
		Config: json.RawMessage(`{"threshold": 85, "label": "Hot"}`),
	}

	cfg, err := rule.ClassificationConfig()
	require.NoError(t, err)
	assert.Equal(t, "Hot", cfg.Label)
	require.NotNil(t, cfg.Threshold)
	assert.Equal(t, 85, *cfg.Threshold)
	assert.Empty(t, cfg.TagRequired)
}

func TestClassificationConfigRejectsEmptyDocument(t *testing.T) {
	rule := Rule{
		Type:   RuleTypeClassification,
		Config: json.RawMessage(`{}`),
	}

	_, err := rule.ClassificationConfig()
	assert.Error(t, err)
}

func TestMarginConfigPartialOverride(t *testing.T) {
	rule := Rule{
		Type:   RuleTypeMargin,
		Config: json.RawMessage(`{"maxPriceGap": 0.2}`),
	}

	cfg, err := rule.MarginConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg.MaxAgeDays)
	require.NotNil(t, cfg.MaxPriceGap)
	assert.Equal(t, 0.2, *cfg.MaxPriceGap)
	assert.Empty(t, cfg.Keywords)
}
