package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auroramart/personalization/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRules(t *testing.T) {
	t.Run("loads rule table", func(t *testing.T) {
		path := writeFile(t, "rules.json", `{"rules":[
			{"antecedents":["SKU-A"],"consequents":["SKU-B"],"confidence":0.6,"lift":2.1,"support":0.05},
			{"antecedents":["SKU-A","SKU-C"],"consequents":["SKU-D","SKU-E"],"confidence":0.4,"lift":3.0,"support":0.01}
		]}`)

		rules, err := LoadRules(path)
		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, []string{"SKU-A", "SKU-C"}, rules[1].Antecedents)
		assert.Equal(t, 3.0, rules[1].Lift)
		assert.True(t, rules[1].HasAntecedent("SKU-C"))
	})

	t.Run("missing file is model unavailable", func(t *testing.T) {
		_, err := LoadRules(filepath.Join(t.TempDir(), "nope.json"))
		assert.ErrorIs(t, err, domain.ErrModelUnavailable)
	})

	t.Run("empty path is model unavailable", func(t *testing.T) {
		_, err := LoadRules("")
		assert.ErrorIs(t, err, domain.ErrModelUnavailable)
	})

	t.Run("malformed json is invalid artifact", func(t *testing.T) {
		_, err := LoadRules(writeFile(t, "rules.json", `{"rules": [`))
		assert.ErrorIs(t, err, domain.ErrInvalidArtifact)
	})

	t.Run("rule without consequents is invalid", func(t *testing.T) {
		_, err := LoadRules(writeFile(t, "rules.json", `{"rules":[{"antecedents":["A"],"consequents":[]}]}`))
		assert.ErrorIs(t, err, domain.ErrInvalidArtifact)
	})
}

// ageTree splits on feature 0 (age) at 30 and then on feature 1 at 0.5
const ageTree = `{
	"schema_version": "test-v1",
	"feature_names": ["age", "gender_Female"],
	"classes": ["Books", "Electronics", "Fashion - Women"],
	"nodes": [
		{"feature": 0, "threshold": 30, "left": 1, "right": 2},
		{"left": -1, "right": -1, "value": [1, 9, 0]},
		{"feature": 1, "threshold": 0.5, "left": 3, "right": 4},
		{"left": -1, "right": -1, "value": [7, 2, 1]},
		{"left": -1, "right": -1, "value": [0, 1, 5]}
	]
}`

func TestLoadDecisionTree_Predict(t *testing.T) {
	tree, err := LoadDecisionTree(writeFile(t, "tree.json", ageTree))
	require.NoError(t, err)
	assert.Equal(t, "test-v1", tree.SchemaVersion)
	assert.Equal(t, 2, tree.NumFeatures())

	tests := []struct {
		name string
		row  []float64
		want string
	}{
		{"young goes left", []float64{25, 0}, "Electronics"},
		{"threshold is inclusive", []float64{30, 1}, "Electronics"},
		{"older male", []float64{45, 0}, "Books"},
		{"older female", []float64{45, 1}, "Fashion - Women"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tree.Predict(tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = tree.Predict([]float64{1})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestDecisionTree_Validate(t *testing.T) {
	tests := []struct {
		name string
		tree DecisionTree
	}{
		{"no nodes", DecisionTree{Classes: []string{"A"}}},
		{"no classes", DecisionTree{Nodes: []TreeNode{{Left: -1, Right: -1, Value: []float64{1}}}}},
		{"leaf value width", DecisionTree{
			Classes: []string{"A", "B"},
			Nodes:   []TreeNode{{Left: -1, Right: -1, Value: []float64{1}}},
		}},
		{"backward child", DecisionTree{
			Classes: []string{"A"},
			Nodes: []TreeNode{
				{Feature: 0, Left: 0, Right: 1},
				{Left: -1, Right: -1, Value: []float64{1}},
			},
		}},
		{"feature outside schema", DecisionTree{
			FeatureNames: []string{"age"},
			Classes:      []string{"A"},
			Nodes: []TreeNode{
				{Feature: 3, Left: 1, Right: 2},
				{Left: -1, Right: -1, Value: []float64{1}},
				{Left: -1, Right: -1, Value: []float64{1}},
			},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.tree.Validate(), domain.ErrInvalidArtifact)
		})
	}
}

func TestLoadDecisionTree_Missing(t *testing.T) {
	_, err := LoadDecisionTree(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}
