package artifact

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/auroramart/personalization/internal/domain"
)

const leaf = -1

// TreeNode is one node of a fitted decision tree. Leaves have Left == Right == -1.
type TreeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value"` // per-class sample counts
}

// DecisionTree is a fitted classification tree exported by the training job
type DecisionTree struct {
	SchemaVersion string     `json:"schema_version"`
	FeatureNames  []string   `json:"feature_names"`
	Classes       []string   `json:"classes"`
	Nodes         []TreeNode `json:"nodes"`
}

// LoadDecisionTree reads and validates a decision-tree classifier from path
func LoadDecisionTree(path string) (*DecisionTree, error) {
	data, err := readArtifact(path)
	if err != nil {
		return nil, err
	}

	var tree DecisionTree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: decode classifier %s: %v", domain.ErrInvalidArtifact, path, err)
	}
	if err := tree.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &tree, nil
}

// Validate checks the structural invariants Predict relies on
func (t *DecisionTree) Validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("%w: tree has no nodes", domain.ErrInvalidArtifact)
	}
	if len(t.Classes) == 0 {
		return fmt.Errorf("%w: tree has no classes", domain.ErrInvalidArtifact)
	}
	for i, n := range t.Nodes {
		if n.Left == leaf && n.Right == leaf {
			if len(n.Value) != len(t.Classes) {
				return fmt.Errorf("%w: leaf %d has %d values for %d classes",
					domain.ErrInvalidArtifact, i, len(n.Value), len(t.Classes))
			}
			continue
		}
		// children must point forward so the walk always terminates
		if n.Left <= i || n.Right <= i || n.Left >= len(t.Nodes) || n.Right >= len(t.Nodes) {
			return fmt.Errorf("%w: node %d has invalid children %d/%d", domain.ErrInvalidArtifact, i, n.Left, n.Right)
		}
		if n.Feature < 0 {
			return fmt.Errorf("%w: node %d splits on negative feature", domain.ErrInvalidArtifact, i)
		}
		if len(t.FeatureNames) > 0 && n.Feature >= len(t.FeatureNames) {
			return fmt.Errorf("%w: node %d splits on feature %d of %d",
				domain.ErrInvalidArtifact, i, n.Feature, len(t.FeatureNames))
		}
	}
	return nil
}

// NumFeatures returns the smallest row width the tree can evaluate
func (t *DecisionTree) NumFeatures() int {
	if len(t.FeatureNames) > 0 {
		return len(t.FeatureNames)
	}
	highest := -1
	for _, n := range t.Nodes {
		if n.Left != leaf && n.Feature > highest {
			highest = n.Feature
		}
	}
	return highest + 1
}

// Predict walks the tree for one encoded row and returns the majority class of the reached leaf
func (t *DecisionTree) Predict(row []float64) (string, error) {
	if len(row) < t.NumFeatures() {
		return "", fmt.Errorf("%w: row has %d features, tree needs %d",
			domain.ErrInvalidRequest, len(row), t.NumFeatures())
	}

	i := 0
	for {
		n := t.Nodes[i]
		if n.Left == leaf && n.Right == leaf {
			return t.Classes[argmax(n.Value)], nil
		}
		if row[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// argmax returns the first index of the largest value
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
