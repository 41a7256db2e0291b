// Package artifact loads the model artifacts produced by the offline training jobs.
package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/goccy/go-json"

	"github.com/auroramart/personalization/internal/domain"
)

// ruleTable is the on-disk layout of a mined rule set
type ruleTable struct {
	Rules []domain.AssociationRule `json:"rules"`
}

// LoadRules reads an association-rule table from path.
// A missing or unreadable file wraps domain.ErrModelUnavailable; a malformed one wraps domain.ErrInvalidArtifact.
func LoadRules(path string) ([]domain.AssociationRule, error) {
	data, err := readArtifact(path)
	if err != nil {
		return nil, err
	}

	var table ruleTable
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("%w: decode rules %s: %v", domain.ErrInvalidArtifact, path, err)
	}

	for i, rule := range table.Rules {
		if len(rule.Antecedents) == 0 || len(rule.Consequents) == 0 {
			return nil, fmt.Errorf("%w: rule %d in %s has an empty antecedent or consequent set",
				domain.ErrInvalidArtifact, i, path)
		}
	}

	return table.Rules, nil
}

func readArtifact(path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no artifact path configured", domain.ErrModelUnavailable)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s does not exist", domain.ErrModelUnavailable, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrModelUnavailable, path, err)
	}
	return data, nil
}
