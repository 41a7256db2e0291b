package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/auroramart/personalization/internal/domain"
	"github.com/auroramart/personalization/internal/infrastructure/artifact"
	"github.com/auroramart/personalization/internal/observability"
)

// DefaultFeatureSchema is the column layout the customer classifier was trained on.
// Categorical attributes are one-hot encoded as "<attribute>_<value>".
var DefaultFeatureSchema = []string{
	"age", "household_size", "has_children", "monthly_income_sgd",
	"gender_Female", "gender_Male",
	"employment_status_Full-time", "employment_status_Part-time", "employment_status_Retired",
	"employment_status_Self-employed", "employment_status_Student",
	"occupation_Admin", "occupation_Education", "occupation_Sales",
	"occupation_Service", "occupation_Skilled Trades", "occupation_Tech",
	"education_Bachelor", "education_Diploma", "education_Doctorate",
	"education_Master", "education_Secondary",
}

// EncodeFeatures lays features out along schema. Columns the customer does not match stay zero,
// including one-hot columns of categorical values the schema does not know.
func EncodeFeatures(f domain.CustomerFeatures, schema []string) []float64 {
	values := map[string]float64{
		"age":                float64(f.Age),
		"household_size":     float64(f.HouseholdSize),
		"has_children":       boolToFloat(f.HasChildren),
		"monthly_income_sgd": f.MonthlyIncome,
	}
	for attr, value := range map[string]string{
		"gender":            f.Gender,
		"employment_status": f.EmploymentStatus,
		"occupation":        f.Occupation,
		"education":         f.Education,
	} {
		if value != "" {
			values[attr+"_"+value] = 1
		}
	}

	row := make([]float64, len(schema))
	for i, column := range schema {
		row[i] = values[column]
	}
	return row
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// categoryModel is a loaded classifier with the column schema its rows are encoded against
type categoryModel struct {
	tree   *artifact.DecisionTree
	schema []string
}

// CategoryPredictorConfig holds configuration for the category predictor
type CategoryPredictorConfig struct {
	ClassifierPath string
}

// CategoryAssignment is a predicted preferred category and the live category it resolved to, if any
type CategoryAssignment struct {
	CustomerID uint             `json:"customerId"`
	Label      string           `json:"label"`
	Category   *domain.Category `json:"category,omitempty"`
}

// CategoryPredictor predicts a customer's preferred product category from demographics.
// The classifier is loaded once; Load lets the process fail at startup when it is missing.
type CategoryPredictor struct {
	path       string
	categories domain.CategoryRepository
	customers  domain.CustomerRepository
	log        zerolog.Logger
	metrics    *observability.Metrics

	mu    sync.Mutex
	model atomic.Pointer[categoryModel]
}

// NewCategoryPredictor creates a predictor. The classifier is not read until Load or the first prediction.
func NewCategoryPredictor(
	categories domain.CategoryRepository,
	customers domain.CustomerRepository,
	config CategoryPredictorConfig,
	log zerolog.Logger,
	metrics *observability.Metrics,
) *CategoryPredictor {
	return &CategoryPredictor{
		path:       config.ClassifierPath,
		categories: categories,
		customers:  customers,
		log:        observability.Component(log, "category_predictor"),
		metrics:    metrics,
	}
}

// Load reads the classifier if it is not loaded yet. Concurrent callers share a single read.
func (p *CategoryPredictor) Load() error {
	_, err := p.loaded()
	return err
}

func (p *CategoryPredictor) loaded() (*categoryModel, error) {
	if m := p.model.Load(); m != nil {
		return m, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if m := p.model.Load(); m != nil {
		return m, nil
	}

	tree, err := artifact.LoadDecisionTree(p.path)
	if err != nil {
		return nil, fmt.Errorf("load category classifier: %w", err)
	}
	schema := tree.FeatureNames
	if len(schema) == 0 {
		schema = DefaultFeatureSchema
	}
	if tree.NumFeatures() > len(schema) {
		return nil, fmt.Errorf("%w: classifier needs %d features, schema has %d",
			domain.ErrInvalidArtifact, tree.NumFeatures(), len(schema))
	}

	m := &categoryModel{tree: tree, schema: schema}
	p.model.Store(m)
	p.log.Info().
		Str("path", p.path).
		Str("schema_version", tree.SchemaVersion).
		Int("classes", len(tree.Classes)).
		Msg("category classifier loaded")
	return m, nil
}

// Predict returns the category label for one feature vector
func (p *CategoryPredictor) Predict(features domain.CustomerFeatures) (string, error) {
	m, err := p.loaded()
	if err != nil {
		return "", err
	}
	label, err := m.tree.Predict(EncodeFeatures(features, m.schema))
	if err != nil {
		return "", fmt.Errorf("predict category: %w", err)
	}
	p.metrics.CategoryPredicted(label)
	return label, nil
}

// PreferredCategory predicts the customer's category and resolves it to a live category by exact name.
// An orphaned label is returned with a nil category.
func (p *CategoryPredictor) PreferredCategory(ctx context.Context, customer *domain.Customer) (string, *domain.Category, error) {
	label, err := p.Predict(domain.FeaturesOf(customer))
	if err != nil {
		return "", nil, err
	}

	category, err := p.categories.GetByName(ctx, label)
	if errors.Is(err, domain.ErrNotFound) {
		p.log.Debug().Str("label", label).Msg("predicted category has no live category")
		return label, nil, nil
	}
	if err != nil {
		return "", nil, fmt.Errorf("resolve category %q: %w", label, err)
	}
	return label, category, nil
}

// PredictForCustomer predicts a stored customer's preferred category without writing it back
func (p *CategoryPredictor) PredictForCustomer(ctx context.Context, customerID uint) (*CategoryAssignment, error) {
	customer, err := p.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	label, category, err := p.PreferredCategory(ctx, customer)
	if err != nil {
		return nil, err
	}
	return &CategoryAssignment{CustomerID: customerID, Label: label, Category: category}, nil
}

// AssignPreferredCategory predicts a customer's preferred category and stores it on the customer record
func (p *CategoryPredictor) AssignPreferredCategory(ctx context.Context, customerID uint) (*CategoryAssignment, error) {
	assignment, err := p.PredictForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	var categoryID *uint
	if assignment.Category != nil {
		id := assignment.Category.ID
		categoryID = &id
	}
	if err := p.customers.UpdatePreferredCategory(ctx, customerID, assignment.Label, categoryID); err != nil {
		return nil, err
	}

	p.log.Info().Uint("customer_id", customerID).Str("label", assignment.Label).Msg("preferred category assigned")
	return assignment, nil
}
