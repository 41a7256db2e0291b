package domain

import "time"

// Customer holds the demographic record used for category prediction
type Customer struct {
	ID                  uint      `json:"id"`
	Age                 int       `json:"age"`
	HouseholdSize       int       `json:"householdSize"`
	HasChildren         bool      `json:"hasChildren"`
	MonthlyIncome       float64   `json:"monthlyIncome"`
	Gender              string    `json:"gender"`
	EmploymentStatus    string    `json:"employmentStatus"`
	Occupation          string    `json:"occupation"`
	Education           string    `json:"education"`
	PreferredCategory   string    `json:"preferredCategory,omitempty"`
	PreferredCategoryID *uint     `json:"preferredCategoryId,omitempty"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Cart is a customer's shopping cart. A customer may not have one.
type Cart struct {
	ID         uint       `json:"id"`
	CustomerID uint       `json:"customerId"`
	Items      []CartItem `json:"items"`
}

// CartItem is a single line in a cart
type CartItem struct {
	ProductID uint     `json:"productId"`
	Product   *Product `json:"product,omitempty"`
	Quantity  int      `json:"quantity"`
}

// SKUs returns the SKUs of all cart lines whose product was loaded, in cart order
func (c *Cart) SKUs() []string {
	if c == nil {
		return nil
	}
	skus := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		if item.Product != nil {
			skus = append(skus, item.Product.SKU)
		}
	}
	return skus
}

// CustomerFeatures is the per-prediction feature vector built from a Customer
type CustomerFeatures struct {
	Age              int
	HouseholdSize    int
	HasChildren      bool
	MonthlyIncome    float64
	Gender           string
	EmploymentStatus string
	Occupation       string
	Education        string
}

// FeaturesOf extracts the prediction features from a customer record
func FeaturesOf(c *Customer) CustomerFeatures {
	return CustomerFeatures{
		Age:              c.Age,
		HouseholdSize:    c.HouseholdSize,
		HasChildren:      c.HasChildren,
		MonthlyIncome:    c.MonthlyIncome,
		Gender:           c.Gender,
		EmploymentStatus: c.EmploymentStatus,
		Occupation:       c.Occupation,
		Education:        c.Education,
	}
}
