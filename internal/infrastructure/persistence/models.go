package persistence

import "time"

const productsTable = "products"

type categoryModel struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null;index"`
	Slug        string `gorm:"size:120;uniqueIndex"`
	Description string
	ParentID    *uint
}

func (categoryModel) TableName() string { return "categories" }

type productModel struct {
	ID          uint   `gorm:"primaryKey"`
	SKU         string `gorm:"column:sku;size:30;uniqueIndex;not null"`
	Name        string `gorm:"size:150;not null;index"`
	Description string
	CategoryID  uint           `gorm:"not null;index"`
	Category    *categoryModel `gorm:"foreignKey:CategoryID"`
	Price       float64
	Rating      float64 `gorm:"index"`
	Stock       int
	IsActive    bool
	Archived    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (productModel) TableName() string { return productsTable }

type customerModel struct {
	ID                  uint `gorm:"primaryKey"`
	Age                 int
	HouseholdSize       int
	HasChildren         bool
	MonthlyIncome       float64 `gorm:"column:monthly_income_sgd"`
	Gender              string  `gorm:"size:10"`
	EmploymentStatus    string  `gorm:"size:30"`
	Occupation          string  `gorm:"size:100"`
	Education           string  `gorm:"size:30"`
	PreferredCategory   string  `gorm:"size:50"`
	PreferredCategoryID *uint
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (customerModel) TableName() string { return "customers" }

type cartModel struct {
	ID         uint            `gorm:"primaryKey"`
	CustomerID uint            `gorm:"uniqueIndex"`
	Items      []cartItemModel `gorm:"foreignKey:CartID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (cartModel) TableName() string { return "carts" }

type cartItemModel struct {
	ID        uint `gorm:"primaryKey"`
	CartID    uint `gorm:"index"`
	ProductID uint
	Product   *productModel `gorm:"foreignKey:ProductID"`
	Quantity  int
	AddedAt   time.Time `gorm:"autoCreateTime"`
}

func (cartItemModel) TableName() string { return "cart_items" }

type orderModel struct {
	ID              uint   `gorm:"primaryKey"`
	CustomerID      uint   `gorm:"index;not null"`
	Status          string `gorm:"size:20;default:pending"`
	TotalPrice      float64
	ShippingAddress string           `gorm:"size:255"`
	Items           []orderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (orderModel) TableName() string { return "orders" }

type orderItemModel struct {
	ID        uint `gorm:"primaryKey"`
	OrderID   uint `gorm:"index"`
	ProductID uint
	Product   *productModel `gorm:"foreignKey:ProductID"`
	Quantity  int
	UnitPrice float64
}

func (orderItemModel) TableName() string { return "order_items" }

type chatSessionModel struct {
	ID         uint `gorm:"primaryKey"`
	CustomerID uint `gorm:"index;not null"`
	IsActive   bool `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (chatSessionModel) TableName() string { return "ai_chat_sessions" }

type chatMessageModel struct {
	ID         uint   `gorm:"primaryKey"`
	SessionID  uint   `gorm:"index;not null"`
	Sender     string `gorm:"size:10"`
	Content    string
	TokenUsage int
	ModelUsed  string    `gorm:"size:50"`
	Timestamp  time.Time `gorm:"autoCreateTime;index"`
}

func (chatMessageModel) TableName() string { return "ai_chat_messages" }

// allModels lists every table owned by this package, in migration order
func allModels() []interface{} {
	return []interface{}{
		&categoryModel{},
		&productModel{},
		&customerModel{},
		&cartModel{},
		&cartItemModel{},
		&orderModel{},
		&orderItemModel{},
		&chatSessionModel{},
		&chatMessageModel{},
	}
}
