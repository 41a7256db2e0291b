package persistence

import "github.com/auroramart/personalization/internal/domain"

func toCategory(m *categoryModel) *domain.Category {
	if m == nil {
		return nil
	}
	return &domain.Category{ID: m.ID, Name: m.Name, Slug: m.Slug, ParentID: m.ParentID}
}

func toProduct(m *productModel) domain.Product {
	return domain.Product{
		ID:          m.ID,
		SKU:         m.SKU,
		Name:        m.Name,
		Description: m.Description,
		CategoryID:  m.CategoryID,
		Category:    toCategory(m.Category),
		Price:       m.Price,
		Rating:      m.Rating,
		Stock:       m.Stock,
		IsActive:    m.IsActive,
		Archived:    m.Archived,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func fromProduct(p *domain.Product) *productModel {
	return &productModel{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		Price:       p.Price,
		Rating:      p.Rating,
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		Archived:    p.Archived,
		CreatedAt:   p.CreatedAt,
	}
}

// productPtr maps an optional preloaded product
func productPtr(m *productModel) *domain.Product {
	if m == nil {
		return nil
	}
	p := toProduct(m)
	return &p
}

func toCustomer(m *customerModel) *domain.Customer {
	return &domain.Customer{
		ID:                  m.ID,
		Age:                 m.Age,
		HouseholdSize:       m.HouseholdSize,
		HasChildren:         m.HasChildren,
		MonthlyIncome:       m.MonthlyIncome,
		Gender:              m.Gender,
		EmploymentStatus:    m.EmploymentStatus,
		Occupation:          m.Occupation,
		Education:           m.Education,
		PreferredCategory:   m.PreferredCategory,
		PreferredCategoryID: m.PreferredCategoryID,
		UpdatedAt:           m.UpdatedAt,
	}
}

func fromCustomer(c *domain.Customer) *customerModel {
	return &customerModel{
		ID:                  c.ID,
		Age:                 c.Age,
		HouseholdSize:       c.HouseholdSize,
		HasChildren:         c.HasChildren,
		MonthlyIncome:       c.MonthlyIncome,
		Gender:              c.Gender,
		EmploymentStatus:    c.EmploymentStatus,
		Occupation:          c.Occupation,
		Education:           c.Education,
		PreferredCategory:   c.PreferredCategory,
		PreferredCategoryID: c.PreferredCategoryID,
	}
}

func toCart(m *cartModel) *domain.Cart {
	cart := &domain.Cart{ID: m.ID, CustomerID: m.CustomerID, Items: make([]domain.CartItem, 0, len(m.Items))}
	for i := range m.Items {
		item := &m.Items[i]
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: item.ProductID,
			Product:   productPtr(item.Product),
			Quantity:  item.Quantity,
		})
	}
	return cart
}

func toOrder(m *orderModel) *domain.Order {
	order := &domain.Order{
		ID:              m.ID,
		CustomerID:      m.CustomerID,
		Status:          m.Status,
		TotalPrice:      m.TotalPrice,
		ShippingAddress: m.ShippingAddress,
		Items:           make([]domain.OrderItem, 0, len(m.Items)),
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	for i := range m.Items {
		item := &m.Items[i]
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: item.ProductID,
			Product:   productPtr(item.Product),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return order
}

func toChatSession(m *chatSessionModel) *domain.ChatSession {
	return &domain.ChatSession{
		ID:         m.ID,
		CustomerID: m.CustomerID,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toChatMessage(m *chatMessageModel) domain.ChatMessage {
	return domain.ChatMessage{
		ID:         m.ID,
		SessionID:  m.SessionID,
		Sender:     m.Sender,
		Content:    m.Content,
		TokenUsage: m.TokenUsage,
		ModelUsed:  m.ModelUsed,
		Timestamp:  m.Timestamp,
	}
}
