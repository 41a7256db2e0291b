package usecase

import "strings"

// Intent is the primary retrieval intent of an assistant query
type Intent string

const (
	IntentPrice       Intent = "price"
	IntentStock       Intent = "stock"
	IntentDelivery    Intent = "delivery"
	IntentOrderStatus Intent = "order_status"
	IntentGeneral     Intent = "general"
)

// intentKeywords is scanned in declaration order; the first keyword hit wins
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentPrice, []string{"how much", "cost", "price", "cheap", "expensive", "discount", "sale"}},
	{IntentStock, []string{"in stock", "available", "out of stock", "inventory", "have it"}},
	{IntentDelivery, []string{"where is", "track", "delivered", "eta", "when will", "shipping", "tracking number"}},
	{IntentOrderStatus, []string{"order #", "order number", "my order", "history", "recent purchase"}},
}

// ClassifyIntent maps free text to its primary intent by case-insensitive keyword containment.
// Text matching no keyword is IntentGeneral.
func ClassifyIntent(text string) Intent {
	normalized := strings.ToLower(text)
	for _, group := range intentKeywords {
		for _, keyword := range group.keywords {
			if strings.Contains(normalized, keyword) {
				return group.intent
			}
		}
	}
	return IntentGeneral
}

// OrderRelated reports whether answering the intent needs order facts rather than product facts
func (i Intent) OrderRelated() bool {
	return i == IntentOrderStatus || i == IntentDelivery
}
