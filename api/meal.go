package api

//Currencies are allowed meal price currencies
var Currencies = []string{"USD", "EUR", "INR", "GBP", "JPY"}

//Meal represents a menu item
type Meal struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Currency    string  `json:"currency"`
	Price       float64 `json:"price"`
	MealType    string  `json:"meal_type"`
	DietType    string  `json:"diet_type"`
	CuisineType string  `json:"cuisine_type"`
	SpiceLevel  string  `json:"spice_level"`
	Status      bool    `json:"status,omitempty"`
	Image       string  `json:"image,omitempty"`
	IsSpecial   bool    `json:"is_special,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

//Validate validates the given Meal
func (m *Meal) Validate() error {
	if err := ValidateString("name", m.Name, 255); err != nil {
		return err
	}
	if err := ValidateString("category", m.Category, 255); err != nil {
		return err
	}
	if err := ValidateChoice("currency", m.Currency, Currencies); err != nil {
		return err
	}
	return ValidatePrice("price", m.Price)
}
