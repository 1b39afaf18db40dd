package api

//ServiceCategories are allowed service categories
var ServiceCategories = []string{
	"cleaning", "food", "spa", "laundry", "room service", "massage", "gym",
	"airport transfer", "concierge", "tour guide", "valet parking",
	"laundry express", "mini bar",
}

//Service represents a bookable hotel service
type Service struct {
	ID          string  `json:"id,omitempty"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price,omitempty"`
}

//Validate validates the given Service
func (s *Service) Validate() error {
	if err := ValidateString("name", s.Name, 255); err != nil {
		return err
	}
	if err := ValidateChoice("category", s.Category, ServiceCategories); err != nil {
		return err
	}
	return ValidatePrice("price", s.Price)
}
