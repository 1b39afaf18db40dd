package api

import "fmt"

//RoomTypes are allowed room types
var RoomTypes = []string{"single", "double", "suite", "deluxe", "family", "presidential", "studio", "executive"}

//RoomStatuses are allowed room statuses
var RoomStatuses = []string{"available", "booked", "maintenance", "under renovation"}

//Room represents a hotel room
type Room struct {
	ID          string   `json:"id,omitempty"`
	Number      int      `json:"number"`
	Type        string   `json:"type"`
	Status      string   `json:"status"`
	Price       float64  `json:"price"`
	CoverImage  string   `json:"cover_image,omitempty"`
	OtherImages []string `json:"other_images,omitempty"`
}

//Validate validates the given Room
func (r *Room) Validate() error {
	if r.Number <= 0 {
		return fmt.Errorf("number (%d) must be positive", r.Number)
	}
	if err := ValidateChoice("type", r.Type, RoomTypes); err != nil {
		return err
	}
	if err := ValidateChoice("status", r.Status, RoomStatuses); err != nil {
		return err
	}
	return ValidatePrice("price", r.Price)
}
