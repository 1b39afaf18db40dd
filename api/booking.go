package api

//BookingStatuses are allowed booking statuses
var BookingStatuses = []string{"pending", "confirmed", "in_progress", "completed", "cancelled"}

//Booking represents a service booking
type Booking struct {
	ID        string `json:"id,omitempty"`
	ServiceID string `json:"service_id,omitempty"`
	Service   string `json:"service,omitempty"`
	User      string `json:"user,omitempty"`
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Status    string `json:"status,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

//BookingRequest is the payload for booking a service
type BookingRequest struct {
	Date  string `json:"date,omitempty"`
	Time  string `json:"time,omitempty"`
	Notes string `json:"notes,omitempty"`
}
