package rest

import (
	"context"
	"net/http"

	"github.com/rettel/hotel-admin/api"
)

//ListServices returns all Services
func (c *Client) ListServices(ctx context.Context) ([]*api.Service, error) {
	var services []*api.Service
	if err := c.do(ctx, http.MethodGet, "/services/", nil, &services); err != nil {
		return nil, err
	}
	return services, nil
}

//GetService returns the Service with the given id
func (c *Client) GetService(ctx context.Context, id string) (*api.Service, error) {
	service := &api.Service{}
	if err := c.do(ctx, http.MethodGet, "/services/"+id+"/", nil, service); err != nil {
		return nil, err
	}
	return service, nil
}

//CreateService creates a new Service
func (c *Client) CreateService(ctx context.Context, service *api.Service) (*api.Service, error) {
	if err := service.Validate(); err != nil {
		return nil, &api.Error{Description: "Could not validate Service", Type: api.ErrorTypeUser, Err: err}
	}

	created := &api.Service{}
	if err := c.do(ctx, http.MethodPost, "/services/", service, created); err != nil {
		return nil, err
	}
	return created, nil
}

//UpdateService updates the Service with the given id
func (c *Client) UpdateService(ctx context.Context, id string, service *api.Service) (*api.Service, error) {
	if err := service.Validate(); err != nil {
		return nil, &api.Error{Description: "Could not validate Service", Type: api.ErrorTypeUser, Err: err}
	}

	updated := &api.Service{}
	if err := c.do(ctx, http.MethodPut, "/services/"+id+"/", service, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

//DeleteService deletes the Service with the given id
func (c *Client) DeleteService(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/services/"+id+"/", nil, nil)
}

//BookService books the Service with the given id
func (c *Client) BookService(ctx context.Context, serviceID string, booking *api.BookingRequest) (*api.Booking, error) {
	created := &api.Booking{}
	if err := c.do(ctx, http.MethodPost, "/services/"+serviceID+"/book/", booking, created); err != nil {
		return nil, err
	}
	return created, nil
}

//ListBookings returns all Bookings
func (c *Client) ListBookings(ctx context.Context) ([]*api.Booking, error) {
	var bookings []*api.Booking
	if err := c.do(ctx, http.MethodGet, "/bookings/", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

//UpdateBookingStatus updates the status of the Booking with the given id
func (c *Client) UpdateBookingStatus(ctx context.Context, bookingID, status string) (*api.Booking, error) {
	if err := api.ValidateChoice("status", status, api.BookingStatuses); err != nil {
		return nil, &api.Error{Description: "Could not validate Booking status", Type: api.ErrorTypeUser, Err: err}
	}

	updated := &api.Booking{}
	payload := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPost, "/bookings/"+bookingID+"/status/", payload, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
