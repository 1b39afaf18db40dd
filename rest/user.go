package rest

import (
	"context"
	"net/http"

	"github.com/rettel/hotel-admin/api"
)

//Login authenticates with the given credentials. On success the returned
//access token is installed on the client for subsequent requests.
func (c *Client) Login(ctx context.Context, email, password string) (*api.LoginResponse, error) {
	payload := map[string]string{"email": email, "password": password}

	login := &api.LoginResponse{}
	if err := c.do(ctx, http.MethodPost, "/accounts/login/", payload, login); err != nil {
		return nil, err
	}

	c.SetToken(login.AccessToken)
	return login, nil
}

//Dashboard returns admin dashboard statistics
func (c *Client) Dashboard(ctx context.Context) (*api.DashboardData, error) {
	data := &api.DashboardData{}
	if err := c.do(ctx, http.MethodGet, "/accounts/dashboard/", nil, data); err != nil {
		return nil, err
	}
	return data, nil
}

//ListUsers returns all Users
func (c *Client) ListUsers(ctx context.Context) ([]*api.User, error) {
	var users []*api.User
	if err := c.do(ctx, http.MethodGet, "/accounts/", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

//GetUser returns the User with the given id
func (c *Client) GetUser(ctx context.Context, id string) (*api.User, error) {
	user := &api.User{}
	if err := c.do(ctx, http.MethodGet, "/accounts/detail/"+id, nil, user); err != nil {
		return nil, err
	}
	return user, nil
}

//CreateUser creates a new User
func (c *Client) CreateUser(ctx context.Context, user *api.User) (*api.User, error) {
	if err := user.Validate(); err != nil {
		return nil, &api.Error{Description: "Could not validate User", Type: api.ErrorTypeUser, Err: err}
	}

	created := &api.User{}
	if err := c.do(ctx, http.MethodPost, "/accounts/create/", user, created); err != nil {
		return nil, err
	}
	return created, nil
}

//UpdateUser updates the User with the given id
func (c *Client) UpdateUser(ctx context.Context, id string, user *api.User) (*api.User, error) {
	if err := user.Validate(); err != nil {
		return nil, &api.Error{Description: "Could not validate User", Type: api.ErrorTypeUser, Err: err}
	}

	updated := &api.User{}
	if err := c.do(ctx, http.MethodPut, "/accounts/update/"+id, user, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

//DeleteUser deletes the User with the given id
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/accounts/delete/"+id, nil, nil)
}
