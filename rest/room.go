package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rettel/hotel-admin/api"
)

//roomFields flattens a Room into multipart form fields
func roomFields(room *api.Room) map[string]string {
	return map[string]string{
		"number": strconv.Itoa(room.Number),
		"type":   room.Type,
		"status": room.Status,
		"price":  strconv.FormatFloat(room.Price, 'f', -1, 64),
	}
}

//roomFiles collects the image upload paths for a Room form
func roomFiles(coverImagePath string, otherImagePaths []string) map[string][]string {
	files := map[string][]string{}
	if coverImagePath != "" {
		files["cover_image"] = []string{coverImagePath}
	}
	if len(otherImagePaths) > 0 {
		files["other_images"] = otherImagePaths
	}
	return files
}

//ListRooms returns all Rooms
func (c *Client) ListRooms(ctx context.Context) ([]*api.Room, error) {
	var rooms []*api.Room
	if err := c.do(ctx, http.MethodGet, "/rooms/", nil, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

//GetRoom returns the Room with the given id
func (c *Client) GetRoom(ctx context.Context, id string) (*api.Room, error) {
	room := &api.Room{}
	if err := c.do(ctx, http.MethodGet, "/rooms/"+id, nil, room); err != nil {
		return nil, err
	}
	return room, nil
}

//CreateRoom creates a Room, uploading the given image files alongside the fields
func (c *Client) CreateRoom(ctx context.Context, room *api.Room, coverImagePath string, otherImagePaths []string) (*api.Room, error) {
	if err := room.Validate(); err != nil {
		return nil, &api.Error{Description: "Could not validate Room", Type: api.ErrorTypeUser, Err: err}
	}

	created := &api.Room{}
	err := c.doForm(ctx, http.MethodPost, "/rooms/create/", roomFields(room), roomFiles(coverImagePath, otherImagePaths), created)
	if err != nil {
		return nil, err
	}
	return created, nil
}

//UpdateRoom updates the Room with the given id
func (c *Client) UpdateRoom(ctx context.Context, id string, room *api.Room, coverImagePath string, otherImagePaths []string) (*api.Room, error) {
	if err := room.Validate(); err != nil {
		return nil, &api.Error{Description: "Could not validate Room", Type: api.ErrorTypeUser, Err: err}
	}

	updated := &api.Room{}
	err := c.doForm(ctx, http.MethodPut, "/rooms/update/"+id+"/", roomFields(room), roomFiles(coverImagePath, otherImagePaths), updated)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

//DeleteRoom deletes the Room with the given id
func (c *Client) DeleteRoom(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rooms/delete/"+id+"/", nil, nil)
}
