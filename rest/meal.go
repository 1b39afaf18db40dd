package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rettel/hotel-admin/api"
)

//MealsPage is one page of a paginated Meal listing
type MealsPage struct {
	Results  []*api.Meal `json:"results"`
	Next     string      `json:"next"`
	Previous string      `json:"previous"`
	Count    int         `json:"count"`
}

func mealFields(meal *api.Meal) map[string]string {
	fields := map[string]string{
		"name":         meal.Name,
		"category":     meal.Category,
		"currency":     meal.Currency,
		"price":        strconv.FormatFloat(meal.Price, 'f', -1, 64),
		"meal_type":    meal.MealType,
		"diet_type":    meal.DietType,
		"cuisine_type": meal.CuisineType,
		"spice_level":  meal.SpiceLevel,
		"is_special":   strconv.FormatBool(meal.IsSpecial),
	}
	if meal.Description != "" {
		fields["description"] = meal.Description
	}
	return fields
}

func mealFiles(imagePath string) map[string][]string {
	if imagePath == "" {
		return nil
	}
	return map[string][]string{"image": {imagePath}}
}

//ListMeals returns one page of Meals
func (c *Client) ListMeals(ctx context.Context, page int) (*MealsPage, error) {
	path := "/meals/"
	if page > 1 {
		path += "?page=" + strconv.Itoa(page)
	}

	result := &MealsPage{}
	if err := c.do(ctx, http.MethodGet, path, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

//GetMeal returns the Meal with the given id
func (c *Client) GetMeal(ctx context.Context, id string) (*api.Meal, error) {
	meal := &api.Meal{}
	if err := c.do(ctx, http.MethodGet, "/meals/"+id+"/", nil, meal); err != nil {
		return nil, err
	}
	return meal, nil
}

//CreateMeal creates a Meal, uploading the given image file alongside the fields
func (c *Client) CreateMeal(ctx context.Context, meal *api.Meal, imagePath string) (*api.Meal, error) {
	if err := meal.Validate(); err != nil {
		return nil, &api.Error{Description: "Could not validate Meal", Type: api.ErrorTypeUser, Err: err}
	}

	created := &api.Meal{}
	if err := c.doForm(ctx, http.MethodPost, "/meals/create/", mealFields(meal), mealFiles(imagePath), created); err != nil {
		return nil, err
	}
	return created, nil
}

//UpdateMeal updates the Meal with the given id
func (c *Client) UpdateMeal(ctx context.Context, id string, meal *api.Meal, imagePath string) (*api.Meal, error) {
	if err := meal.Validate(); err != nil {
		return nil, &api.Error{Description: "Could not validate Meal", Type: api.ErrorTypeUser, Err: err}
	}

	updated := &api.Meal{}
	if err := c.doForm(ctx, http.MethodPut, "/meals/update/"+id+"/", mealFields(meal), mealFiles(imagePath), updated); err != nil {
		return nil, err
	}
	return updated, nil
}

//DeleteMeal deletes the Meal with the given id
func (c *Client) DeleteMeal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/meals/delete/"+id+"/", nil, nil)
}
