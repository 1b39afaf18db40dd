package api

import "fmt"

//ValidateString returns an error if the given value is not within the parameters
func ValidateString(field, value string, max int) error {
	if value == "" {
		return fmt.Errorf("%s must not be empty", field)
	} else if len(value) > max {
		return fmt.Errorf("%s length (%d) was more than maximum allowed (%d)", field, len(value), max)
	}
	return nil
}

//ValidateChoice returns an error if the given value is not one of the allowed choices
func ValidateChoice(field, value string, choices []string) error {
	for _, c := range choices {
		if value == c {
			return nil
		}
	}
	return fmt.Errorf("%s (%s) must be one of %v", field, value, choices)
}

//ValidatePrice returns an error if the given price is negative
func ValidatePrice(field string, price float64) error {
	if price < 0 {
		return fmt.Errorf("%s (%g) must not be negative", field, price)
	}
	return nil
}
