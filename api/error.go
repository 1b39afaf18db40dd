package api

import "fmt"

//ErrorType are Error types
type ErrorType int

//ErrorTypes
const (
	ErrorTypeUser ErrorType = iota
	ErrorTypeServer
	ErrorTypeAuth
)

//Error wraps errors in the API
type Error struct {
	Description string
	Type        ErrorType
	Err         error
}

func (e *Error) Error() string {
	switch e.Type {
	case ErrorTypeUser:
		return fmt.Sprintf("User Error: %s: %v", e.Description, e.Err)
	case ErrorTypeAuth:
		return fmt.Sprintf("Auth Error: %s: %v", e.Description, e.Err)
	}
	return fmt.Sprintf("Server Error: %s: %v", e.Description, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
