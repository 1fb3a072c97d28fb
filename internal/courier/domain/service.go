package domain

import (
	"context"
	"errors"
)

type CreateCourierRequest struct {
	Name        string
	Email       string
	PhoneNumber string
}

type GetCourierRequest struct {
	ID string
}

type Service interface {
	Create(context.Context, CreateCourierRequest) (Courier, error)
	GetByID(context.Context, GetCourierRequest) (Courier, error)
}

var (
	ErrInvalidName  = errors.New("invalid_name")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidPhone = errors.New("invalid_phone_number")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("courier_not_found")
)
