package service

import "errors"

var (
	ErrEmailExists     = errors.New("email address is already subscribed")
	ErrSubscriberLimit = errors.New("subscriber limit reached for the current plan")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrNotFound        = errors.New("record not found")
	ErrInvalidKey      = errors.New("invalid confirmation key")
	ErrTagExists       = errors.New("a tag with this name already exists")
)
