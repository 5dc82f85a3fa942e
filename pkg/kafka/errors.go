package kafka

import "errors"

var (
	ErrProducerClosed = errors.New("producer is closed")

	ErrEmptyKey = errors.New("message key cannot be empty")

	ErrEmptyValue = errors.New("message value cannot be empty")

	ErrInvalidMessage = errors.New("no valid messages to publish")
)
