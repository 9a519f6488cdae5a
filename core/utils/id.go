package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// GenerateID returns a short alphanumeric id, used for request ids.
func GenerateID() string {
	return generate(7)
}

// GenerateGroupID returns the id shared by all occurrences of a recurring booking.
func GenerateGroupID() string {
	return generate(21)
}

// GeneratePaymentUID returns the public reference of a payment.
func GeneratePaymentUID() string {
	return "pay_" + generate(24)
}

func generate(length int) string {
	id, err := gonanoid.Generate(idAlphabet, length)
	if err != nil {
		return ""
	}
	return id
}
