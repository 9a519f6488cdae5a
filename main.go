package main

import (
	"os"

	"go-booking-api/core/logger"
	"go-booking-api/core/server"

	_ "go-booking-api/docs" // Swagger docs
)

// @title Booking API
// @version 1.0
// @description Scheduling backend: event types, slot availability, bookings with seats, recurrence and payments, calendar sync.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@go-booking-api.dev

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("Main:Run:Error", "error", err)
		os.Exit(1)
	}
}
