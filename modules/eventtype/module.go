package eventtype

import (
	"go-booking-api/core/database"
	"go-booking-api/modules/eventtype/repository"
	"go-booking-api/modules/eventtype/service"
)

// Init wires the event type lookups shared by availability and booking.
func Init(db database.IDatabase) service.EventTypeService {
	return service.NewEventTypeService(repository.NewEventTypeRepository(db))
}
