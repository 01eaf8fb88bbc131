package canvass

import (
	"log"

	"github.com/GroundGame/Canvass-Backend/internal/db"
)

func Init() {
	// Ensure the canvass schema exists first
	if err := db.EnsureSchema(db.DB, "canvass"); err != nil {
		log.Fatal("Failed to create canvass schema: ", err)
	}

	if err := db.DB.AutoMigrate(
		&Zone{},
		&AssignmentRecord{},
		&ScheduledAssignment{},
		&CanvassingStatusEntry{},
	); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	Core = NewEngine(NewGormStore(db.DB), LogDispatcher{})
}
