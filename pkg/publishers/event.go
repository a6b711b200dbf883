package publishers

import (
	"time"

	"github.com/Aryanshaw/bitespeed-client/internal/domain"
	"github.com/Aryanshaw/bitespeed-client/pkg/bitespeed"
)

// Event represents one identification outcome published downstream.
type Event struct {
	SourceID     string            `json:"source_id"`
	SourceName   string            `json:"source_name"`
	Submission   domain.Submission `json:"submission"`
	Contact      bitespeed.Contact `json:"contact"`
	IdentifiedAt time.Time         `json:"identified_at"`
}

// NewEvent constructs an Event for the given source + identified contact.
func NewEvent(sourceID, sourceName string, sub domain.Submission, contact bitespeed.Contact) Event {
	return Event{
		SourceID:     sourceID,
		SourceName:   sourceName,
		Submission:   sub,
		Contact:      contact,
		IdentifiedAt: time.Now().UTC(),
	}
}
