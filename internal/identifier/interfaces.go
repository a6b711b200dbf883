package identifier

import (
	"context"

	"github.com/Aryanshaw/bitespeed-client/pkg/bitespeed"
	"github.com/Aryanshaw/bitespeed-client/pkg/publishers"
)

// ContactIdentifier performs the remote identify call for one submission.
type ContactIdentifier interface {
	Identify(ctx context.Context, req bitespeed.IdentifyRequest) (*bitespeed.ContactResponse, error)
}

// OutcomePublisher dispatches identification events downstream. It reports
// the number of sinks that accepted the event.
type OutcomePublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}
