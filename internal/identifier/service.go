package identifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aryanshaw/bitespeed-client/internal/domain"
	"github.com/Aryanshaw/bitespeed-client/internal/logger"
	"github.com/Aryanshaw/bitespeed-client/internal/storage"
	"github.com/Aryanshaw/bitespeed-client/pkg/bitespeed"
	"github.com/Aryanshaw/bitespeed-client/pkg/publishers"
	"github.com/Aryanshaw/bitespeed-client/pkg/sources"
)

// Service coordinates one identification pass across the configured sources:
// read submissions, validate at the boundary, identify, publish, journal.
type Service struct {
	registry sources.ReaderRegistry
	client   ContactIdentifier
	fanout   OutcomePublisher
	store    storage.Store
	log      logger.Logger
}

// NewService wires an identification pass service.
func NewService(reg sources.ReaderRegistry, client ContactIdentifier, fanout OutcomePublisher, log logger.Logger, store storage.Store) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		registry: reg,
		client:   client,
		fanout:   fanout,
		store:    store,
		log:      log,
	}
}

// Run executes an identification pass for all configured sources.
func (s *Service) Run(ctx context.Context, cfgs []sources.Source) error {
	if s == nil || s.registry == nil || s.client == nil {
		return fmt.Errorf("identifier service is not initialized")
	}

	if len(cfgs) == 0 {
		return fmt.Errorf("no sources configured for identification")
	}

	errs := make([]error, 0, len(cfgs))
	for _, cfg := range cfgs {
		if err := s.runSource(ctx, cfg); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("source pass failed", "source_error", map[string]any{
				"source_id": cfg.ID,
				"error":     err.Error(),
			})
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// runSource processes one source end to end. Per-submission failures are
// logged and leave the submission unjournaled so a later pass retries it.
func (s *Service) runSource(ctx context.Context, cfg sources.Source) error {
	reader, err := s.registry.ReaderFor(cfg)
	if err != nil {
		return fmt.Errorf("resolve reader for source %s: %w", cfg.ID, err)
	}

	subs, err := reader.Read(ctx, cfg)
	if err != nil {
		return fmt.Errorf("read source %s: %w", cfg.ID, err)
	}

	delay := cfg.RequestDelay()
	var identified, invalid, seen, failed int

	for i, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		sub = sub.Normalize()
		if err := sub.Validate(); err != nil {
			invalid++
			s.log.WarnObj("submission rejected at intake", "submission_error", map[string]any{
				"source_id": cfg.ID,
				"error":     err.Error(),
			})
			continue
		}

		fingerprint := sub.Fingerprint()
		alreadySeen, err := s.store.SeenSubmission(fingerprint)
		if err != nil {
			return fmt.Errorf("journal lookup for source %s: %w", cfg.ID, err)
		}
		if alreadySeen {
			seen++
			continue
		}

		if ok := s.identifyAndPublish(ctx, cfg, sub, fingerprint); ok {
			identified++
		} else {
			failed++
		}

		if delay > 0 && i < len(subs)-1 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	s.log.InfoObj("source pass completed", "source_result", map[string]any{
		"source_id":  cfg.ID,
		"read":       len(subs),
		"identified": identified,
		"invalid":    invalid,
		"seen":       seen,
		"failed":     failed,
	})
	return nil
}

// identifyAndPublish runs the remote identify call and fans the outcome out.
// The journal is only marked when every step succeeded.
func (s *Service) identifyAndPublish(ctx context.Context, cfg sources.Source, sub domain.Submission, fingerprint string) bool {
	resp, err := s.client.Identify(ctx, bitespeed.IdentifyRequest{
		Email:       sub.Email,
		PhoneNumber: sub.PhoneNumber,
	})
	if err != nil {
		s.log.WarnObj("identify call failed", "identify_error", map[string]any{
			"source_id": cfg.ID,
			"error":     err.Error(),
		})
		return false
	}

	evt := publishers.NewEvent(cfg.ID, cfg.Name, sub, resp.Contact)
	if _, err := s.fanout.Publish(ctx, evt); err != nil {
		s.log.WarnObj("outcome publish failed", "publish_error", map[string]any{
			"source_id":          cfg.ID,
			"primary_contact_id": resp.Contact.PrimaryContactID,
			"error":              err.Error(),
		})
		return false
	}

	if err := s.store.MarkSubmission(fingerprint); err != nil {
		s.log.WarnObj("journal mark failed", "journal_error", map[string]any{
			"source_id": cfg.ID,
			"error":     err.Error(),
		})
		return false
	}

	s.log.DebugObj("submission identified", "identify_result", map[string]any{
		"source_id":          cfg.ID,
		"primary_contact_id": resp.Contact.PrimaryContactID,
	})
	return true
}
