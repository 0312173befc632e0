// Package ingest loads harvested feeds into the raw item store and the user
// directory.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"oap_import/internal/domain"
	"oap_import/internal/feed"
)

type ItemReader interface {
	Next() (*domain.RawItem, error)
}

type UserReader interface {
	Next() (*feed.User, error)
}

type RawItemStore interface {
	GetMany(ctx context.Context, keys []string) (map[string]*domain.RawItem, error)
	Upsert(ctx context.Context, item *domain.RawItem) (bool, error)
}

type UserStore interface {
	Upsert(ctx context.Context, email, propID string) (previous string, changed bool, err error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

const DefaultBatchSize = 500

type Service struct {
	items     RawItemStore
	users     UserStore
	txManager TransactionManager
	log       zerolog.Logger
	batchSize int
}

func NewService(items RawItemStore, users UserStore, txManager TransactionManager, log zerolog.Logger, batchSize int) *Service {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Service{
		items:     items,
		users:     users,
		txManager: txManager,
		log:       log.With().Str("component", "ingest").Logger(),
		batchSize: batchSize,
	}
}

// batch holds records in feed order, with re-submissions folded into the
// first copy.
type batch struct {
	order []string
	items map[string]*domain.RawItem
}

func newBatch() *batch {
	return &batch{items: make(map[string]*domain.RawItem)}
}

// IngestItems stores every valid record of r. Records that fail validation
// are logged and counted; any other error aborts the ingestion.
func (s *Service) IngestItems(ctx context.Context, r ItemReader) (*domain.IngestStats, error) {
	start := time.Now()
	stats := &domain.IngestStats{}
	b := newBatch()

	for {
		item, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if feed.IsDataError(err) {
				s.log.Warn().Err(err).Msg("skipping record")
				stats.Skipped++
				continue
			}
			return stats, fmt.Errorf("read feed: %w", err)
		}
		stats.Read++

		key := item.PrimaryKey()
		if first, ok := b.items[key]; ok {
			s.log.Debug().Str("campus_id", key).Msg("record repeated in feed")
			if item.Updated.After(first.Updated) {
				MergeAuthors(item, first, s.log)
				b.items[key] = item
			} else {
				MergeAuthors(first, item, s.log)
			}
			stats.Merged++
			continue
		}
		b.order = append(b.order, key)
		b.items[key] = item

		if len(b.order) >= s.batchSize {
			if err := s.flush(ctx, b, stats); err != nil {
				return stats, err
			}
			b = newBatch()
		}
	}

	if err := s.flush(ctx, b, stats); err != nil {
		return stats, err
	}

	stats.Duration = time.Since(start)
	s.log.Info().
		Int("read", stats.Read).
		Int("stored", stats.Stored).
		Int("unchanged", stats.Unchanged).
		Int("merged", stats.Merged).
		Int("skipped", stats.Skipped).
		Dur("duration", stats.Duration).
		Msg("feed ingested")
	return stats, nil
}

func (s *Service) flush(ctx context.Context, b *batch, stats *domain.IngestStats) error {
	if len(b.order) == 0 {
		return nil
	}
	return s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.items.GetMany(ctx, b.order)
		if err != nil {
			return fmt.Errorf("load stored items: %w", err)
		}

		for _, key := range b.order {
			item := b.items[key]
			if old, ok := existing[key]; ok {
				if !item.Updated.After(old.Updated) {
					stats.Unchanged++
					continue
				}
				// The new version may lack e-mails the stored one picked up.
				MergeAuthors(item, old, s.log)
			}

			stored, err := s.items.Upsert(ctx, item)
			if err != nil {
				return fmt.Errorf("store item %s: %w", key, err)
			}
			if stored {
				stats.Stored++
			} else {
				stats.Unchanged++
			}
		}
		return nil
	})
}

type UserStats struct {
	Read      int `json:"read"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Skipped   int `json:"skipped"`
}

// IngestUsers loads a user directory export.
func (s *Service) IngestUsers(ctx context.Context, r UserReader) (*UserStats, error) {
	stats := &UserStats{}
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		for {
			u, err := r.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				if feed.IsDataError(err) {
					s.log.Warn().Err(err).Msg("skipping user record")
					stats.Skipped++
					continue
				}
				return fmt.Errorf("read users: %w", err)
			}
			stats.Read++

			previous, changed, err := s.users.Upsert(ctx, u.Email, u.ProprietaryID)
			if err != nil {
				return err
			}
			switch {
			case !changed:
				stats.Unchanged++
			case previous != "":
				s.log.Info().Str("email", u.Email).Str("old", previous).Str("new", u.ProprietaryID).Msg("user id changed")
				stats.Updated++
			default:
				stats.Inserted++
			}
		}
	})
	if err != nil {
		return stats, err
	}

	s.log.Info().
		Int("read", stats.Read).
		Int("inserted", stats.Inserted).
		Int("updated", stats.Updated).
		Int("skipped", stats.Skipped).
		Msg("users ingested")
	return stats, nil
}
