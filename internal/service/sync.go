package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"oap_import/internal/config"
	"oap_import/internal/domain"
	"oap_import/internal/grouping"
)

// minted is a group on its way from the mint stage to the import stage.
type minted struct {
	pub   *domain.OAPub
	ids   []domain.Identifier
	best  *domain.RawItem
	oapID string
}

type SyncService struct {
	items     RawItemStore
	users     UserDirectory
	resolver  IdentityResolver
	state     SyncStateStore
	remote    RemoteSystem
	publisher Publisher
	logger    zerolog.Logger
	config    config.SyncConfig
	now       func() time.Time
}

// NewSyncService wires the pipeline. publisher may be nil.
func NewSyncService(
	items RawItemStore,
	users UserDirectory,
	resolver IdentityResolver,
	state SyncStateStore,
	remote RemoteSystem,
	publisher Publisher,
	logger zerolog.Logger,
	cfg config.SyncConfig,
) *SyncService {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = config.DefaultQueueSize
	}
	return &SyncService{
		items:     items,
		users:     users,
		resolver:  resolver,
		state:     state,
		remote:    remote,
		publisher: publisher,
		logger:    logger.With().Str("component", "sync").Logger(),
		config:    cfg,
		now:       time.Now,
	}
}

// Sync groups the whole corpus and pushes every group with a known user to
// the remote system. The first fatal error stops the run and is returned
// together with the statistics gathered so far.
func (s *SyncService) Sync(ctx context.Context) (*domain.RunStats, error) {
	start := time.Now()
	stats := &domain.RunStats{RunID: uuid.NewString()}
	log := s.logger.With().Str("run_id", stats.RunID).Logger()

	log.Info().
		Bool("force", s.config.Force).
		Str("only_campus", s.config.OnlyCampus).
		Int("queue_size", s.config.QueueSize).
		Msg("starting sync")

	items, err := s.items.All(ctx)
	if err != nil {
		return stats, fmt.Errorf("load raw items: %w", err)
	}
	users, err := s.users.All(ctx)
	if err != nil {
		return stats, fmt.Errorf("load users: %w", err)
	}

	pubs := grouping.NewEngine(items, log).Group()
	stats.Items = len(items)
	stats.Groups = len(pubs)

	var work []*domain.OAPub
	for _, pub := range pubs {
		attachUsers(pub, users)
		if len(pub.UserIDs) == 0 || (s.config.OnlyCampus != "" && !pub.HasCampus(s.config.OnlyCampus)) {
			stats.Skipped++
			continue
		}
		work = append(work, pub)
	}
	log.Info().Int("items", stats.Items).Int("groups", stats.Groups).Int("to_sync", len(work)).Msg("grouped")

	var (
		queued int
		ms     mintStats
		is     importStats
	)
	mintQueue := make(chan *domain.OAPub, s.config.QueueSize)
	importQueue := make(chan minted, s.config.QueueSize)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(mintQueue)
		for _, pub := range work {
			select {
			case mintQueue <- pub:
				queued++
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	g.Go(func() error {
		defer close(importQueue)
		return s.mintStage(gctx, log, mintQueue, importQueue, &ms)
	})

	g.Go(func() error {
		return s.importStage(gctx, log, importQueue, &is)
	})

	err = g.Wait()

	stats.Queued = queued
	stats.Resolved = ms.resolved
	stats.Put = is.put
	stats.Unchanged = is.unchanged
	stats.Relationships = is.relationships
	stats.Joined = is.joined
	stats.Incompatible = is.incompatible
	stats.Published = is.published
	stats.Duration = time.Since(start)

	event := log.Info()
	if err != nil {
		event = log.Error().Err(err)
	}
	event.
		Int("queued", stats.Queued).
		Int("resolved", stats.Resolved).
		Int("put", stats.Put).
		Int("unchanged", stats.Unchanged).
		Int("relationships", stats.Relationships).
		Int("joined", stats.Joined).
		Int("incompatible", stats.Incompatible).
		Int("skipped", stats.Skipped).
		Int("published", stats.Published).
		Dur("duration", stats.Duration).
		Msg("sync finished")

	if err != nil {
		return stats, fmt.Errorf("sync run %s: %w", stats.RunID, err)
	}
	return stats, nil
}

// attachUsers fills in the known users among the group's author e-mails.
func attachUsers(pub *domain.OAPub, users map[string]string) {
	seenIDs := make(map[string]struct{})
	pub.UserEmails, pub.UserIDs = nil, nil
	for _, email := range pub.AuthorEmails() {
		propID, ok := users[email]
		if !ok {
			continue
		}
		pub.UserEmails = append(pub.UserEmails, email)
		if _, dup := seenIDs[propID]; !dup {
			seenIDs[propID] = struct{}{}
			pub.UserIDs = append(pub.UserIDs, propID)
		}
	}
	sort.Strings(pub.UserEmails)
	sort.Strings(pub.UserIDs)
}
