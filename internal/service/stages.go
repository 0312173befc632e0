package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"oap_import/internal/domain"
	"oap_import/internal/grouping"
)

type mintStats struct {
	resolved int
}

type importStats struct {
	put           int
	unchanged     int
	relationships int
	joined        int
	incompatible  int
	published     int
}

// mintStage gives every group its OAP identifier and passes it on.
func (s *SyncService) mintStage(ctx context.Context, log zerolog.Logger, in <-chan *domain.OAPub, out chan<- minted, st *mintStats) error {
	for pub := range in {
		if err := ctx.Err(); err != nil {
			return err
		}

		ids := pub.Identifiers()
		best := pub.Best()
		oapID, err := s.resolver.Resolve(ctx, ids, best)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", best.PrimaryKey(), err)
		}
		st.resolved++
		log.Debug().Str("oap_id", oapID).Int("members", len(pub.Items)).Msg("resolved group")

		select {
		case out <- minted{pub: pub, ids: ids, best: best, oapID: oapID}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *SyncService) importStage(ctx context.Context, log zerolog.Logger, in <-chan minted, st *importStats) error {
	for m := range in {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.importGroup(ctx, log, m, st); err != nil {
			return fmt.Errorf("import %s: %w", m.oapID, err)
		}
	}
	return nil
}

// importGroup pushes one group: the record when its content changed (or in
// force mode), then a relationship for every user not linked yet.
func (s *SyncService) importGroup(ctx context.Context, log zerolog.Logger, m minted, st *importStats) error {
	log = log.With().Str("oap_id", m.oapID).Logger()

	rec := domain.NewExportRecord(m.best, m.ids)
	hash := rec.ContentHash()

	state, err := s.state.GetSyncState(ctx, m.oapID)
	if err != nil {
		return fmt.Errorf("get sync state: %w", err)
	}

	event := &domain.SyncEvent{OAPID: m.oapID}
	if hash != state.Hash || s.config.Force {
		res, err := s.remote.PutRecord(ctx, m.oapID, rec)
		if err != nil {
			return err
		}
		st.put++
		event.Put = true
		event.PubID = res.PubID

		if err := s.state.RecordPub(ctx, res.PubID, m.oapID); err != nil {
			return fmt.Errorf("record pub: %w", err)
		}

		flags := domain.JoinFlags{OAPID: m.oapID, Joined: res.Joined(), Compatible: true}
		if flags.Joined {
			st.joined++
			flags.Compatible = compatibleJoin(m.pub, res.Foreign)
			if !flags.Compatible {
				st.incompatible++
				log.Warn().
					Str("pub_id", res.PubID).
					Str("title", m.best.Title).
					Msg("remote joined the record to an incompatible publication")
			}
		}
		if err := s.state.RecordFlags(ctx, flags); err != nil {
			return fmt.Errorf("record flags: %w", err)
		}
		event.Joined, event.Compatible = flags.Joined, flags.Compatible
		state.Hash = hash
	} else {
		st.unchanged++
	}

	for _, userID := range m.pub.UserIDs {
		if state.HasUser(userID) {
			continue
		}
		if err := s.remote.PostRelationship(ctx, m.oapID, userID); err != nil {
			return err
		}
		state.AddUser(userID)
		st.relationships++
		event.NewUsers++
	}

	if !event.Put && event.NewUsers == 0 {
		return nil
	}

	state.Updated = s.now().UTC()
	if err := s.state.UpdateSyncState(ctx, state); err != nil {
		return fmt.Errorf("update sync state: %w", err)
	}
	log.Info().Bool("put", event.Put).Int("new_users", event.NewUsers).Msg("group synced")

	if s.publisher != nil {
		for _, id := range m.pub.CampusIDs() {
			event.CampusIDs = append(event.CampusIDs, id.Key())
		}
		event.Users = append([]string(nil), state.Users...)
		event.Timestamp = state.Updated
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.Warn().Err(err).Msg("failed to publish sync event")
		} else {
			st.published++
		}
	}
	return nil
}

// compatibleJoin reports whether every foreign record would have been
// grouped with our members.
func compatibleJoin(pub *domain.OAPub, foreign []*domain.RawItem) bool {
	for _, f := range foreign {
		if !grouping.Compatible(pub.Items, f) {
			return false
		}
	}
	return true
}
