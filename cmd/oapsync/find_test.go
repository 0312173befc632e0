package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"oap_import/internal/domain"
	"oap_import/internal/storage/sqlstore"
)

const testOAPID = "ark:/13030/p4abc123"

type FindTestSuite struct {
	suite.Suite
	ctx    context.Context
	finder *finder
}

func (s *FindTestSuite) SetupTest() {
	s.ctx = context.Background()
	db, err := sqlstore.Open(s.ctx, sqlstore.DriverSQLite, filepath.Join(s.T().TempDir(), "oap.db"))
	s.Require().NoError(err)
	s.T().Cleanup(func() { db.Close() })
	s.Require().NoError(sqlstore.Migrate(s.ctx, db))

	items := sqlstore.NewRawItemStore(db)
	assocs := sqlstore.NewAssociationStore(db)
	s.finder = &finder{items: items, assocs: assocs}

	updated := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, it := range []*domain.RawItem{
		{TypeName: "journal-article", Title: "Synced paper", Updated: updated,
			IDs: []domain.Identifier{{Scheme: "c-ucla-id", Value: "123456"}}},
		{TypeName: "journal-article", Title: "Synced paper", Updated: updated,
			IDs: []domain.Identifier{{Scheme: "c-uci-id", Value: "987654"}}},
		{TypeName: "book", Title: "Lonely book", Updated: updated,
			IDs: []domain.Identifier{{Scheme: "c-ucsf-id", Value: "555555"}}},
	} {
		_, err := items.Upsert(s.ctx, it)
		s.Require().NoError(err)
	}
	for _, key := range []string{"c-ucla-id::123456", "c-uci-id::987654"} {
		s.Require().NoError(assocs.Associate(s.ctx, domain.Association{CampusID: key, OAPID: testOAPID, Updated: updated}))
	}
	s.Require().NoError(assocs.RecordPub(s.ctx, "4711", testOAPID))
	s.Require().NoError(assocs.RecordFlags(s.ctx, domain.JoinFlags{OAPID: testOAPID, Joined: true, Compatible: true}))
	s.Require().NoError(assocs.UpdateSyncState(s.ctx, &domain.SyncState{
		OAPID: testOAPID, Hash: "abc", Users: []string{"1001"}, Updated: updated,
	}))
}

func TestFindTestSuite(t *testing.T) {
	suite.Run(t, new(FindTestSuite))
}

func (s *FindTestSuite) requireSynced(res *FindResult) {
	s.Require().Len(res.Matches, 1)
	m := res.Matches[0]
	s.Equal(testOAPID, m.OAPID)
	s.Equal("4711", m.PubID)
	s.Equal([]string{"c-uci-id::987654", "c-ucla-id::123456"}, m.CampusIDs)
	s.Equal([]string{"Synced paper", "Synced paper"}, m.Titles)
	s.Equal([]string{"1001"}, m.Users)
	s.Require().NotNil(m.Joined)
	s.True(*m.Joined)
}

func (s *FindTestSuite) TestFind_ByOAPID() {
	res, err := s.finder.find(s.ctx, testOAPID)
	s.Require().NoError(err)
	s.requireSynced(res)
}

func (s *FindTestSuite) TestFind_ByBareOAPID() {
	res, err := s.finder.find(s.ctx, "p4abc123")
	s.Require().NoError(err)
	s.requireSynced(res)
}

func (s *FindTestSuite) TestFind_ByPubID() {
	res, err := s.finder.find(s.ctx, "4711")
	s.Require().NoError(err)
	s.requireSynced(res)
}

func (s *FindTestSuite) TestFind_ByCampusKey() {
	res, err := s.finder.find(s.ctx, "c-uci-id::987654")
	s.Require().NoError(err)
	s.requireSynced(res)
}

func (s *FindTestSuite) TestFind_ByBareCampusValue() {
	res, err := s.finder.find(s.ctx, " 123456 ")
	s.Require().NoError(err)
	s.Equal("123456", res.Query)
	s.requireSynced(res)
}

func (s *FindTestSuite) TestFind_UnsyncedItem() {
	res, err := s.finder.find(s.ctx, "555555")
	s.Require().NoError(err)
	s.Require().Len(res.Matches, 1)
	s.Empty(res.Matches[0].OAPID)
	s.Equal([]string{"c-ucsf-id::555555"}, res.Matches[0].CampusIDs)
	s.Equal([]string{"Lonely book"}, res.Matches[0].Titles)
}

func (s *FindTestSuite) TestFind_WrongSchemeDoesNotMatch() {
	res, err := s.finder.find(s.ctx, "c-ucla-id::987654")
	s.Require().NoError(err)
	s.Empty(res.Matches)
}

func (s *FindTestSuite) TestFind_ShortValuesAreNotSearched() {
	res, err := s.finder.find(s.ctx, "123")
	s.Require().NoError(err)
	s.Empty(res.Matches)
}
