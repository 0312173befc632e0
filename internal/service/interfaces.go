package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"oap_import/internal/domain"
)

type RawItemStore interface {
	All(ctx context.Context) ([]*domain.RawItem, error)
}

// UserDirectory maps lower-case e-mail addresses to proprietary user ids.
type UserDirectory interface {
	All(ctx context.Context) (map[string]string, error)
}

type IdentityResolver interface {
	Resolve(ctx context.Context, ids []domain.Identifier, best *domain.RawItem) (string, error)
}

type SyncStateStore interface {
	GetSyncState(ctx context.Context, oapID string) (*domain.SyncState, error)
	UpdateSyncState(ctx context.Context, state *domain.SyncState) error
	RecordPub(ctx context.Context, pubID, oapID string) error
	RecordFlags(ctx context.Context, flags domain.JoinFlags) error
}

type RemoteSystem interface {
	PutRecord(ctx context.Context, oapID string, rec *domain.ExportRecord) (*domain.PutResult, error)
	PostRelationship(ctx context.Context, oapID, userID string) error
}

type Publisher interface {
	Publish(ctx context.Context, event *domain.SyncEvent) error
	Close() error
}
