package app

import (
	"context"

	"github.com/shrimpsizemoose/zhurnal/internal/models"
)

type actorKey struct{}

func WithActor(ctx context.Context, actor *models.User) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated user of the request, or nil.
func ActorFromContext(ctx context.Context) *models.User {
	actor, _ := ctx.Value(actorKey{}).(*models.User)
	return actor
}
