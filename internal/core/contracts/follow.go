package contracts

import "context"

// FollowGraph answers "does follower follow following". The graph itself is
// owned by the social CRUD service; this core only reads it to decide whether
// a first private message is solicited.
type FollowGraph interface {
	Follows(ctx context.Context, followerID, followingID string) (bool, error)
}

// ContentGate is an optional injected capability: a synchronous boolean
// "may this content be delivered" check backed by an external moderation
// service. AllowAll is the default when no moderation is wired.
type ContentGate interface {
	Allow(ctx context.Context, senderID, content string) bool
}

type allowAll struct{}

func (allowAll) Allow(context.Context, string, string) bool { return true }

func AllowAll() ContentGate { return allowAll{} }
