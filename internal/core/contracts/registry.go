package contracts

import "context"

// Registry is the single-process owner of live connection state: which
// connections belong to which user, which room each connection is subscribed
// to, and which room each user is actively viewing.
type Registry interface {
	// Register adds a connection for its user. The first connection of a user
	// fires the went-online callback.
	Register(c Client)
	// Unregister removes the connection. Emptying a user's connection set
	// fires went-offline and clears that user's active room.
	Unregister(c Client)
	// ConnectionsFor returns a snapshot of the user's live connections.
	// Empty for an offline user; absence is a state, not an error.
	ConnectionsFor(userID string) []Client
	// Subscribe moves the connection onto a room's push channel and marks the
	// room as the owning user's active room.
	Subscribe(c Client, roomID string)
	// Unsubscribe detaches the connection from its room and clears the user's
	// active room if it pointed there.
	Unsubscribe(c Client)
	// RoomConnections returns the connections currently subscribed to a room.
	RoomConnections(roomID string) []Client
	SetActiveRoom(userID, roomID string)
	// ActiveRoom returns the room the user currently views, or "".
	ActiveRoom(userID string) string
}

// Client is the minimal surface the registry and dispatcher need from an
// individual transport connection.
type Client interface {
	ID() string
	UserID() string
	// Send enqueues data for delivery. It must not block on a slow peer;
	// a closed or saturated connection drops the frame.
	Send(ctx context.Context, data []byte) error
	Close()
}
