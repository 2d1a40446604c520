package registry

import (
	"sync"

	"github.com/TruyenGau/sosialNetwork-backend/internal/core/contracts"
)

// Registry owns the in-memory connection state for this process: every live
// connection keyed by id, the per-user connection sets that presence derives
// from, the per-user active room, and an explicit room subscription table
// (conversation id to connections) instead of a transport-level grouping
// primitive.
type Registry struct {
	mu          sync.RWMutex
	conns       map[string]contracts.Client            // conn id -> client
	users       map[string]map[string]contracts.Client // user id -> conn id -> client
	rooms       map[string]map[string]contracts.Client // room id -> conn id -> client
	subs        map[string]string                      // conn id -> room id
	activeRooms map[string]string                      // user id -> room id

	onOnline  func(userID string)
	onOffline func(userID string)
}

func NewRegistry() *Registry {
	return &Registry{
		conns:       make(map[string]contracts.Client),
		users:       make(map[string]map[string]contracts.Client),
		rooms:       make(map[string]map[string]contracts.Client),
		subs:        make(map[string]string),
		activeRooms: make(map[string]string),
	}
}

// OnPresenceChange installs the callbacks fired on a user's first register and
// emptying unregister. Must be set before the first connection arrives.
func (r *Registry) OnPresenceChange(online, offline func(userID string)) {
	r.onOnline = online
	r.onOffline = offline
}

func (r *Registry) Register(c contracts.Client) {
	userID := c.UserID()
	r.mu.Lock()
	first := len(r.users[userID]) == 0
	if r.users[userID] == nil {
		r.users[userID] = make(map[string]contracts.Client)
	}
	r.users[userID][c.ID()] = c
	r.conns[c.ID()] = c
	r.mu.Unlock()

	// Callbacks run outside the lock: they hit slow stores.
	if first && r.onOnline != nil {
		r.onOnline(userID)
	}
}

func (r *Registry) Unregister(c contracts.Client) {
	userID := c.UserID()
	r.mu.Lock()
	if _, ok := r.conns[c.ID()]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.conns, c.ID())
	r.dropSubscription(c.ID(), userID)
	delete(r.users[userID], c.ID())
	last := len(r.users[userID]) == 0
	if last {
		delete(r.users, userID)
		delete(r.activeRooms, userID)
	}
	r.mu.Unlock()

	if last && r.onOffline != nil {
		r.onOffline(userID)
	}
}

func (r *Registry) ConnectionsFor(userID string) []contracts.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.users[userID]
	out := make([]contracts.Client, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

func (r *Registry) Subscribe(c contracts.Client, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.conns[c.ID()]; !ok {
		return
	}
	r.dropSubscription(c.ID(), c.UserID())
	r.subs[c.ID()] = roomID
	if r.rooms[roomID] == nil {
		r.rooms[roomID] = make(map[string]contracts.Client)
	}
	r.rooms[roomID][c.ID()] = c
	r.activeRooms[c.UserID()] = roomID
}

func (r *Registry) Unsubscribe(c contracts.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropSubscription(c.ID(), c.UserID())
}

func (r *Registry) RoomConnections(roomID string) []contracts.Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set := r.rooms[roomID]
	out := make([]contracts.Client, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

func (r *Registry) SetActiveRoom(userID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if roomID == "" {
		delete(r.activeRooms, userID)
		return
	}
	r.activeRooms[userID] = roomID
}

func (r *Registry) ActiveRoom(userID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeRooms[userID]
}

// dropSubscription detaches one connection from its room. Caller holds the
// lock. The user's active room is cleared only if no other connection of the
// same user still subscribes to it.
func (r *Registry) dropSubscription(connID, userID string) {
	roomID, ok := r.subs[connID]
	if !ok {
		return
	}
	delete(r.subs, connID)
	if set := r.rooms[roomID]; set != nil {
		delete(set, connID)
		if len(set) == 0 {
			delete(r.rooms, roomID)
		}
	}
	if r.activeRooms[userID] != roomID {
		return
	}
	for otherID := range r.users[userID] {
		if otherID != connID && r.subs[otherID] == roomID {
			return
		}
	}
	delete(r.activeRooms, userID)
}
