package app

import (
	"sync"

	"chat_backend_service/internal/chat/domain"
)

// PushChannel one writable real-time channel toward a client
type PushChannel interface {
	Push(resp domain.WSResponse) error
}

// ClientSession one identified connection of one user device
type ClientSession struct {
	SessionID string
	UserID    string
	DeviceID  string

	channel PushChannel
}

// SessionRegistry track connected sessions, one per user device
type SessionRegistry struct {
	mu sync.Mutex

	// key user_id + "|" + device_id
	byDevice  map[string]*ClientSession
	bySession map[string]*ClientSession
}

// NewSessionRegistry create an empty SessionRegistry
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		byDevice:  map[string]*ClientSession{},
		bySession: map[string]*ClientSession{},
	}
}

func deviceKey(userID, deviceID string) string {
	return userID + "|" + deviceID
}

// Identify register the connection, a reconnect of the same device replaces the prior handle
func (r *SessionRegistry) Identify(userID, deviceID, sessionID string, ch PushChannel) (replaced bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := deviceKey(userID, deviceID)
	if old, ok := r.byDevice[key]; ok {
		delete(r.bySession, old.SessionID)
		replaced = true
	}

	s := &ClientSession{
		SessionID: sessionID,
		UserID:    userID,
		DeviceID:  deviceID,
		channel:   ch,
	}
	r.byDevice[key] = s
	r.bySession[sessionID] = s
	return replaced
}

// Remove drop the session on disconnect
func (r *SessionRegistry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.bySession[sessionID]
	if !ok {
		return
	}
	delete(r.bySession, sessionID)

	// a reconnect may already own the device slot
	key := deviceKey(s.UserID, s.DeviceID)
	if cur, ok := r.byDevice[key]; ok && cur.SessionID == sessionID {
		delete(r.byDevice, key)
	}
}

// SessionsByUser snapshot all active sessions of userID
func (r *SessionRegistry) SessionsByUser(userID string) []*ClientSession {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sessions []*ClientSession
	for _, s := range r.bySession {
		if s.UserID == userID {
			sessions = append(sessions, s)
		}
	}
	return sessions
}

// Count report the number of active sessions
func (r *SessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bySession)
}
