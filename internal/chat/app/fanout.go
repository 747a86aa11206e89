package app

import (
	"chat_backend_service/internal/chat/domain"
	"chat_backend_service/pkg/logger"

	"go.uber.org/zap"
)

// Notifier push events to the active sessions of the listed users
type Notifier struct {
	registry *SessionRegistry
}

// NewNotifier create a Notifier on the registry
func NewNotifier(registry *SessionRegistry) *Notifier {
	return &Notifier{registry: registry}
}

// Notify best effort push of the event to every session of userIDs except senderSessionID.
// Push errors are logged only, durable state is never affected.
func (n *Notifier) Notify(senderSessionID string, userIDs []string, event domain.Event, payload interface{}) {
	resp := domain.WSResponse{
		Event:   string(event),
		Success: true,
		Payload: payload,
	}

	sent := map[string]bool{}
	for _, userID := range userIDs {
		for _, s := range n.registry.SessionsByUser(userID) {
			if s.SessionID == senderSessionID || sent[s.SessionID] {
				continue
			}
			sent[s.SessionID] = true

			// fire and forget, a slow client must not hold up the caller
			go func(s *ClientSession) {
				if err := s.channel.Push(resp); err != nil {
					logger.Log.Error("fanout push fail",
						zap.String("event", string(event)),
						zap.String("user_id", s.UserID),
						zap.String("session_id", s.SessionID),
						zap.Error(err))
				}
			}(s)
		}
	}
}
