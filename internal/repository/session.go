package repository

import (
	"sync"

	"github.com/rocketscienceinc/renju-backend/internal/entity"
)

// SessionRepository holds live game sessions by room id. Sessions are not durable.
type SessionRepository interface {
	Get(roomID string) (*entity.GameSession, bool)
	Set(session *entity.GameSession)
	Delete(roomID string)
}

type memSession struct {
	mu       sync.RWMutex
	sessions map[string]*entity.GameSession
}

func NewSessionRepository() SessionRepository {
	return &memSession{
		sessions: make(map[string]*entity.GameSession),
	}
}

func (that *memSession) Get(roomID string) (*entity.GameSession, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[roomID]
	if !ok {
		return nil, false
	}

	return session.Clone(), true
}

func (that *memSession) Set(session *entity.GameSession) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[session.RoomID] = session.Clone()
}

func (that *memSession) Delete(roomID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.sessions, roomID)
}
