package memory

import (
	"loan-intake-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// SessionRepository holds live loan sessions for the process lifetime.
// Sessions never expire or get evicted; restarting the process starts the
// journeys over, which is the intended scope.
type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	c := cache.New(cache.NoExpiration, 0)
	return &SessionRepository{
		cache: c,
	}
}

// GetOrCreate returns the session for the id, creating a fresh one at
// ASK_NAME on first access. Safe for concurrent distinct ids.
func (r *SessionRepository) GetOrCreate(sessionID string) *entity.LoanSession {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*entity.LoanSession)
	}

	session := entity.NewLoanSession(sessionID)
	if err := r.cache.Add(sessionID, session, cache.NoExpiration); err != nil {
		// Lost a create race; the winner's instance is authoritative.
		if x, found := r.cache.Get(sessionID); found {
			return x.(*entity.LoanSession)
		}
	}
	return session
}

func (r *SessionRepository) Get(sessionID string) (*entity.LoanSession, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*entity.LoanSession), true
	}
	return nil, false
}

func (r *SessionRepository) Save(session *entity.LoanSession) {
	r.cache.Set(session.ID, session, cache.NoExpiration)
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
