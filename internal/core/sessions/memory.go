package sessions

import (
	"context"
	"sync"
	"time"
)

// MemoryStore 进程内会话存储：未配置 redis 时的退路，也是测试替身。
// 过期在读取时惰性清理。
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]Session)}
}

func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[sess.Token] = *sess
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[token]
	if !ok {
		return nil, nil
	}
	if time.Now().After(sess.Expires) {
		delete(s.items, token)
		return nil, nil
	}
	out := sess
	return &out, nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
	return nil
}
