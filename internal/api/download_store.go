package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type reportDownload struct {
	fileName    string
	contentType string
	data        []byte
	expiresAt   time.Time
}

// downloadStore 一次性下载令牌，结果保存在内存中直到被取走或过期
type downloadStore struct {
	mu    sync.Mutex
	items map[string]reportDownload
	now   func() time.Time
}

func newDownloadStore() *downloadStore {
	return &downloadStore{
		items: make(map[string]reportDownload),
		now:   time.Now,
	}
}

func (s *downloadStore) put(fileName, contentType string, data []byte, ttl time.Duration) (token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	token = uuid.NewString()
	expiresAt = now.Add(ttl)
	s.items[token] = reportDownload{
		fileName:    fileName,
		contentType: contentType,
		data:        data,
		expiresAt:   expiresAt,
	}
	return token, expiresAt
}

// take 取出并删除
func (s *downloadStore) take(token string) (reportDownload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.purgeExpiredLocked(now)

	v, ok := s.items[token]
	if !ok {
		return reportDownload{}, false
	}
	delete(s.items, token)
	return v, true
}

func (s *downloadStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *downloadStore) purgeExpiredLocked(now time.Time) {
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			delete(s.items, k)
		}
	}
}
