package httpx

import (
	"sync"

	"github.com/google/uuid"
)

// SessionCookieName 会话 Cookie 名
const SessionCookieName = "syntexa_session"

// Session 每请求会话
// 由入口点在请求开始时恢复（或新建），随请求上下文注入可变服务
type Session struct {
	mu     sync.RWMutex
	id     string
	isNew  bool
	values map[string]any
}

// NewSession 创建会话；id 为空时分配新 ID（视为新会话）
func NewSession(id string) *Session {
	s := &Session{values: make(map[string]any)}
	if id == "" {
		s.id = uuid.NewString()
		s.isNew = true
	} else {
		s.id = id
	}
	return s
}

// ID 会话 ID
func (s *Session) ID() string {
	return s.id
}

// IsNew 本请求新建的会话
func (s *Session) IsNew() bool {
	return s.isNew
}

// Get 读取会话值
func (s *Session) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// GetString 读取字符串会话值（缺失或类型不符返回空串）
func (s *Session) GetString(key string) string {
	if v, ok := s.Get(key); ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// Set 写入会话值
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete 删除会话值
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Len 会话值数量
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
