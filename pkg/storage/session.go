package storage

import (
	"path/filepath"

	"golang.org/x/oauth2"
)

// SessionStore 保存 OAuth2 token（session.json，权限 0600）
type SessionStore struct {
	file jsonFile[oauth2.Token]
}

// NewSessionStore 创建位于 dir/session.json 的会话存储
func NewSessionStore(dir string) *SessionStore {
	return &SessionStore{file: jsonFile[oauth2.Token]{path: filepath.Join(dir, "session.json"), perm: 0o600}}
}

// Get 读取已保存的 token，没有时返回 nil, nil
func (s *SessionStore) Get() (*oauth2.Token, error) {
	return s.file.load()
}

// Set 保存 token
func (s *SessionStore) Set(tok *oauth2.Token) error {
	return s.file.save(*tok)
}

// Clear 删除会话
func (s *SessionStore) Clear() error {
	return s.file.remove()
}
