// Package storage 保存 Taskable 的本地状态（工作区配置与登录会话）。
// 所有记录的权威数据都在 Usable 中，这里只是本机缓存。
package storage

import (
	"os"
	"path/filepath"
	"time"
)

// TemplatesConfig 记录最近一次模板同步的结果
type TemplatesConfig struct {
	TemplateFragmentID       string    `json:"templateFragmentId,omitempty"`
	InstructionSetFragmentID string    `json:"instructionSetFragmentId,omitempty"`
	Version                  string    `json:"version"`
	LastChecked              time.Time `json:"lastChecked"`
}

// TaskableConfig 描述当前会话使用的工作区与卡片片段类型
type TaskableConfig struct {
	WorkspaceID     string           `json:"workspaceId"`
	FragmentTypeID  string           `json:"fragmentTypeId"`
	TemplatesConfig *TemplatesConfig `json:"templatesConfig,omitempty"`
}

// DefaultHome 返回本地状态目录：$TASKABLE_HOME，默认 ~/.taskable
func DefaultHome() string {
	if v := os.Getenv("TASKABLE_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskable"
	}
	return filepath.Join(home, ".taskable")
}

// ConfigStore 读写 config.json
type ConfigStore struct {
	file jsonFile[TaskableConfig]
}

// NewConfigStore 创建位于 dir/config.json 的配置存储
func NewConfigStore(dir string) *ConfigStore {
	return &ConfigStore{file: jsonFile[TaskableConfig]{path: filepath.Join(dir, "config.json"), perm: 0o644}}
}

// Path 返回配置文件路径
func (s *ConfigStore) Path() string {
	return s.file.path
}

// Get 读取配置；文件不存在或内容损坏时返回 nil, nil
func (s *ConfigStore) Get() (*TaskableConfig, error) {
	return s.file.load()
}

// Set 覆盖写入配置
func (s *ConfigStore) Set(cfg TaskableConfig) error {
	return s.file.save(cfg)
}

// Clear 删除配置（切换工作区或登出时调用）
func (s *ConfigStore) Clear() error {
	return s.file.remove()
}
