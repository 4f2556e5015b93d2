package templates

import (
	"time"

	"github.com/houzhh15/taskable/pkg/cards"
	"github.com/houzhh15/taskable/pkg/storage"
)

// CheckInterval is how long a successful check stays valid.
const CheckInterval = 24 * time.Hour

// SaveConfig records a reconcile result in cfg, stamped with the current
// schema version and check time.
func SaveConfig(cfg storage.TaskableConfig, result Result, now time.Time) storage.TaskableConfig {
	cfg.TemplatesConfig = &storage.TemplatesConfig{
		TemplateFragmentID:       result.TemplateID,
		InstructionSetFragmentID: result.InstructionSetID,
		Version:                  cards.SchemaVersion,
		LastChecked:              now.UTC().Truncate(time.Second),
	}
	return cfg
}

// ShouldCheck reports whether the provisioned fragments need a check: never
// checked, checked for another schema version, or last checked at least
// CheckInterval ago.
func ShouldCheck(cfg *storage.TaskableConfig, now time.Time) bool {
	if cfg == nil || cfg.TemplatesConfig == nil || cfg.TemplatesConfig.LastChecked.IsZero() {
		return true
	}
	if cfg.TemplatesConfig.Version != cards.SchemaVersion {
		return true
	}
	return now.Sub(cfg.TemplatesConfig.LastChecked) >= CheckInterval
}
