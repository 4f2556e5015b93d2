package cards

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// CardStats counts items of a card.
type CardStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// ItemStats summarises the optional parts of an item.
type ItemStats struct {
	HasDescription       bool `json:"hasDescription"`
	HasLinks             bool `json:"hasLinks"`
	HasAttachments       bool `json:"hasAttachments"`
	HasSubTasks          bool `json:"hasSubTasks"`
	SubTasksCompleted    int  `json:"subTasksCompleted"`
	SubTasksTotal        int  `json:"subTasksTotal"`
	CompletionPercentage int  `json:"completionPercentage"`
}

// IsItemComplete reports the effective completion of an item: with sub-tasks
// present every sub-task must be checked and the item's own flag is ignored.
func IsItemComplete(item Item) bool {
	if len(item.SubTasks) > 0 {
		for _, st := range item.SubTasks {
			if !st.Checked {
				return false
			}
		}
		return true
	}
	return item.Checked
}

// CardStatsOf counts effectively completed items.
func CardStatsOf(card Card) CardStats {
	stats := CardStats{Total: len(card.Items)}
	for _, item := range card.Items {
		if IsItemComplete(item) {
			stats.Completed++
		}
	}
	return stats
}

// ItemStatsOf computes the display statistics for one item.
func ItemStatsOf(item Item) ItemStats {
	stats := ItemStats{
		HasDescription: item.Description != nil && *item.Description != "",
		HasLinks:       len(item.Links) > 0,
		HasAttachments: len(item.Attachments) > 0,
		HasSubTasks:    len(item.SubTasks) > 0,
	}
	if stats.HasSubTasks {
		stats.SubTasksTotal = len(item.SubTasks)
		for _, st := range item.SubTasks {
			if st.Checked {
				stats.SubTasksCompleted++
			}
		}
		stats.CompletionPercentage = int(math.Round(float64(stats.SubTasksCompleted) / float64(stats.SubTasksTotal) * 100))
	}
	return stats
}

// TruncateText shortens text to maxLength runes followed by "...".
func TruncateText(text string, maxLength int) string {
	if utf8.RuneCountInString(text) <= maxLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLength]) + "..."
}

// FormatFileSize renders a byte count with a binary unit.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	sizes := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}
	return fmt.Sprintf("%d %s", int64(math.Round(float64(bytes)/math.Pow(1024, float64(i)))), sizes[i])
}
