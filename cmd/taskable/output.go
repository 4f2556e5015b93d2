package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/houzhh15/taskable/pkg/cards"
)

var stdout io.Writer = os.Stdout

// printOutput 按指定格式输出数据，text 模式使用 render 渲染
func printOutput(format string, data any, render func(w io.Writer)) error {
	if format == "json" || render == nil {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(data)
	}
	render(stdout)
	return nil
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// renderCardList 每张卡片一行：ID、集合、完成度、标题
func renderCardList(w io.Writer, list []cards.Card) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No cards.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOLLECTION\tDONE\tTITLE")
	for _, c := range list {
		stats := cards.CardStatsOf(c)
		fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%s\n", c.ID, c.Collection(), stats.Completed, stats.Total, cards.TruncateText(c.Title, 60))
	}
	tw.Flush()
}

// renderCard 输出卡片详情，包括子任务、链接和附件
func renderCard(w io.Writer, c cards.Card) {
	stats := cards.CardStatsOf(c)
	fmt.Fprintf(w, "%s  (%s, %d/%d done)\n", c.Title, c.Collection(), stats.Completed, stats.Total)
	fmt.Fprintf(w, "id: %s\n", c.ID)
	if c.Summary != "" && c.Summary != c.Title {
		fmt.Fprintf(w, "%s\n", c.Summary)
	}
	fmt.Fprintln(w)
	for _, item := range c.Items {
		renderItem(w, item)
	}
}

func renderItem(w io.Writer, item cards.Item) {
	line := fmt.Sprintf("%s %s", checkbox(cards.IsItemComplete(item)), item.Text)
	if st := cards.ItemStatsOf(item); st.HasSubTasks {
		line += fmt.Sprintf("  (%d/%d, %d%%)", st.SubTasksCompleted, st.SubTasksTotal, st.CompletionPercentage)
	}
	fmt.Fprintf(w, "%s  <%s>\n", line, item.ID)

	if item.Description != nil && *item.Description != "" {
		for _, l := range strings.Split(*item.Description, "\n") {
			fmt.Fprintf(w, "      %s\n", l)
		}
	}
	for _, st := range item.SubTasks {
		fmt.Fprintf(w, "    %s %s  <%s>\n", checkbox(st.Checked), st.Text, st.ID)
	}
	for _, l := range item.Links {
		label := l.URL
		if l.Title != "" {
			label = l.Title + " " + l.URL
		}
		fmt.Fprintf(w, "    -> %s\n", label)
	}
	for _, a := range item.Attachments {
		fmt.Fprintf(w, "    @ %s (%s, %s)\n", a.FileName, a.MimeType, cards.FormatFileSize(a.FileSize))
	}
}
