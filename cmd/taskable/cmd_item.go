package main

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/houzhh15/taskable/pkg/cards"
)

func newItemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "卡片条目 (添加、勾选、描述、链接、子任务、附件)",
	}
	cmd.AddCommand(newItemAddCmd())
	cmd.AddCommand(newItemToggleCmd())
	cmd.AddCommand(newItemRemoveCmd())
	cmd.AddCommand(newItemDescribeCmd())
	cmd.AddCommand(newItemLinkCmd())
	cmd.AddCommand(newItemAttachCmd())
	cmd.AddCommand(newSubTaskCmd())
	return cmd
}

// printCard 输出修改后的卡片
func printCard(s *Session, card *cards.Card) error {
	return printOutput(s.Config.Output, card, func(w io.Writer) {
		renderCard(w, *card)
	})
}

func newItemAddCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "add <card-id> <text>",
		Short: "添加条目",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, svc, card, err := loadCard(cmd, args[0])
			if err != nil {
				return err
			}
			item := cards.NewItem(args[1])
			if d := optionalString(cmd, "description"); d != nil {
				item.Description = d
			}
			updated, err := svc.AddItem(cmd.Context(), *card, item)
			if err != nil {
				return err
			}
			return printCard(s, updated)
		},
	}
	c.Flags().String("description", "", "条目描述")
	return c
}

func newItemToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <card-id> <item-id>",
		Short: "切换条目完成状态",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, svc, card, err := loadCard(cmd, args[0])
			if err != nil {
				return err
			}
			updated, err := svc.ToggleItem(cmd.Context(), *card, args[1])
			if err != nil {
				return err
			}
			return printCard(s, updated)
		},
	}
}

func newItemRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <card-id> <item-id>",
		Short: "删除条目",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, svc, card, err := loadCard(cmd, args[0])
			if err != nil {
				return err
			}
			updated, err := svc.RemoveItem(cmd.Context(), *card, args[1])
			if err != nil {
				return err
			}
			return printCard(s, updated)
		},
	}
}

func newItemDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <card-id> <item-id> <text>",
		Short: "设置条目描述，空字符串清除描述",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if n := utf8.RuneCountInString(args[2]); n > cards.MaxDescriptionLength {
				return fmt.Errorf("%w: %d characters, max %d", cards.ErrDescriptionTooLong, n, cards.MaxDescriptionLength)
			}
			s, svc, card, err := loadCard(cmd, args[0])
			if err != nil {
				return err
			}
			updated, err := svc.UpdateItem(cmd.Context(), *card, args[1], func(it *cards.Item) {
				if args[2] == "" {
					it.Description = nil
					return
				}
				it.Description = cards.StringPtr(args[2])
			})
			if err != nil {
				return err
			}
			return printCard(s, updated)
		},
	}
}

func newItemLinkCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "link <card-id> <item-id> <url>",
		Short: "为条目添加链接",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cards.IsValidURL(args[2]) {
				return fmt.Errorf("%w: %q", cards.ErrInvalidLinkURL, args[2])
			}
			s, svc, card, err := loadCard(cmd, args[0])
			if err != nil {
				return err
			}
			link := cards.NewLink(args[2], mustGetString(cmd, "title"))
			updated, err := svc.UpdateItem(cmd.Context(), *card, args[1], func(it *cards.Item) {
				links := make([]cards.Link, 0, len(it.Links)+1)
				links = append(links, it.Links...)
				it.Links = append(links, link)
			})
			if err != nil {
				return err
			}
			return printCard(s, updated)
		},
	}
	c.Flags().String("title", "", "链接标题")
	return c
}

func newItemAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <card-id> <item-id> <file>",
		Short: "上传图片并附加到条目 (JPEG/PNG/GIF/WEBP, 最大 10MB)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, f, err := cards.OpenFile(args[2])
			if err != nil {
				return err
			}
			defer f.Close()
			if err := cards.ValidateFile(in.Name, in.MimeType, in.Size); err != nil {
				return err
			}

			s, svc, card, err := loadCard(cmd, args[0])
			if err != nil {
				return err
			}
			updated, err := svc.AttachFile(cmd.Context(), s.Client, *card, args[1], in)
			if err != nil {
				return err
			}
			return printCard(s, updated)
		},
	}
}

func newSubTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "子任务",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <card-id> <item-id> <text>",
		Short: "添加子任务",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, svc, card, err := loadCard(cmd, args[0])
			if err != nil {
				return err
			}
			st := cards.NewSubTask(args[2])
			updated, err := svc.UpdateItem(cmd.Context(), *card, args[1], func(it *cards.Item) {
				subTasks := make([]cards.SubTask, 0, len(it.SubTasks)+1)
				subTasks = append(subTasks, it.SubTasks...)
				it.SubTasks = append(subTasks, st)
			})
			if err != nil {
				return err
			}
			return printCard(s, updated)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <card-id> <item-id> <subtask-id>",
		Short: "切换子任务完成状态",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, svc, card, err := loadCard(cmd, args[0])
			if err != nil {
				return err
			}
			updated, err := svc.ToggleSubTask(cmd.Context(), *card, args[1], args[2])
			if errors.Is(err, cards.ErrSubTaskNotFound) {
				return fmt.Errorf("sub-task %s not found in item %s", args[2], args[1])
			}
			if err != nil {
				return err
			}
			return printCard(s, updated)
		},
	})
	return cmd
}
