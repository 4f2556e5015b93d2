package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/houzhh15/taskable/pkg/cards"
)

func newCardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "卡片管理 (列表、详情、创建、更新、删除)",
	}
	cmd.AddCommand(newCardListCmd())
	cmd.AddCommand(newCardShowCmd())
	cmd.AddCommand(newCardCreateCmd())
	cmd.AddCommand(newCardUpdateCmd())
	cmd.AddCommand(newCardDeleteCmd())
	cmd.AddCommand(newCardCollectionsCmd())
	return cmd
}

func newCardListCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "list",
		Short: "列出卡片",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := NewSession(cmd)
			if err != nil {
				return err
			}
			svc, err := s.Cards()
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			list, err := svc.ListCards(cmd.Context(), cards.ListOptions{
				Collection: mustGetString(cmd, "collection"),
				Limit:      limit,
				Offset:     offset,
			})
			if err != nil {
				return err
			}
			return printOutput(s.Config.Output, list, func(w io.Writer) {
				renderCardList(w, list)
			})
		},
	}
	c.Flags().StringP("collection", "c", cards.AllCollections, "集合名称，all 表示全部")
	c.Flags().Int("limit", 0, "最多返回数量 (默认 100)")
	c.Flags().Int("offset", 0, "偏移量")
	return c
}

func newCardShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <card-id>",
		Short: "显示卡片详情",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, card, err := loadCard(cmd, args[0])
			if err != nil {
				return err
			}
			return printOutput(s.Config.Output, card, func(w io.Writer) {
				renderCard(w, *card)
			})
		},
	}
}

func newCardCreateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "create",
		Short: "创建新卡片",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := NewSession(cmd)
			if err != nil {
				return err
			}
			svc, err := s.Cards()
			if err != nil {
				return err
			}
			texts, _ := cmd.Flags().GetStringArray("item")
			items := make([]cards.Item, 0, len(texts))
			for _, text := range texts {
				items = append(items, cards.NewItem(text))
			}
			card, err := svc.CreateCard(cmd.Context(), cards.CreateCardInput{
				Title:      mustGetString(cmd, "title"),
				Summary:    mustGetString(cmd, "summary"),
				Collection: mustGetString(cmd, "collection"),
				Items:      items,
			})
			if err != nil {
				return err
			}
			return printOutput(s.Config.Output, card, func(w io.Writer) {
				renderCard(w, *card)
			})
		},
	}
	c.Flags().String("title", "", "卡片标题（必选）")
	_ = c.MarkFlagRequired("title")
	c.Flags().String("summary", "", "摘要，默认使用标题")
	c.Flags().StringP("collection", "c", cards.DefaultCollection, "集合名称")
	c.Flags().StringArray("item", nil, "初始条目，可重复")
	return c
}

func newCardUpdateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "update <card-id>",
		Short: "更新卡片标题、摘要或集合",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := NewSession(cmd)
			if err != nil {
				return err
			}
			svc, err := s.Cards()
			if err != nil {
				return err
			}
			in := cards.UpdateCardInput{
				ID:         args[0],
				Title:      optionalString(cmd, "title"),
				Summary:    optionalString(cmd, "summary"),
				Collection: optionalString(cmd, "collection"),
			}
			if in.Title == nil && in.Summary == nil && in.Collection == nil {
				return fmt.Errorf("nothing to update, use --title, --summary or --collection")
			}
			card, err := svc.UpdateCard(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printOutput(s.Config.Output, card, func(w io.Writer) {
				renderCard(w, *card)
			})
		},
	}
	c.Flags().String("title", "", "新标题")
	c.Flags().String("summary", "", "新摘要")
	c.Flags().StringP("collection", "c", "", "移动到集合")
	return c
}

func newCardDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <card-id>",
		Short: "删除卡片",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := NewSession(cmd)
			if err != nil {
				return err
			}
			svc, err := s.Cards()
			if err != nil {
				return err
			}
			if err := svc.DeleteCard(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Deleted %s.\n", args[0])
			return nil
		},
	}
}

func newCardCollectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "列出正在使用的集合",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := NewSession(cmd)
			if err != nil {
				return err
			}
			svc, err := s.Cards()
			if err != nil {
				return err
			}
			names, err := svc.Collections(cmd.Context())
			if err != nil {
				return err
			}
			return printOutput(s.Config.Output, names, func(w io.Writer) {
				for _, n := range names {
					fmt.Fprintln(w, n)
				}
			})
		},
	}
}
