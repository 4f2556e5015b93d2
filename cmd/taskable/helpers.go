package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/houzhh15/taskable/pkg/cards"
	"github.com/houzhh15/taskable/pkg/usable"
)

// loadCard 打开会话并读取指定卡片
func loadCard(cmd *cobra.Command, cardID string) (*Session, *cards.Service, *cards.Card, error) {
	s, err := NewSession(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	svc, err := s.Cards()
	if err != nil {
		return nil, nil, nil, err
	}
	card, err := svc.GetCard(cmd.Context(), cardID)
	if err != nil {
		return nil, nil, nil, err
	}
	return s, svc, card, nil
}

// resolveFragmentType 按 ID 或名称（不区分大小写）查找工作区的片段类型
func resolveFragmentType(ctx context.Context, client *usable.Client, workspaceID, ref string) (*usable.FragmentType, error) {
	types, err := client.ListFragmentTypes(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(types))
	for i := range types {
		if types[i].ID == ref || strings.EqualFold(types[i].Name, ref) {
			return &types[i], nil
		}
		names = append(names, types[i].Name)
	}
	return nil, fmt.Errorf("fragment type %q not found in workspace. Available types: %s", ref, strings.Join(names, ", "))
}

// mustGetString 获取必选的字符串标志
func mustGetString(cmd *cobra.Command, flag string) string {
	v, _ := cmd.Flags().GetString(flag)
	return v
}

// optionalString 标志被设置时返回其值的指针
func optionalString(cmd *cobra.Command, flag string) *string {
	if !cmd.Flags().Changed(flag) {
		return nil
	}
	v, _ := cmd.Flags().GetString(flag)
	return &v
}
