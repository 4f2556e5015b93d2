package usable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Usable REST endpoints.
const (
	fragmentsPath  = "/api/memory-fragments"
	workspacesPath = "/api/workspaces"
)

type listFragmentsResponse struct {
	Fragments []Fragment `json:"fragments" validate:"dive"`
}

type fragmentTypesResponse struct {
	FragmentTypes []FragmentType `json:"fragmentTypes" validate:"dive"`
}

type workspacesResponse struct {
	Workspaces []Workspace `json:"workspaces" validate:"dive"`
}

// ListFragments returns fragments of a workspace matching every given tag.
func (c *Client) ListFragments(ctx context.Context, params ListParams) ([]Fragment, error) {
	if params.WorkspaceID == "" {
		return nil, fmt.Errorf("list fragments: workspace id is required")
	}
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := url.Values{}
	query.Set("workspaceId", params.WorkspaceID)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(params.Offset))
	if params.FragmentTypeID != "" {
		query.Set("fragmentTypeId", params.FragmentTypeID)
	}
	for _, tag := range params.Tags {
		query.Add("tags", tag)
	}

	var resp listFragmentsResponse
	if err := c.do(ctx, "list_fragments", http.MethodGet, fragmentsPath, query, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Fragments == nil {
		return []Fragment{}, nil
	}
	return resp.Fragments, nil
}

// CreateFragment stores a new fragment. The summary falls back to the title.
func (c *Client) CreateFragment(ctx context.Context, in CreateFragmentInput) (*Fragment, error) {
	if in.Summary == "" {
		in.Summary = in.Title
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
	if in.CreatedVia == "" {
		in.CreatedVia = "api"
	}

	var f Fragment
	if err := c.do(ctx, "create_fragment", http.MethodPost, fragmentsPath, nil, in, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateFragment applies a partial update; the merge happens server side.
func (c *Client) UpdateFragment(ctx context.Context, id string, patch FragmentPatch) (*Fragment, error) {
	var f Fragment
	if err := c.do(ctx, "update_fragment", http.MethodPatch, fragmentsPath+"/"+url.PathEscape(id), nil, patch, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// DeleteFragment removes a fragment.
func (c *Client) DeleteFragment(ctx context.Context, id string) error {
	return c.do(ctx, "delete_fragment", http.MethodDelete, fragmentsPath+"/"+url.PathEscape(id), nil, nil, nil)
}

// ListFragmentTypes returns the fragment types of a workspace. Usable exposes
// them through the workspace's MCP system prompt document.
func (c *Client) ListFragmentTypes(ctx context.Context, workspaceID string) ([]FragmentType, error) {
	var resp fragmentTypesResponse
	path := workspacesPath + "/" + url.PathEscape(workspaceID) + "/mcp-system-prompt"
	if err := c.do(ctx, "list_fragment_types", http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.FragmentTypes == nil {
		return []FragmentType{}, nil
	}
	return resp.FragmentTypes, nil
}

// ListWorkspaces returns the workspaces visible to the token. Both the
// {"workspaces": [...]} envelope and a bare array are accepted.
func (c *Client) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "list_workspaces", http.MethodGet, workspacesPath, nil, nil, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []Workspace{}, nil
	}

	if isJSONArray(raw) {
		var list []Workspace
		if err := decodeStrict(raw, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	var resp workspacesResponse
	if err := decodeStrict(raw, &resp); err != nil {
		return nil, err
	}
	if resp.Workspaces == nil {
		return []Workspace{}, nil
	}
	return resp.Workspaces, nil
}
