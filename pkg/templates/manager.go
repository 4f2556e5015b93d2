package templates

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/houzhh15/taskable/pkg/cards"
	"github.com/houzhh15/taskable/pkg/metrics"
	"github.com/houzhh15/taskable/pkg/usable"
)

// State of one provisioned artifact.
type State string

const (
	StateMissing State = "missing"
	StateStale   State = "stale"
	StateCurrent State = "current"
)

// ArtifactStatus is the classification of one artifact in a workspace.
type ArtifactStatus struct {
	Kind   Kind   `json:"kind"`
	State  State  `json:"state"`
	TypeID string `json:"typeId"`
	// FragmentID is set when State is current.
	FragmentID string `json:"fragmentId,omitempty"`
	// Stale lists fragments to delete before a fresh one is created.
	Stale []string `json:"stale,omitempty"`
}

// Status is the combined check of both artifacts.
type Status struct {
	Template       ArtifactStatus `json:"template"`
	InstructionSet ArtifactStatus `json:"instructionSet"`
}

// Current reports whether both artifacts are current.
func (s Status) Current() bool {
	return s.Template.State == StateCurrent && s.InstructionSet.State == StateCurrent
}

// Result holds the fragment ids in use after a reconcile.
type Result struct {
	TemplateID       string `json:"templateId"`
	InstructionSetID string `json:"instructionSetId"`
}

// Manager checks and reconciles the provisioned fragments of a workspace.
type Manager struct {
	store  usable.Store
	logger *slog.Logger
}

// NewManager returns a Manager. A nil logger falls back to slog.Default.
func NewManager(store usable.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, logger: logger.With("component", "templates")}
}

// CheckStatus resolves the artifact fragment types and classifies the
// existing fragments. The three lookups are independent reads and run
// concurrently.
func (m *Manager) CheckStatus(ctx context.Context, workspaceID string) (*Status, error) {
	var (
		types          []usable.FragmentType
		templates      []usable.Fragment
		instructionSet []usable.Fragment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		types, err = m.store.ListFragmentTypes(gctx, workspaceID)
		if err != nil {
			return fmt.Errorf("list fragment types: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		templates, err = m.listArtifacts(gctx, workspaceID, KindTemplate)
		return err
	})
	g.Go(func() error {
		var err error
		instructionSet, err = m.listArtifacts(gctx, workspaceID, KindInstructionSet)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	templateTypeID, err := resolveType(types, KindTemplate)
	if err != nil {
		return nil, err
	}
	instructionSetTypeID, err := resolveType(types, KindInstructionSet)
	if err != nil {
		return nil, err
	}

	return &Status{
		Template:       classify(KindTemplate, templateTypeID, templates),
		InstructionSet: classify(KindInstructionSet, instructionSetTypeID, instructionSet),
	}, nil
}

// Reconcile makes sure exactly one current template and one current
// instruction set exist. Stale fragments are deleted on a best-effort basis
// before a fresh one is created; current ones are reused.
func (m *Manager) Reconcile(ctx context.Context, workspaceID, cardsFragmentTypeID string) (*Result, error) {
	status, err := m.CheckStatus(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	templateID, err := m.ensure(ctx, workspaceID, status.Template, TemplateContent())
	if err != nil {
		return nil, err
	}

	content := InstructionSetContent(templateID, cardsFragmentTypeID)
	instructionSetID, err := m.ensure(ctx, workspaceID, status.InstructionSet, content)
	if err != nil {
		return nil, err
	}

	// 模板被重建后，已有的指令集里引用的是旧模板 ID
	if status.InstructionSet.State == StateCurrent && status.Template.State != StateCurrent {
		if _, err := m.store.UpdateFragment(ctx, instructionSetID, usable.FragmentPatch{Content: &content}); err != nil {
			return nil, fmt.Errorf("refresh %s %s: %w", KindInstructionSet, instructionSetID, err)
		}
		metrics.RecordProvisioning(string(KindInstructionSet), "update")
		m.logger.Info("instruction set refreshed", "fragment_id", instructionSetID, "template_id", templateID)
	}

	m.logger.Info("templates reconciled",
		"workspace_id", workspaceID,
		"template_id", templateID,
		"instruction_set_id", instructionSetID,
		"version", cards.SchemaVersion,
	)
	return &Result{TemplateID: templateID, InstructionSetID: instructionSetID}, nil
}

func (m *Manager) listArtifacts(ctx context.Context, workspaceID string, kind Kind) ([]usable.Fragment, error) {
	fragments, err := m.store.ListFragments(ctx, usable.ListParams{
		WorkspaceID: workspaceID,
		Tags:        []string{cards.AppTag, kind.Tag()},
	})
	if err != nil {
		return nil, fmt.Errorf("list %s fragments: %w", kind, err)
	}
	return fragments, nil
}

func (m *Manager) ensure(ctx context.Context, workspaceID string, st ArtifactStatus, content string) (string, error) {
	for _, id := range st.Stale {
		if err := m.store.DeleteFragment(ctx, id); err != nil {
			m.logger.Warn("failed to delete stale artifact", "kind", st.Kind, "fragment_id", id, "error", err)
			continue
		}
		metrics.RecordProvisioning(string(st.Kind), "delete")
		m.logger.Info("stale artifact deleted", "kind", st.Kind, "fragment_id", id)
	}

	if st.State == StateCurrent {
		metrics.RecordProvisioning(string(st.Kind), "reuse")
		m.logger.Debug("artifact current", "kind", st.Kind, "fragment_id", st.FragmentID)
		return st.FragmentID, nil
	}

	a := artifacts[st.Kind]
	f, err := m.store.CreateFragment(ctx, usable.CreateFragmentInput{
		WorkspaceID:    workspaceID,
		FragmentTypeID: st.TypeID,
		Title:          a.title,
		Summary:        a.summary,
		Content:        content,
		Tags:           Tags(st.Kind),
	})
	if err != nil {
		return "", fmt.Errorf("create %s: %w", st.Kind, err)
	}
	metrics.RecordProvisioning(string(st.Kind), "create")
	m.logger.Info("artifact created", "kind", st.Kind, "fragment_id", f.ID, "previous_state", st.State)
	return f.ID, nil
}

func resolveType(types []usable.FragmentType, kind Kind) (string, error) {
	want := kind.typeName()
	for _, t := range types {
		if strings.EqualFold(strings.TrimSpace(t.Name), want) {
			return t.ID, nil
		}
	}
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.Name)
	}
	return "", &TypeNotFoundError{Kind: kind, TypeName: want, Available: names}
}

// classify picks the first fragment with the right type and version as
// current. Everything else carrying the artifact tags is stale, including
// duplicates of a current fragment.
func classify(kind Kind, typeID string, fragments []usable.Fragment) ArtifactStatus {
	st := ArtifactStatus{Kind: kind, State: StateMissing, TypeID: typeID}
	for _, f := range fragments {
		if !cards.HasTag(f.Tags, cards.AppTag) || !cards.HasTag(f.Tags, kind.Tag()) {
			continue
		}
		version, _ := cards.ParseTagValue(f.Tags, cards.VersionPrefix)
		if st.FragmentID == "" && f.FragmentTypeID == typeID && version == cards.SchemaVersion {
			st.FragmentID = f.ID
			continue
		}
		st.Stale = append(st.Stale, f.ID)
	}

	switch {
	case st.FragmentID != "":
		st.State = StateCurrent
	case len(st.Stale) > 0:
		st.State = StateStale
	}
	return st
}
