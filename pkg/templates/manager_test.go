package templates

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/houzhh15/taskable/pkg/cards"
	"github.com/houzhh15/taskable/pkg/usable"
	"github.com/houzhh15/taskable/pkg/usable/usabletest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	workspaceID          = "ws-1"
	templateTypeID       = "type-template"
	instructionSetTypeID = "type-instruction"
	cardsTypeID          = "type-cards"
)

func newStore() *usabletest.Store {
	return usabletest.New(
		usable.FragmentType{ID: cardsTypeID, Name: "Cards"},
		usable.FragmentType{ID: templateTypeID, Name: "Template"},
		usable.FragmentType{ID: instructionSetTypeID, Name: "Instruction Set"},
	)
}

func artifactFragment(id string, kind Kind, typeID, version string) usable.Fragment {
	return usable.Fragment{
		ID:             id,
		WorkspaceID:    workspaceID,
		FragmentTypeID: typeID,
		Title:          string(kind),
		Tags:           []string{cards.AppTag, kind.Tag(), cards.VersionPrefix + ":" + version},
	}
}

func fragmentsWithTag(store *usabletest.Store, tag string) []usable.Fragment {
	var out []usable.Fragment
	for _, f := range store.Fragments() {
		if cards.HasTag(f.Tags, tag) {
			out = append(out, f)
		}
	}
	return out
}

func TestReconcile_CreatesMissingArtifacts(t *testing.T) {
	store := newStore()
	m := NewManager(store, nil)

	result, err := m.Reconcile(context.Background(), workspaceID, cardsTypeID)
	require.NoError(t, err)

	templates := fragmentsWithTag(store, KindTemplate.Tag())
	require.Len(t, templates, 1)
	assert.Equal(t, templates[0].ID, result.TemplateID)
	assert.Equal(t, templateTypeID, templates[0].FragmentTypeID)
	version, ok := cards.ParseTagValue(templates[0].Tags, cards.VersionPrefix)
	require.True(t, ok)
	assert.Equal(t, cards.SchemaVersion, version)

	instructions := fragmentsWithTag(store, KindInstructionSet.Tag())
	require.Len(t, instructions, 1)
	assert.Equal(t, instructions[0].ID, result.InstructionSetID)
	assert.Equal(t, instructionSetTypeID, instructions[0].FragmentTypeID)
	assert.Contains(t, instructions[0].Content, result.TemplateID)
	assert.Contains(t, instructions[0].Content, cardsTypeID)

	calls := store.Calls()
	assert.Equal(t, 2, calls.Create)
	assert.Equal(t, 0, calls.Delete)
	assert.Equal(t, 0, calls.Update)
}

func TestReconcile_ReplacesStaleTemplate(t *testing.T) {
	store := newStore()
	store.Seed(artifactFragment("old-template", KindTemplate, templateTypeID, "1.0.0"))
	m := NewManager(store, nil)

	result, err := m.Reconcile(context.Background(), workspaceID, cardsTypeID)
	require.NoError(t, err)

	assert.NotEqual(t, "old-template", result.TemplateID)
	_, exists := store.Get("old-template")
	assert.False(t, exists, "stale template should be deleted")

	templates := fragmentsWithTag(store, KindTemplate.Tag())
	require.Len(t, templates, 1)
	assert.Equal(t, result.TemplateID, templates[0].ID)
	assert.Contains(t, templates[0].Tags, "version:"+cards.SchemaVersion)
}

func TestReconcile_WrongFragmentTypeIsStale(t *testing.T) {
	store := newStore()
	store.Seed(artifactFragment("misplaced", KindTemplate, cardsTypeID, cards.SchemaVersion))
	m := NewManager(store, nil)

	result, err := m.Reconcile(context.Background(), workspaceID, "")
	require.NoError(t, err)

	assert.NotEqual(t, "misplaced", result.TemplateID)
	created, ok := store.Get(result.TemplateID)
	require.True(t, ok)
	assert.Equal(t, templateTypeID, created.FragmentTypeID)
}

func TestReconcile_CurrentArtifactsAreReused(t *testing.T) {
	store := newStore()
	tmpl := artifactFragment("tmpl-1", KindTemplate, templateTypeID, cards.SchemaVersion)
	instr := artifactFragment("instr-1", KindInstructionSet, instructionSetTypeID, cards.SchemaVersion)
	instr.Content = InstructionSetContent("tmpl-1", cardsTypeID)
	store.Seed(tmpl, instr)
	m := NewManager(store, nil)

	result, err := m.Reconcile(context.Background(), workspaceID, cardsTypeID)
	require.NoError(t, err)

	assert.Equal(t, &Result{TemplateID: "tmpl-1", InstructionSetID: "instr-1"}, result)
	assert.Zero(t, store.Calls().Writes())
}

func TestReconcile_RefreshesInstructionSetWhenTemplateRecreated(t *testing.T) {
	store := newStore()
	instr := artifactFragment("instr-1", KindInstructionSet, instructionSetTypeID, cards.SchemaVersion)
	instr.Content = InstructionSetContent("gone", cardsTypeID)
	store.Seed(instr)
	m := NewManager(store, nil)

	result, err := m.Reconcile(context.Background(), workspaceID, cardsTypeID)
	require.NoError(t, err)

	assert.Equal(t, "instr-1", result.InstructionSetID)
	updated, ok := store.Get("instr-1")
	require.True(t, ok)
	assert.Contains(t, updated.Content, result.TemplateID)
	assert.NotContains(t, updated.Content, "`gone`")
	assert.Equal(t, 1, store.Calls().Update)
}

func TestReconcile_RemovesDuplicates(t *testing.T) {
	store := newStore()
	store.Seed(
		artifactFragment("tmpl-1", KindTemplate, templateTypeID, cards.SchemaVersion),
		artifactFragment("tmpl-2", KindTemplate, templateTypeID, cards.SchemaVersion),
	)
	m := NewManager(store, nil)

	result, err := m.Reconcile(context.Background(), workspaceID, cardsTypeID)
	require.NoError(t, err)

	assert.Equal(t, "tmpl-1", result.TemplateID)
	assert.Len(t, fragmentsWithTag(store, KindTemplate.Tag()), 1)
}

func TestReconcile_DeleteFailureDoesNotAbort(t *testing.T) {
	store := newStore()
	store.Seed(artifactFragment("old-template", KindTemplate, templateTypeID, "1.0.0"))
	store.DeleteErr = errors.New("boom")
	m := NewManager(store, nil)

	result, err := m.Reconcile(context.Background(), workspaceID, cardsTypeID)
	require.NoError(t, err)
	assert.NotEqual(t, "old-template", result.TemplateID)
}

func TestReconcile_MissingFragmentType(t *testing.T) {
	store := usabletest.New(
		usable.FragmentType{ID: cardsTypeID, Name: "Cards"},
		usable.FragmentType{ID: templateTypeID, Name: "template"},
	)
	m := NewManager(store, nil)

	result, err := m.Reconcile(context.Background(), workspaceID, cardsTypeID)
	require.Error(t, err)
	assert.Nil(t, result)

	var typeErr *TypeNotFoundError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, KindInstructionSet, typeErr.Kind)
	assert.Equal(t, []string{"Cards", "template"}, typeErr.Available)
	assert.Contains(t, err.Error(), "Available types: Cards, template")
	assert.Zero(t, store.Calls().Writes())
}

func TestReconcile_CreateFailureReturnsError(t *testing.T) {
	store := newStore()
	store.CreateErr = map[string]error{instructionSetTypeID: &usable.APIError{StatusCode: 500, Message: "down"}}
	m := NewManager(store, nil)

	_, err := m.Reconcile(context.Background(), workspaceID, cardsTypeID)
	require.Error(t, err)
	assert.Equal(t, 500, usable.StatusCode(err))

	// the template survives and is reused on the next run
	store.CreateErr = nil
	result, err := m.Reconcile(context.Background(), workspaceID, cardsTypeID)
	require.NoError(t, err)
	assert.Len(t, fragmentsWithTag(store, KindTemplate.Tag()), 1)
	assert.NotEmpty(t, result.InstructionSetID)
}

func TestCheckStatus(t *testing.T) {
	store := newStore()
	store.Seed(
		artifactFragment("tmpl-1", KindTemplate, templateTypeID, cards.SchemaVersion),
		artifactFragment("instr-old", KindInstructionSet, instructionSetTypeID, "1.0.0"),
	)
	m := NewManager(store, nil)

	status, err := m.CheckStatus(context.Background(), workspaceID)
	require.NoError(t, err)

	assert.Equal(t, ArtifactStatus{
		Kind:       KindTemplate,
		State:      StateCurrent,
		TypeID:     templateTypeID,
		FragmentID: "tmpl-1",
	}, status.Template)
	assert.Equal(t, ArtifactStatus{
		Kind:   KindInstructionSet,
		State:  StateStale,
		TypeID: instructionSetTypeID,
		Stale:  []string{"instr-old"},
	}, status.InstructionSet)
	assert.False(t, status.Current())
	assert.Zero(t, store.Calls().Writes())
}

func TestCheckStatus_StoreError(t *testing.T) {
	store := newStore()
	store.Err = &usable.APIError{StatusCode: 401, Message: "expired"}
	m := NewManager(store, nil)

	_, err := m.CheckStatus(context.Background(), workspaceID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, usable.ErrUnauthorized))
}
