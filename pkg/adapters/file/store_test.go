package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/waymark-ai/waymark/pkg/adapters/file"
	"github.com/waymark-ai/waymark/pkg/domain"
	"github.com/waymark-ai/waymark/pkg/ports/tests"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	tests.RunStoreContract(t, store)
}

func TestFileStore_CorruptRecordBehavesLikeAbsent(t *testing.T) {
	base := t.TempDir()
	store := file.New(base)
	ctx := context.Background()

	state := domain.NewWorkflowState("p1")
	state.CurrentNode = "1.1"
	require.NoError(t, store.SaveState(ctx, state))

	// Truncate the record mid-write.
	path := filepath.Join(base, "p1", "workflow-state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"project_id": "p1", "curr`), 0644))

	_, err := store.LoadState(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrStateNotFound)
}

func TestFileStore_PredictableLayout(t *testing.T) {
	base := t.TempDir()
	store := file.New(base)
	ctx := context.Background()

	require.NoError(t, store.SaveState(ctx, domain.NewWorkflowState("p1")))
	require.NoError(t, store.SaveIntent(ctx, domain.NewWorkflowIntent("p1", "go")))

	assert.FileExists(t, filepath.Join(base, "p1", "workflow-state.json"))
	assert.FileExists(t, filepath.Join(base, "p1", "workflow-intent.json"))

	projects, err := store.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, projects)
}

func TestFileStore_DefaultBasePath(t *testing.T) {
	store := file.New("")
	assert.Equal(t, filepath.Join(".waymark", "projects"), store.BasePath)
}
