// TEST TYPE: Unit Test
// DEPENDENCIES: FakeVCS
// PURPOSE: Test allow-list resolution from history

package history_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/deftsilo/pkg/errors"
	"github.com/arthur-debert/deftsilo/pkg/history"
	"github.com/arthur-debert/deftsilo/pkg/testutil"
)

const exampleHash = "b6668cf8c46c7075e18215d922e7812ca082fa6cc34668d00a6c20aee4551fb6"

func TestResolver_ExampleScenario(t *testing.T) {
	vcs := testutil.NewFakeVCS()
	vcs.AddHistory("a_file", "this is a test file\n")

	hashes, err := history.NewResolver(vcs).Hashes(context.Background(), "a_file")
	require.NoError(t, err)
	assert.Equal(t, []string{exampleHash}, hashes)
}

func TestResolver_OrderAndDuplicates(t *testing.T) {
	vcs := testutil.NewFakeVCS()
	vcs.AddHistory("f", "v3\n", "v2\n", "v3\n", "v1\n")

	hashes, err := history.NewResolver(vcs).Hashes(context.Background(), "f")
	require.NoError(t, err)

	assert.Equal(t, []string{
		testutil.GetTestChecksum("v3\n"),
		testutil.GetTestChecksum("v2\n"),
		testutil.GetTestChecksum("v3\n"),
		testutil.GetTestChecksum("v1\n"),
	}, hashes)
}

func TestResolver_SkipsDeletions(t *testing.T) {
	vcs := testutil.NewFakeVCS()
	vcs.AddHistory("f", "readded\n")
	vcs.AddDeletion("f")
	vcs.AddHistory("f", "original\n")
	vcs.AddRevision("f", "0000000000000000000000000000000000000000000000000000000000000000")

	hashes, err := history.NewResolver(vcs).Hashes(context.Background(), "f")
	require.NoError(t, err)
	assert.Equal(t, []string{
		testutil.GetTestChecksum("readded\n"),
		testutil.GetTestChecksum("original\n"),
	}, hashes)
}

func TestResolver_NoHistory(t *testing.T) {
	hashes, err := history.NewResolver(testutil.NewFakeVCS()).Hashes(context.Background(), "untracked")
	require.NoError(t, err)
	assert.Empty(t, hashes)
}

func TestResolver_MemoisesBlobs(t *testing.T) {
	vcs := testutil.NewFakeVCS()
	refs := vcs.AddHistory("a", "shared\n")
	vcs.AddHistory("b", "shared\n", "shared\n")

	r := history.NewResolver(vcs)
	_, err := r.Hashes(context.Background(), "a")
	require.NoError(t, err)
	_, err = r.Hashes(context.Background(), "b")
	require.NoError(t, err)

	assert.Equal(t, 1, vcs.Fetches(refs[0]))
}

func TestResolver_Errors(t *testing.T) {
	t.Run("list failure", func(t *testing.T) {
		vcs := testutil.NewFakeVCS()
		vcs.FailOn("f", stderrors.New("exit status 128"))

		_, err := history.NewResolver(vcs).Hashes(context.Background(), "f")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSubprocess))
		assert.Equal(t, "f", errors.GetErrorDetails(err)[errors.DetailPath])
	})

	t.Run("fetch failure", func(t *testing.T) {
		vcs := testutil.NewFakeVCS()
		vcs.AddRevision("f", "1234567890abcdef1234567890abcdef12345678")

		_, err := history.NewResolver(vcs).Hashes(context.Background(), "f")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSubprocess))
	})

	t.Run("cancelled", func(t *testing.T) {
		vcs := testutil.NewFakeVCS()
		vcs.AddHistory("f", "x")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := history.NewResolver(vcs).Hashes(ctx, "f")
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, context.Canceled))
	})
}

func TestIsZeroID(t *testing.T) {
	assert.True(t, history.IsZeroID(testutil.ZeroObjectID))
	assert.True(t, history.IsZeroID("0000000000000000000000000000000000000000000000000000000000000000"))
	assert.False(t, history.IsZeroID(""))
	assert.False(t, history.IsZeroID("0000000000000000000000000000000000000001"))
}
