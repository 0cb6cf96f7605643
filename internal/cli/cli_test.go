package cli

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab-devtools/internal/types"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	expected := []string{"release", "update-pins", "pipeline", "dav"}
	for _, name := range expected {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestReleaseCommandFlags(t *testing.T) {
	cmd := newReleaseCommand()
	flags := []string{"project", "tag", "bump", "comments", "profile", "dry-run"}
	for _, name := range flags {
		flag := cmd.Flags().Lookup(name)
		assert.NotNil(t, flag, "missing flag: %s", name)
	}
}

func TestUpdatePinsCommandFlags(t *testing.T) {
	cmd := newUpdatePinsCommand()
	flags := []string{"manifest", "profile", "output", "dry-run"}
	for _, name := range flags {
		flag := cmd.Flags().Lookup(name)
		assert.NotNil(t, flag, "missing flag: %s", name)
	}
}

func TestDavCommandTree(t *testing.T) {
	cmd := newDavCommand()
	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, name := range []string{"list", "makedirs", "rmtree", "upload"} {
		assert.Contains(t, names, name, "missing dav subcommand: %s", name)
	}
	assert.NotNil(t, cmd.PersistentFlags().Lookup("private"))
}

func TestPipelineCommandTree(t *testing.T) {
	cmd := newPipelineCommand()
	require.Len(t, cmd.Commands(), 1)
	assert.Equal(t, "wait", cmd.Commands()[0].Name())
}

// ---------- Helper function tests ----------

func TestParseBump(t *testing.T) {
	tests := []struct {
		value string
		want  types.Bump
	}{
		{"major", types.BumpMajor},
		{"minor", types.BumpMinor},
		{"patch", types.BumpPatch},
		{"", types.BumpPatch},
	}
	for _, tt := range tests {
		got, err := parseBump(tt.value)
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.want, got)
	}

	_, err := parseBump("huge")
	require.Error(t, err)
}

func TestResolveString(t *testing.T) {
	got := resolveString(nil, "explicit", "test_key", "test-flag")
	assert.Equal(t, "explicit", got)

	got = resolveString(nil, "", "test_key", "test-flag")
	assert.Equal(t, "", got)
}

func TestResolveBool(t *testing.T) {
	assert.True(t, resolveBool(nil, true, "test_key", "test-flag"))
	assert.False(t, resolveBool(nil, false, "test_key", "test-flag"))
}

func TestFlagChanged(t *testing.T) {
	assert.False(t, flagChanged(nil, "anything"), "nil cmd should return false")
	assert.False(t, flagChanged(nil, ""), "nil cmd with empty name")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	assert.False(t, flagChanged(cmd, "myflag"), "unchanged flag")
	assert.False(t, flagChanged(cmd, "nonexistent"), "nonexistent flag")

	require.NoError(t, cmd.Flags().Set("myflag", "val"))
	assert.True(t, flagChanged(cmd, "myflag"))
}

// ---------- Exit code tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name: "invalid argument",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("bad input"),
			expected: 2,
		},
		{
			name: "duplicate pin",
			err: errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg(`duplicate pin for "pkg-a" in constraint table`),
			expected: 2,
		},
		{
			name: "incompatible pin",
			err: errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(`incompatible pin for "pkg-a": existing "==2.0" vs desired "==1.2.3"`),
			expected: 3,
		},
		{
			name: "pipeline failure",
			err: errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg(`pipeline 7 of project "group/sample" ended with status "failed"`),
			expected: 4,
		},
		{
			name: "permission denied",
			err: errbuilder.New().
				WithCode(errbuilder.CodePermissionDenied).
				WithMsg("nope"),
			expected: 3,
		},
		{
			name: "not found",
			err: errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("resource missing"),
			expected: 4,
		},
		{
			name: "wait deadline",
			err: errbuilder.New().
				WithCode(errbuilder.CodeDeadlineExceeded).
				WithMsg("still running"),
			expected: 4,
		},
		{
			name: "internal error",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("boom"),
			expected: 5,
		},
		{
			name:     "unknown error",
			err:      assert.AnError,
			expected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exitCodeForError(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("something broke")
	assert.Equal(t, "something broke", errorMessage(err))
	assert.Equal(t, assert.AnError.Error(), errorMessage(assert.AnError))
}
