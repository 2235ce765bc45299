package relocate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelscribe/internal/logging"
	"reelscribe/internal/relocate"
	"reelscribe/internal/staging"
	"reelscribe/internal/testsupport"
)

func stagePost(t *testing.T, root string, provisional int, shortcode string, withThumb bool) staging.PostDir {
	t.Helper()
	dir, err := staging.NewPostDir(root, provisional, shortcode, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	testsupport.WriteMP4(t, dir.VideoPath(), 64)
	if withThumb {
		testsupport.WriteJPEG(t, dir.ThumbnailPath(), 32)
	}
	require.NoError(t, dir.WriteText(staging.Transcript, "متن"))
	require.NoError(t, dir.WriteText(staging.Caption, "caption"))
	require.NoError(t, os.MkdirAll(filepath.Join(dir.Path, "whisperx"), 0o755))
	testsupport.WriteFile(t, filepath.Join(dir.Path, "audio.wav"), 16)
	return dir
}

func TestRelocateRenamesToAssignedNumber(t *testing.T) {
	stagingRoot := t.TempDir()
	library := t.TempDir()
	dir := stagePost(t, stagingRoot, 3, "ABC", true)

	r := relocate.New(library, 2, false, logging.NewNop())
	report := r.Relocate(context.Background(), []relocate.Item{{AgentID: "agent-1", PostNumber: 4, StagingDir: dir.Path}})

	require.Empty(t, report.Errors)
	assert.Equal(t, 1, report.Posts)
	assert.Equal(t, 4, report.Files)

	postsDir := relocate.PostsDir(library, "agent-1")
	for _, name := range []string{"post_4_thumbnail.jpg", "post_4_video.mp4", "post_4_transcription.txt", "post_4_caption.txt"} {
		assert.FileExists(t, filepath.Join(postsDir, name))
	}
	assert.NoFileExists(t, filepath.Join(postsDir, "post_4_audio.wav"))
	assert.NoFileExists(t, dir.VideoPath(), "move mode should drain staging")
}

func TestRelocateSkipsMissingArtifacts(t *testing.T) {
	library := t.TempDir()
	dir := stagePost(t, t.TempDir(), 1, "NOTHUMB", false)

	r := relocate.New(library, 1, true, logging.NewNop())
	report := r.Relocate(context.Background(), []relocate.Item{{AgentID: "a", PostNumber: 1, StagingDir: dir.Path}})

	require.Empty(t, report.Errors)
	assert.Equal(t, 3, report.Files)
	assert.NoFileExists(t, filepath.Join(relocate.PostsDir(library, "a"), "post_1_thumbnail.jpg"))
	assert.FileExists(t, dir.VideoPath(), "copy mode keeps staging")
}

func TestRelocateCollectsErrors(t *testing.T) {
	library := t.TempDir()
	good := stagePost(t, t.TempDir(), 1, "GOOD", true)

	r := relocate.New(library, 4, false, logging.NewNop())
	report := r.Relocate(context.Background(), []relocate.Item{
		{AgentID: "a", PostNumber: 2, StagingDir: filepath.Join(t.TempDir(), "missing")},
		{AgentID: "a", PostNumber: 1, StagingDir: good.Path},
	})

	require.Len(t, report.Errors, 1)
	assert.Equal(t, 2, report.Errors[0].PostNumber)
	assert.Equal(t, 1, report.Posts)
}

func TestRelocateProfilePicture(t *testing.T) {
	library := t.TempDir()
	src := filepath.Join(t.TempDir(), "profile.jpg")
	testsupport.WriteJPEG(t, src, 64)

	r := relocate.New(library, 1, false, logging.NewNop())
	dest, err := r.RelocateProfilePicture("a", src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(library, "agents", "a", "profile", relocate.ProfilePictureName), dest)
	assert.FileExists(t, dest)

	dest, err = r.RelocateProfilePicture("a", filepath.Join(t.TempDir(), "absent.jpg"))
	require.NoError(t, err)
	assert.Empty(t, dest)
}

func TestTargetName(t *testing.T) {
	cases := map[string]string{
		"post_3_thumbnail.jpg":       "post_7_thumbnail.jpg",
		"post_3_video.mp4":           "post_7_video.mp4",
		"transcription_original.txt": "post_7_transcription_original.txt",
	}
	for in, want := range cases {
		got, ok := relocate.TargetName(in, 7)
		require.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := relocate.TargetName("audio.wav", 7)
	assert.False(t, ok)
}
