package sources

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/anatolykoptev/go_podcast/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner answers yt-dlp invocations from canned output keyed on the first argument.
type fakeRunner struct {
	outputs map[string]string
	errs    map[string]error
	onRun   func(args []string)
	calls   [][]string
}

func (f *fakeRunner) Run(_ context.Context, _ string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, args)
	if f.onRun != nil {
		f.onRun(args)
	}
	key := args[0]
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return []byte(f.outputs[key]), nil
}

func TestIsYouTubeURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=abc123def45", true},
		{"http://youtube.com/watch?v=x", true},
		{"https://youtu.be/abc123def45", true},
		{"youtube.com/watch?v=x", true},
		{"https://m.youtube.com/watch?v=x", false},
		{"https://notyoutube.com/watch", false},
		{"https://feeds.megaphone.fm/hubermanlab", false},
		{"lex fridman podcast", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, IsYouTubeURL(tt.url))
		})
	}
}

func TestYouTube_Search(t *testing.T) {
	runner := &fakeRunner{outputs: map[string]string{
		"ytsearch3:lex fridman": `{"entries":[
			{"id":"aaaaaaaaaaa","title":"Full Episode","uploader":"Lex Fridman","upload_date":"20241201","duration":7200.0,"url":"https://www.youtube.com/watch?v=aaaaaaaaaaa"},
			{"id":"bbbbbbbbbbb","channel":"Clips Channel","duration":null},
			{"title":"no id, skipped"}
		]}`,
	}}
	yt := NewYouTube(runner, "yt-dlp", t.TempDir())

	videos, err := yt.Search(context.Background(), "lex fridman", 3)
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, engine.VideoInfo{
		ID: "aaaaaaaaaaa", Title: "Full Episode", Uploader: "Lex Fridman",
		UploadDate: "2024-12-01", Duration: 7200, URL: "https://www.youtube.com/watch?v=aaaaaaaaaaa",
	}, videos[0])

	assert.Equal(t, "Unknown Title", videos[1].Title)
	assert.Equal(t, "Clips Channel", videos[1].Uploader, "uploader falls back to channel")
	assert.Equal(t, 0, videos[1].Duration)
	assert.Equal(t, "https://www.youtube.com/watch?v=bbbbbbbbbbb", videos[1].URL)

	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "--flat-playlist")
}

func TestYouTube_SearchError(t *testing.T) {
	runner := &fakeRunner{errs: map[string]error{"ytsearch5:x": errors.New("exit status 1")}}
	_, err := NewYouTube(runner, "", t.TempDir()).Search(context.Background(), "x", 0)
	assert.Error(t, err)
}

func TestYouTube_DownloadAudio(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "temp")
	const videoURL = "https://www.youtube.com/watch?v=ccccccccccc"

	runner := &fakeRunner{
		outputs: map[string]string{
			videoURL: `{"id":"ccccccccccc","title":"Talk","uploader":"Host","upload_date":"20240102","duration":1800,"webpage_url":"` + videoURL + `"}`,
		},
	}
	runner.onRun = func(args []string) {
		for i, a := range args {
			if a == "-o" {
				out := strings.Replace(args[i+1], "%(ext)s", "mp3", 1)
				require.NoError(t, os.WriteFile(out, []byte("mp3"), 0o644))
			}
		}
	}

	path, info, err := NewYouTube(runner, "yt-dlp", tmp).DownloadAudio(context.Background(), videoURL)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, "ccccccccccc.mp3"), path)
	assert.Equal(t, "2024-01-02", info.UploadDate)
	assert.Equal(t, "Host", info.Uploader)
	assert.Len(t, runner.calls, 2, "metadata fetch then extraction")
}

func TestYouTube_DownloadAudioFailure(t *testing.T) {
	const videoURL = "https://youtu.be/blocked0000"
	runner := &fakeRunner{errs: map[string]error{videoURL: errors.New("Video unavailable")}}

	_, _, err := NewYouTube(runner, "yt-dlp", t.TempDir()).DownloadAudio(context.Background(), videoURL)
	var de *engine.DownloadError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, videoURL, de.URL)
}

func TestYouTube_DownloadAudioMissingOutput(t *testing.T) {
	const videoURL = "https://youtu.be/ddddddddddd"
	runner := &fakeRunner{outputs: map[string]string{videoURL: `{"id":"ddddddddddd","title":"T"}`}}

	_, _, err := NewYouTube(runner, "yt-dlp", t.TempDir()).DownloadAudio(context.Background(), videoURL)
	var de *engine.DownloadError
	assert.True(t, errors.As(err, &de))
}

func TestFormatUploadDate(t *testing.T) {
	assert.Equal(t, "2024-12-14", formatUploadDate("20241214"))
	assert.Equal(t, "", formatUploadDate(""))
	assert.Equal(t, "2024-12", formatUploadDate("2024-12"))
}

func TestExecRunner_StderrTruncatedOnRuneBoundary(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	script := `printf 'a'; i=0; while [ $i -lt 600 ]; do printf 'ж' >&2; i=$((i+1)); done; exit 3`
	_, err := ExecRunner{}.Run(context.Background(), "sh", "-c", script)
	require.Error(t, err)

	msg := err.Error()
	assert.True(t, utf8.ValidString(msg), "stderr cut mid-rune")
	assert.True(t, strings.HasPrefix(msg, "sh: exit status 3: ж"), "got %q", msg)
	assert.True(t, strings.HasSuffix(msg, "..."))
}
