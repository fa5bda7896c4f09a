package std

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-bot/pkg/media"
	"github.com/ilkoid/poncho-bot/pkg/tools"
)

// fakeDownloader отдаёт заранее созданный файл или ошибку.
type fakeDownloader struct {
	path  string
	err   error
	calls int
	links []string
}

func (f *fakeDownloader) Download(ctx context.Context, link string) (string, error) {
	f.calls++
	f.links = append(f.links, link)
	return f.path, f.err
}

// fakeTranscriber возвращает фиксированный текст или ошибку.
type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f.calls++
	return f.text, f.err
}

// fakeArchive записывает ключи загруженных артефактов.
type fakeArchive struct {
	keys []string
	err  error
}

func (f *fakeArchive) UploadFile(ctx context.Context, localPath, key string) error {
	f.keys = append(f.keys, key)
	return f.err
}

// makeAudioFile создаёт временный аудиофайл и возвращает путь.
func makeAudioFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "downloaded_audio.m4a")
	require.NoError(t, os.WriteFile(path, []byte("fake audio"), 0o644))
	return path
}

func TestTranscriptionTool_Success(t *testing.T) {
	audioPath := makeAudioFile(t)
	downloader := &fakeDownloader{path: audioPath}
	transcriber := &fakeTranscriber{text: "hello from the video"}

	tool := NewTranscriptionTool(downloader, transcriber, nil, nil)

	result, err := tool.Execute(context.Background(), `{"link":"https://youtu.be/ABC123"}`)
	require.NoError(t, err)
	assert.Equal(t, "hello from the video", result)

	// Скачивание идёт по канонической ссылке, не по сырой
	require.Len(t, downloader.links, 1)
	assert.Equal(t, "https://www.youtube.com/watch?v=ABC123", downloader.links[0])

	// Временный файл убран
	_, statErr := os.Stat(audioPath)
	assert.True(t, os.IsNotExist(statErr), "temp audio file must be removed after transcription")
}

func TestTranscriptionTool_BadArguments(t *testing.T) {
	tool := NewTranscriptionTool(&fakeDownloader{}, &fakeTranscriber{}, nil, nil)

	_, err := tool.Execute(context.Background(), `not json`)
	assert.ErrorIs(t, err, tools.ErrBadArguments)
}

func TestTranscriptionTool_InvalidLink(t *testing.T) {
	downloader := &fakeDownloader{}
	tool := NewTranscriptionTool(downloader, &fakeTranscriber{}, nil, nil)

	result, err := tool.Execute(context.Background(), `{"link":"https://vimeo.com/1"}`)
	require.NoError(t, err, "invalid link is a domain failure, not an error")

	assert.Equal(t, invalidLinkText, result)
	assert.Zero(t, downloader.calls, "no download attempt for an invalid link")
}

func TestTranscriptionTool_DownloadFailed(t *testing.T) {
	downloader := &fakeDownloader{err: media.ErrDownloadFailed}
	transcriber := &fakeTranscriber{}
	tool := NewTranscriptionTool(downloader, transcriber, nil, nil)

	result, err := tool.Execute(context.Background(), `{"link":"https://youtu.be/ABC123"}`)
	require.NoError(t, err)

	assert.Equal(t, downloadFailText, result)
	assert.Zero(t, transcriber.calls, "transcriber must not run without audio")
}

// Сбой транскрипции: текст для пользователя, временный файл всё равно убран.
func TestTranscriptionTool_TranscribeFailedCleansUp(t *testing.T) {
	audioPath := makeAudioFile(t)
	downloader := &fakeDownloader{path: audioPath}
	transcriber := &fakeTranscriber{err: media.ErrTranscription}

	tool := NewTranscriptionTool(downloader, transcriber, nil, nil)

	result, err := tool.Execute(context.Background(), `{"link":"https://youtu.be/ABC123"}`)
	require.NoError(t, err)
	assert.Equal(t, transcribeFailText, result)

	_, statErr := os.Stat(audioPath)
	assert.True(t, os.IsNotExist(statErr), "temp audio file must be removed even when transcription fails")
}

func TestTranscriptionTool_CacheHitSkipsDownload(t *testing.T) {
	cache, err := media.OpenTranscriptCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer cache.Close()
	require.NoError(t, cache.Put("ABC123", "cached transcript"))

	downloader := &fakeDownloader{}
	transcriber := &fakeTranscriber{}
	tool := NewTranscriptionTool(downloader, transcriber, cache, nil)

	result, err := tool.Execute(context.Background(), `{"link":"https://youtu.be/ABC123"}`)
	require.NoError(t, err)

	assert.Equal(t, "cached transcript", result)
	assert.Zero(t, downloader.calls)
	assert.Zero(t, transcriber.calls)
}

func TestTranscriptionTool_CachePopulatedAfterSuccess(t *testing.T) {
	cache, err := media.OpenTranscriptCache(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	downloader := &fakeDownloader{path: makeAudioFile(t)}
	tool := NewTranscriptionTool(downloader, &fakeTranscriber{text: "fresh transcript"}, cache, nil)

	_, err = tool.Execute(context.Background(), `{"link":"https://youtu.be/ABC123"}`)
	require.NoError(t, err)

	got, ok, err := cache.Get("ABC123")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fresh transcript", got)
}

// Архив best-effort: его сбой не мешает транскрипции.
func TestTranscriptionTool_ArchiveFailureIgnored(t *testing.T) {
	archive := &fakeArchive{err: assert.AnError}
	downloader := &fakeDownloader{path: makeAudioFile(t)}
	tool := NewTranscriptionTool(downloader, &fakeTranscriber{text: "ok"}, nil, archive)

	result, err := tool.Execute(context.Background(), `{"link":"https://youtu.be/ABC123"}`)
	require.NoError(t, err)

	assert.Equal(t, "ok", result)
	require.Len(t, archive.keys, 1)
	assert.Contains(t, archive.keys[0], "ABC123")
}
