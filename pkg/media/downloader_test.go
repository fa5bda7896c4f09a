package media

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner проигрывает заданную последовательность результатов
// и записывает каждую выполненную команду.
type fakeRunner struct {
	results []error
	calls   [][]string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	f.calls = append(f.calls, append([]string{name}, args...))

	if len(f.results) == 0 {
		return nil
	}
	err := f.results[0]
	f.results = f.results[1:]
	return err
}

func TestDownloader_Success(t *testing.T) {
	runner := &fakeRunner{}
	d := NewDownloader(DownloaderConfig{}, runner)

	path, err := d.Download(context.Background(), "https://www.youtube.com/watch?v=ABC123")
	require.NoError(t, err)

	assert.Equal(t, "downloaded_audio.m4a", path)
	require.Len(t, runner.calls, 1)
	assert.Equal(t,
		[]string{"yt-dlp", "https://www.youtube.com/watch?v=ABC123", "--format", "m4a", "-o", "downloaded_audio.m4a"},
		runner.calls[0])
}

func TestDownloader_RetryThenSuccess(t *testing.T) {
	runner := &fakeRunner{results: []error{errors.New("network"), nil}}
	d := NewDownloader(DownloaderConfig{Attempts: 3}, runner)

	path, err := d.Download(context.Background(), "link")
	require.NoError(t, err)
	assert.Equal(t, "downloaded_audio.m4a", path)
	assert.Len(t, runner.calls, 2)
}

func TestDownloader_AllAttemptsFail(t *testing.T) {
	runner := &fakeRunner{results: []error{
		errors.New("fail 1"), errors.New("fail 2"), errors.New("fail 3"),
	}}
	d := NewDownloader(DownloaderConfig{Attempts: 3}, runner)

	_, err := d.Download(context.Background(), "link")
	assert.ErrorIs(t, err, ErrDownloadFailed)
	assert.Len(t, runner.calls, 3)
}

// SelfUpdate: хук `-U` вызывается после каждой неудачной попытки,
// за которой последует ещё одна — но не после последней.
func TestDownloader_SelfUpdateBetweenAttempts(t *testing.T) {
	runner := &fakeRunner{results: []error{
		errors.New("fail 1"), // download #1
		nil,                  // yt-dlp -U
		errors.New("fail 2"), // download #2
		nil,                  // yt-dlp -U
		errors.New("fail 3"), // download #3, последняя — без хука
	}}
	d := NewDownloader(DownloaderConfig{Attempts: 3, SelfUpdate: true}, runner)

	_, err := d.Download(context.Background(), "link")
	assert.ErrorIs(t, err, ErrDownloadFailed)

	require.Len(t, runner.calls, 5)
	assert.Equal(t, []string{"yt-dlp", "-U"}, runner.calls[1])
	assert.Equal(t, []string{"yt-dlp", "-U"}, runner.calls[3])
	// Последняя запись — попытка скачивания, не обновление
	assert.Contains(t, runner.calls[4], "--format")
}

// Ошибка самого хука не прерывает цикл повторов.
func TestDownloader_SelfUpdateFailureIgnored(t *testing.T) {
	runner := &fakeRunner{results: []error{
		errors.New("fail 1"),  // download #1
		errors.New("no pip"),  // yt-dlp -U падает
		nil,                   // download #2 успешен
	}}
	d := NewDownloader(DownloaderConfig{Attempts: 3, SelfUpdate: true}, runner)

	path, err := d.Download(context.Background(), "link")
	require.NoError(t, err)
	assert.Equal(t, "downloaded_audio.m4a", path)
}

func TestDownloader_ConfigDefaults(t *testing.T) {
	runner := &fakeRunner{results: []error{errors.New("f1"), errors.New("f2"), errors.New("f3")}}
	d := NewDownloader(DownloaderConfig{}, runner)

	_, err := d.Download(context.Background(), "link")
	assert.ErrorIs(t, err, ErrDownloadFailed)
	assert.Len(t, runner.calls, 3, "default attempts must be 3")
}
