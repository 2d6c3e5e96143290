package source

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/bmharper/cimg/v2"
	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
)

func writeTestImage(t *testing.T, path string, width, height int) {
	img := cimg.NewImage(width, height, cimg.PixelFormatRGB)
	require.NoError(t, img.WriteJPEG(path, cimg.MakeCompressParams(cimg.Sampling444, 95, 0), 0644))
}

func TestIsImageFile(t *testing.T) {
	require.True(t, IsImageFile("photo.jpg"))
	require.True(t, IsImageFile("PHOTO.JPG"))
	require.True(t, IsImageFile("photo.jpeg"))
	require.True(t, IsImageFile("photo.png"))
	require.True(t, IsImageFile("photo.webp"))
	require.False(t, IsImageFile("clip.mp4"))
	require.False(t, IsImageFile("notes.txt"))
	require.False(t, IsImageFile("photo"))
}

func TestImageSource(t *testing.T) {
	logger := logs.NewTestingLog(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "one.jpg")
	writeTestImage(t, path, 32, 24)

	src, err := Open(logger, Spec{Mode: ModeImage, Path: path})
	require.NoError(t, err)
	defer src.Close()
	require.Equal(t, 1, src.Total())

	frame, err := src.Next()
	require.NoError(t, err)
	require.Equal(t, 0, frame.Index)
	require.Equal(t, path, frame.Path)
	require.Equal(t, 32, frame.Image.Width)
	require.Equal(t, 24, frame.Image.Height)

	_, err = src.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestImageSourceOpenFailure(t *testing.T) {
	logger := logs.NewTestingLog(t)
	_, err := Open(logger, Spec{Mode: ModeImage, Path: "no-such-file.jpg"})
	require.ErrorIs(t, err, ErrSourceOpen)
}

func TestFolderSourceIsSortedAndRecursive(t *testing.T) {
	logger := logs.NewTestingLog(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	writeTestImage(t, filepath.Join(dir, "b.jpg"), 8, 8)
	writeTestImage(t, filepath.Join(dir, "a.jpg"), 8, 8)
	writeTestImage(t, filepath.Join(dir, "sub", "c.jpg"), 8, 8)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0644))

	src, err := Open(logger, Spec{Mode: ModeFolder, Path: dir})
	require.NoError(t, err)
	defer src.Close()
	require.Equal(t, 3, src.Total())

	want := []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "sub", "c.jpg"),
	}
	for i, path := range want {
		frame, err := src.Next()
		require.NoError(t, err)
		require.Equal(t, i, frame.Index)
		require.Equal(t, path, frame.Path)
	}
	_, err = src.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestFolderSourceRejectsEmptyFolder(t *testing.T) {
	logger := logs.NewTestingLog(t)
	_, err := Open(logger, Spec{Mode: ModeFolder, Path: t.TempDir()})
	require.ErrorIs(t, err, ErrSourceOpen)
}

func TestFolderSourceRejectsFile(t *testing.T) {
	logger := logs.NewTestingLog(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "one.jpg")
	writeTestImage(t, path, 8, 8)
	_, err := Open(logger, Spec{Mode: ModeFolder, Path: path})
	require.ErrorIs(t, err, ErrSourceOpen)
}

func TestFolderSourceDecodeFailureIsFatal(t *testing.T) {
	logger := logs.NewTestingLog(t)
	dir := t.TempDir()
	writeTestImage(t, filepath.Join(dir, "a.jpg"), 8, 8)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.jpg"), []byte("not an image"), 0644))

	src, err := Open(logger, Spec{Mode: ModeFolder, Path: dir})
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Next()
	require.NoError(t, err)
	_, err = src.Next()
	require.Error(t, err)
	require.NotErrorIs(t, err, io.EOF)
}

func TestSpecString(t *testing.T) {
	require.Equal(t, "image:x.jpg", Spec{Mode: ModeImage, Path: "x.jpg"}.String())
	require.Equal(t, "camera:2", Spec{Mode: ModeCamera, Camera: 2}.String())
}
