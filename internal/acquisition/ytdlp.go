package acquisition

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/himanishpuri/StemForge/pkg/utils"
)

// Track is the product of acquisition: a local decoded audio file plus the
// identity derived from source metadata.
type Track struct {
	Title     string
	Path      string
	YouTubeID string
}

// EnsureTool downloads a yt-dlp binary if none is on PATH.
func EnsureTool(ctx context.Context) error {
	_, err := ytdlp.Install(ctx, nil)
	return err
}

// Downloader fetches the best audio stream of a URL as a 320kbps MP3 into a
// fixed input directory.
type Downloader struct {
	dir string
}

func NewDownloader(dir string) *Downloader {
	return &Downloader{dir: dir}
}

// Download fetches the URL's audio and returns the resulting track. The
// caller is responsible for checking that the returned path exists; yt-dlp
// has been observed to exit zero without producing a file.
func (d *Downloader) Download(ctx context.Context, url string) (*Track, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()
	}

	if err := utils.MakeDir(d.dir); err != nil {
		return nil, fmt.Errorf("creating input directory: %w", err)
	}

	cmd := ytdlp.New().
		NoPlaylist().
		NoWarnings().
		Format("bestaudio/best").
		ExtractAudio().
		AudioFormat("mp3").
		AudioQuality("320").
		PrintJSON().
		Output(filepath.Join(d.dir, "%(title)s.%(ext)s"))

	res, err := cmd.Run(ctx, url)
	if err != nil {
		if res != nil && res.Stderr != "" {
			return nil, fmt.Errorf("yt-dlp failed: %w\nstderr: %s", err, res.Stderr)
		}
		return nil, fmt.Errorf("yt-dlp failed: %w", err)
	}

	track, err := trackFromInfoJSON(d.dir, res.Stdout)
	if err != nil {
		return nil, err
	}

	if track.YouTubeID == "" {
		// The info dump should always carry an id; fall back to the URL.
		if id, err := utils.ExtractYouTubeID(url); err == nil {
			track.YouTubeID = id
		}
	}
	return track, nil
}

// videoInfo is the subset of the yt-dlp JSON info dump the pipeline needs.
type videoInfo struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Filename           string `json:"filename"`
	RequestedDownloads []struct {
		Filepath string `json:"filepath"`
	} `json:"requested_downloads"`
}

// trackFromInfoJSON parses the --print-json output into a Track. The
// reported filename is the pre-postprocessing download; the extract-audio
// step rewrites its extension to .mp3.
func trackFromInfoJSON(dir, infoJSON string) (*Track, error) {
	var info videoInfo
	if err := json.Unmarshal([]byte(strings.TrimSpace(infoJSON)), &info); err != nil {
		return nil, fmt.Errorf("parsing yt-dlp JSON: %w", err)
	}
	if strings.TrimSpace(info.Title) == "" {
		return nil, fmt.Errorf("missing title in yt-dlp output")
	}

	path := info.Filename
	for _, dl := range info.RequestedDownloads {
		if dl.Filepath != "" {
			path = dl.Filepath
			break
		}
	}
	if path == "" {
		path = filepath.Join(dir, info.Title+".mp3")
	}
	path = mp3Path(path)

	return &Track{Title: info.Title, Path: path, YouTubeID: info.ID}, nil
}

// mp3Path swaps whatever container yt-dlp downloaded for the .mp3 the
// extract-audio postprocessor leaves behind.
func mp3Path(path string) string {
	ext := filepath.Ext(path)
	if ext == "" || strings.EqualFold(ext, ".mp3") {
		return path
	}
	return strings.TrimSuffix(path, ext) + ".mp3"
}
