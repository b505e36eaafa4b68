// Package pipeline drives one URL end to end:
// acquire -> analyze -> name -> separate -> persist.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	goaudio "github.com/go-audio/audio"

	"github.com/himanishpuri/StemForge/internal/acquisition"
	"github.com/himanishpuri/StemForge/internal/analysis"
	"github.com/himanishpuri/StemForge/internal/audio"
	"github.com/himanishpuri/StemForge/internal/render"
	"github.com/himanishpuri/StemForge/internal/separation"
	"github.com/himanishpuri/StemForge/pkg/logger"
	"github.com/himanishpuri/StemForge/pkg/utils"
)

// State names the stage a run is in when its outcome is produced.
type State int

const (
	StateAcquiring State = iota
	StateAnalyzing
	StateNaming
	StateSeparating
	StatePersisting
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateAcquiring:
		return "acquiring"
	case StateAnalyzing:
		return "analyzing"
	case StateNaming:
		return "naming"
	case StateSeparating:
		return "separating"
	case StatePersisting:
		return "persisting"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Outcome is the per-URL result handed back to the interactive loop.
type Outcome struct {
	State       State
	Title       string
	KeyLabel    string
	BPM         float64
	OutputDir   string
	Stems       []string // stems written to disk
	FailedStems []string // stems whose write failed
	Spectrogram string   // path of the rendered PNG, empty if skipped or failed
	Message     string   // operator-facing note for aborted runs
}

// Collaborator capabilities, injected so tests can substitute fakes.

type Downloader interface {
	Download(ctx context.Context, url string) (*acquisition.Track, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, path string) (analysis.Result, error)
}

type Separator interface {
	Separate(ctx context.Context, path string) (map[string]*goaudio.IntBuffer, int, error)
}

// Renderer draws the spectrogram artifact that sits next to a track's stems.
type Renderer interface {
	RenderSpectrogram(ctx context.Context, audioPath, outPath string) error
}

// Catalog records completed runs. Failures here are logged, never fatal.
type Catalog interface {
	RegisterTrack(title, youtubeID, keyLabel string, bpm float64, outputDir string) (string, error)
	StoreStems(trackID string, stems map[string]string) error
}

type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Config holds the pipeline's collaborators and directory roots.
type Config struct {
	InputDir      string
	OutputDir     string
	Downloader    Downloader
	Analyzer      Analyzer
	Separator     Separator
	Renderer      Renderer
	Catalog       Catalog
	Logger        Logger
	NoSpectrogram bool
}

type Option func(*Config)

func WithInputDir(dir string) Option {
	return func(c *Config) { c.InputDir = dir }
}

func WithOutputDir(dir string) Option {
	return func(c *Config) { c.OutputDir = dir }
}

func WithDownloader(d Downloader) Option {
	return func(c *Config) { c.Downloader = d }
}

func WithAnalyzer(a Analyzer) Option {
	return func(c *Config) { c.Analyzer = a }
}

func WithSeparator(s Separator) Option {
	return func(c *Config) { c.Separator = s }
}

func WithRenderer(r Renderer) Option {
	return func(c *Config) { c.Renderer = r }
}

// WithoutSpectrogram disables the per-track spectrogram.png artifact.
func WithoutSpectrogram() Option {
	return func(c *Config) { c.NoSpectrogram = true }
}

func WithCatalog(cat Catalog) Option {
	return func(c *Config) { c.Catalog = cat }
}

func WithLogger(log Logger) Option {
	return func(c *Config) { c.Logger = log }
}

func defaultConfig() *Config {
	return &Config{
		InputDir:  "inputs",
		OutputDir: "outputs",
	}
}

// Pipeline processes one URL at a time. No state is shared between runs
// except the input/output directory roots.
type Pipeline struct {
	cfg *Config
}

func New(opts ...Option) (*Pipeline, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.Downloader == nil {
		cfg.Downloader = acquisition.NewDownloader(cfg.InputDir)
	}
	if cfg.Analyzer == nil {
		cfg.Analyzer = analysis.NewAnalyzer(nil)
	}
	if cfg.Separator == nil {
		cfg.Separator = separation.NewDemucs()
	}
	if cfg.Renderer == nil && !cfg.NoSpectrogram {
		cfg.Renderer = fileRenderer{}
	}

	// Directory roots are created once, idempotently.
	if err := utils.MakeDir(cfg.InputDir); err != nil {
		return nil, fmt.Errorf("creating input root: %w", err)
	}
	if err := utils.MakeDir(cfg.OutputDir); err != nil {
		return nil, fmt.Errorf("creating output root: %w", err)
	}

	return &Pipeline{cfg: cfg}, nil
}

// ProcessOne runs the full state machine for a single URL. A missing file
// after acquisition yields an Aborted outcome, not an error; stage failures
// come back as typed errors for the loop to report; a partially persisted
// run still completes.
func (p *Pipeline) ProcessOne(ctx context.Context, url string) (*Outcome, error) {
	log := p.cfg.Logger

	// Acquiring
	log.Infof("Downloading audio from %s", url)
	track, err := p.cfg.Downloader.Download(ctx, url)
	if err != nil {
		return nil, &AcquisitionError{URL: url, Err: err}
	}
	if _, err := os.Stat(track.Path); err != nil {
		return &Outcome{
			State:   StateAborted,
			Title:   track.Title,
			Message: "Error downloading the file.",
		}, nil
	}
	log.Infof("Downloaded %q to %s", track.Title, track.Path)

	// Analyzing
	result, err := p.cfg.Analyzer.Analyze(ctx, track.Path)
	if err != nil {
		return nil, &AnalysisError{Path: track.Path, Err: err}
	}
	log.Infof("Detected Key: %s, BPM: %.1f", result.Key.Label(), result.BPM)

	// Naming
	outDir := filepath.Join(p.cfg.OutputDir, OutputDirName(track.Title, result.Key.Label(), result.BPM))
	if err := utils.MakeDir(outDir); err != nil {
		return nil, &PersistenceError{Path: outDir, Err: err}
	}

	// Separating
	log.Infof("Splitting audio: %s", track.Path)
	stems, sampleRate, err := p.cfg.Separator.Separate(ctx, track.Path)
	if err != nil {
		return nil, &SeparationError{Path: track.Path, Err: err}
	}

	// Persisting: each stem write is independently guarded.
	outcome := &Outcome{
		State:     StateDone,
		Title:     track.Title,
		KeyLabel:  result.Key.Label(),
		BPM:       result.BPM,
		OutputDir: outDir,
	}
	written := make(map[string]string, len(stems))
	for _, name := range sortedStemNames(stems) {
		target := filepath.Join(outDir, name+".wav")
		buf := stems[name]
		if buf != nil && buf.Format != nil && sampleRate != 0 {
			buf.Format.SampleRate = sampleRate
		}
		if err := audio.WriteWav(target, buf); err != nil {
			p.logWriteFailure(name, target, err)
			outcome.FailedStems = append(outcome.FailedStems, name)
			continue
		}
		log.Infof("Saved %s to %s", name, target)
		outcome.Stems = append(outcome.Stems, name)
		written[name] = target
	}
	log.Infof("Audio splitting completed.")

	p.renderArtifact(ctx, track, outcome)
	p.record(track, outcome, written)
	return outcome, nil
}

// renderArtifact draws spectrogram.png next to the stems. The artifact is an
// accessory; render failures are logged and ignored.
func (p *Pipeline) renderArtifact(ctx context.Context, track *acquisition.Track, outcome *Outcome) {
	if p.cfg.NoSpectrogram || p.cfg.Renderer == nil {
		return
	}
	target := filepath.Join(outcome.OutputDir, "spectrogram.png")
	if err := p.cfg.Renderer.RenderSpectrogram(ctx, track.Path, target); err != nil {
		p.cfg.Logger.Warnf("Failed to render spectrogram for %q: %v", track.Title, err)
		return
	}
	p.cfg.Logger.Infof("Saved spectrogram to %s", target)
	outcome.Spectrogram = target
}

// fileRenderer is the default Renderer: decode the track at the analysis
// rate, draw its spectrogram with the PNG renderer.
type fileRenderer struct{}

func (fileRenderer) RenderSpectrogram(ctx context.Context, audioPath, outPath string) error {
	samples, sampleRate, err := analysis.DecodeFile(ctx, audioPath)
	if err != nil {
		return err
	}
	return render.WriteSpectrogramPNG(samples, sampleRate, outPath)
}

// record catalogs the run. The catalog is an accessory; its failures are
// logged and swallowed.
func (p *Pipeline) record(track *acquisition.Track, outcome *Outcome, written map[string]string) {
	if p.cfg.Catalog == nil {
		return
	}
	trackID, err := p.cfg.Catalog.RegisterTrack(
		track.Title, track.YouTubeID, outcome.KeyLabel, outcome.BPM, outcome.OutputDir)
	if err != nil {
		p.cfg.Logger.Warnf("Failed to catalog track %q: %v", track.Title, err)
		return
	}
	if err := p.cfg.Catalog.StoreStems(trackID, written); err != nil {
		p.cfg.Logger.Warnf("Failed to catalog stems of %q: %v", track.Title, err)
	}
}

// logWriteFailure reports a failed stem write with enough filesystem
// context to diagnose permission and path problems.
func (p *Pipeline) logWriteFailure(name, target string, err error) {
	log := p.cfg.Logger
	cwd, _ := os.Getwd()
	parent := filepath.Dir(target)

	log.Errorf("Error saving %s: %v", name, err)
	log.Errorf("Current working directory: %s", cwd)
	log.Errorf("File path: %s", target)
	log.Errorf("File path exists: %t", utils.DirExists(parent))
	log.Errorf("File path writable: %t", utils.DirWritable(parent))
}

func sortedStemNames(stems map[string]*goaudio.IntBuffer) []string {
	names := make([]string, 0, len(stems))
	for name := range stems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
