package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/himanishpuri/StemForge/internal/acquisition"
	"github.com/himanishpuri/StemForge/internal/analysis"
	"github.com/himanishpuri/StemForge/internal/pipeline"
	"github.com/himanishpuri/StemForge/internal/render"
	"github.com/himanishpuri/StemForge/internal/storage"
	"github.com/himanishpuri/StemForge/pkg/logger"
)

const prompt = "Enter YouTube URL (or type 'exit' to quit): "

// Global flags
var (
	inputDir      string
	outputDir     string
	dbPath        string
	noSpectrogram bool
)

func init() {
	flag.StringVar(&inputDir, "inputs", getEnvOrDefault("STEMFORGE_INPUT_DIR", "inputs"), "Directory for downloaded audio")
	flag.StringVar(&outputDir, "outputs", getEnvOrDefault("STEMFORGE_OUTPUT_DIR", "outputs"), "Directory for separated stems")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("STEMFORGE_DB_PATH", storage.DefaultDBFile), "Path to the SQLite catalog file")
	flag.BoolVar(&noSpectrogram, "no-spectrogram", false, "Skip rendering spectrogram.png into each track's output directory")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log := logger.GetLogger()

	printBanner()

	command := ""
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command = args[0]
		args = args[1:]
	}
	flag.CommandLine.Parse(args)

	switch command {
	case "", "run":
		runInteractive(log)
	case "list":
		handleList(log)
	case "spectrogram":
		handleSpectrogram(log, flag.CommandLine.Args())
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printBanner() {
	banner := `
  ____  _                 _____
 / ___|| |_ ___ _ __ ___ |  ___|__  _ __ __ _  ___
 \___ \| __/ _ \ '_ ' _ \| |_ / _ \| '__/ _' |/ _ \
  ___) | ||  __/ | | | | |  _| (_) | | | (_| |  __/
 |____/ \__\___|_| |_| |_|_|  \___/|_|  \__, |\___|
                                        |___/
        Key/BPM-labeled Stem Splitter
`
	fmt.Println(banner)
}

func printUsage() {
	fmt.Println("Usage: stemforge [command] [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  (none)        Interactive URL loop: download, analyze, separate")
	fmt.Println("  list          Print the track catalog")
	fmt.Println("  spectrogram   Render a PNG spectrogram: stemforge spectrogram <audio> <out.png>")
	fmt.Println("  help          Show this help")
	fmt.Println()
	fmt.Println("Flags:")
	flag.PrintDefaults()
}

func runInteractive(log *logger.Logger) {
	ctx := context.Background()

	if err := acquisition.EnsureTool(ctx); err != nil {
		log.Warnf("yt-dlp not installed and auto-install failed: %v", err)
	}

	catalog, err := storage.Open(dbPath)
	if err != nil {
		log.Warnf("Catalog unavailable, continuing without it: %v", err)
		catalog = nil
	} else {
		defer catalog.Close()
	}

	opts := []pipeline.Option{
		pipeline.WithInputDir(inputDir),
		pipeline.WithOutputDir(outputDir),
		pipeline.WithLogger(log),
	}
	if noSpectrogram {
		opts = append(opts, pipeline.WithoutSpectrogram())
	}
	if catalog != nil {
		opts = append(opts, pipeline.WithCatalog(catalog))
	}

	p, err := pipeline.New(opts...)
	if err != nil {
		log.Fatalf("Failed to initialize pipeline: %v", err)
	}

	if err := runLoop(ctx, os.Stdin, os.Stdout, p.ProcessOne); err != nil {
		log.Fatalf("Input loop failed: %v", err)
	}
}

// runLoop is the blocking read-process cycle. It only reads URLs, invokes
// the processor and prints outcomes; all stage errors are contained here so
// one bad URL never ends the session.
func runLoop(
	ctx context.Context,
	in io.Reader,
	out io.Writer,
	process func(context.Context, string) (*pipeline.Outcome, error),
) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			return scanner.Err()
		}
		url := strings.TrimSpace(scanner.Text())
		if url == "" {
			continue
		}
		if strings.EqualFold(url, "exit") {
			return nil
		}

		outcome, err := process(ctx, url)
		if err != nil {
			fmt.Fprintf(out, "❌ %v\n", err)
			continue
		}
		printOutcome(out, outcome)
	}
}

func printOutcome(out io.Writer, outcome *pipeline.Outcome) {
	if outcome.State == pipeline.StateAborted {
		fmt.Fprintln(out, outcome.Message)
		return
	}

	fmt.Fprintf(out, "✅ %s\n", outcome.Title)
	fmt.Fprintf(out, "   Key: %s, BPM: %.1f\n", outcome.KeyLabel, outcome.BPM)
	fmt.Fprintf(out, "   Stems in %s: %s\n", outcome.OutputDir, strings.Join(outcome.Stems, ", "))
	if len(outcome.FailedStems) > 0 {
		fmt.Fprintf(out, "⚠️  Failed to write: %s\n", strings.Join(outcome.FailedStems, ", "))
	}
}

func handleList(log *logger.Logger) {
	catalog, err := storage.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open catalog: %v", err)
	}
	defer catalog.Close()

	tracks, err := catalog.ListTracks()
	if err != nil {
		log.Fatalf("Failed to list tracks: %v", err)
	}
	if len(tracks) == 0 {
		fmt.Println("Catalog is empty.")
		return
	}

	for _, track := range tracks {
		fmt.Printf("%-40s  %-9s  %6.1f BPM  %s\n",
			track.Title, track.KeyLabel, track.BPM, track.OutputDir)
	}
}

func handleSpectrogram(log *logger.Logger, args []string) {
	if len(args) < 2 {
		fmt.Println("Usage: stemforge spectrogram <audio_file> <out.png>")
		os.Exit(1)
	}
	audioPath, outPath := args[0], args[1]

	samples, sampleRate, err := analysis.DecodeFile(context.Background(), audioPath)
	if err != nil {
		log.Fatalf("Failed to decode %s: %v", audioPath, err)
	}
	if err := render.WriteSpectrogramPNG(samples, sampleRate, outPath); err != nil {
		log.Fatalf("Failed to render spectrogram: %v", err)
	}
	fmt.Printf("Saved spectrogram to %s\n", outPath)
}
