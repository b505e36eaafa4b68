package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/himanishpuri/StemForge/internal/pipeline"
)

type recordingProcessor struct {
	urls []string
	fail map[string]error
}

func (r *recordingProcessor) process(ctx context.Context, url string) (*pipeline.Outcome, error) {
	r.urls = append(r.urls, url)
	if err := r.fail[url]; err != nil {
		return nil, err
	}
	return &pipeline.Outcome{
		State:     pipeline.StateDone,
		Title:     "Track",
		KeyLabel:  "A minor",
		BPM:       95.4,
		OutputDir: "outputs/Track_A minor_95",
		Stems:     []string{"bass", "drums", "other", "vocals"},
	}, nil
}

func TestRunLoopExitImmediately(t *testing.T) {
	proc := &recordingProcessor{}
	var out strings.Builder

	err := runLoop(context.Background(), strings.NewReader("exit\n"), &out, proc.process)
	if err != nil {
		t.Fatalf("runLoop failed: %v", err)
	}
	if len(proc.urls) != 0 {
		t.Errorf("exit must not trigger processing, got %v", proc.urls)
	}
	if !strings.Contains(out.String(), prompt) {
		t.Error("prompt was not printed")
	}
}

func TestRunLoopExitCaseInsensitive(t *testing.T) {
	proc := &recordingProcessor{}
	var out strings.Builder

	if err := runLoop(context.Background(), strings.NewReader("EXIT\n"), &out, proc.process); err != nil {
		t.Fatalf("runLoop failed: %v", err)
	}
	if len(proc.urls) != 0 {
		t.Errorf("EXIT must terminate without processing, got %v", proc.urls)
	}
}

func TestRunLoopProcessesThenExits(t *testing.T) {
	proc := &recordingProcessor{}
	var out strings.Builder
	in := strings.NewReader("https://youtu.be/one\nhttps://youtu.be/two\nexit\n")

	if err := runLoop(context.Background(), in, &out, proc.process); err != nil {
		t.Fatalf("runLoop failed: %v", err)
	}
	if len(proc.urls) != 2 {
		t.Fatalf("expected 2 processed URLs, got %v", proc.urls)
	}
	if !strings.Contains(out.String(), "A minor") {
		t.Error("outcome was not printed")
	}
}

func TestRunLoopContainsFailures(t *testing.T) {
	proc := &recordingProcessor{fail: map[string]error{
		"bad": errors.New("acquisition failed"),
	}}
	var out strings.Builder
	in := strings.NewReader("bad\nhttps://youtu.be/good\nexit\n")

	// One failing URL must not end the loop.
	if err := runLoop(context.Background(), in, &out, proc.process); err != nil {
		t.Fatalf("runLoop failed: %v", err)
	}
	if len(proc.urls) != 2 {
		t.Fatalf("expected the loop to continue after a failure, got %v", proc.urls)
	}
	if !strings.Contains(out.String(), "acquisition failed") {
		t.Error("failure was not reported to the operator")
	}
}

func TestRunLoopSkipsBlankLines(t *testing.T) {
	proc := &recordingProcessor{}
	var out strings.Builder

	if err := runLoop(context.Background(), strings.NewReader("\n\nexit\n"), &out, proc.process); err != nil {
		t.Fatalf("runLoop failed: %v", err)
	}
	if len(proc.urls) != 0 {
		t.Errorf("blank lines must be ignored, got %v", proc.urls)
	}
}

func TestRunLoopEOF(t *testing.T) {
	proc := &recordingProcessor{}
	var out strings.Builder

	// Closing stdin ends the loop cleanly.
	if err := runLoop(context.Background(), strings.NewReader(""), &out, proc.process); err != nil {
		t.Fatalf("runLoop on EOF failed: %v", err)
	}
}

func TestPrintOutcomeAborted(t *testing.T) {
	var out strings.Builder
	printOutcome(&out, &pipeline.Outcome{
		State:   pipeline.StateAborted,
		Message: "Error downloading the file.",
	})
	if !strings.Contains(out.String(), "Error downloading the file.") {
		t.Error("aborted message was not printed")
	}
}

func TestPrintOutcomeWithFailedStems(t *testing.T) {
	var out strings.Builder
	printOutcome(&out, &pipeline.Outcome{
		State:       pipeline.StateDone,
		Title:       "Track",
		KeyLabel:    "C major",
		BPM:         120,
		OutputDir:   "outputs/Track_C major_120",
		Stems:       []string{"vocals", "bass", "other"},
		FailedStems: []string{"drums"},
	})
	if !strings.Contains(out.String(), "drums") {
		t.Error("failed stems were not reported")
	}
}
