package narration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nguyentantai21042004/narration-flow/internal/subtitle"
	"github.com/nguyentantai21042004/narration-flow/internal/timeline"
)

type fakeEngine struct {
	voices []Voice
	err    error
	texts  []string
	opts   []Options
}

func (f *fakeEngine) Synthesize(ctx context.Context, text, outputPath string, opts Options) error {
	if f.err != nil {
		return f.err
	}
	f.texts = append(f.texts, text)
	f.opts = append(f.opts, opts)
	return os.WriteFile(outputPath, []byte("RIFF"), 0644)
}

func (f *fakeEngine) Voices(ctx context.Context) ([]Voice, error) {
	return f.voices, f.err
}

type fakeProber struct {
	duration time.Duration
	err      error
}

func (p fakeProber) Duration(ctx context.Context, path string) (time.Duration, error) {
	return p.duration, p.err
}

func TestSynthesizeMeasuresDuration(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	engine := &fakeEngine{}
	s := NewSynthesizer(engine, fakeProber{duration: 4200 * time.Millisecond})

	caption := subtitle.Caption{Start: 2 * time.Second, End: 3 * time.Second, Text: "A car pulls up."}
	clip, err := s.Synthesize(context.Background(), Request{
		Index:      0,
		Caption:    caption,
		Voice:      "en-us",
		Rate:       180,
		Gain:       1,
		OutputPath: ws.ClipPath(0),
	})
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	want := timeline.Clip{Source: filepath.Join(ws.Dir(), "temp_tts_0.wav"), Start: 2 * time.Second, Duration: 4200 * time.Millisecond}
	if diff := cmp.Diff(want, clip); diff != "" {
		t.Errorf("Synthesize() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Options{{Gain: 1, Rate: 180, Voice: "en-us"}}, engine.opts); diff != "" {
		t.Errorf("engine options mismatch (-want +got):\n%s", diff)
	}
}

func TestSynthesizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		engine *fakeEngine
		prober fakeProber
	}{
		{"engine failure", &fakeEngine{err: errors.New("engine init failed")}, fakeProber{}},
		{"unreadable output", &fakeEngine{}, fakeProber{err: errors.New("invalid data")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSynthesizer(tt.engine, tt.prober)
			_, err := s.Synthesize(context.Background(), Request{
				Index:      4,
				Caption:    subtitle.Caption{Start: 0, End: time.Second, Text: "x"},
				OutputPath: filepath.Join(t.TempDir(), "temp_tts_4.wav"),
			})
			var se *SynthesisError
			if !errors.As(err, &se) {
				t.Fatalf("Synthesize() error = %v, want *SynthesisError", err)
			}
			if se.Index != 4 {
				t.Errorf("SynthesisError.Index = %d, want 4", se.Index)
			}
			if !strings.Contains(err.Error(), "caption 5") {
				t.Errorf("error %q should name caption 5", err)
			}
		})
	}
}

func TestResolveVoice(t *testing.T) {
	engine := &fakeEngine{voices: []Voice{
		{ID: "en-us", Name: "English (America)"},
		{ID: "tr", Name: "Turkish"},
	}}

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"empty selects default", "", "", false},
		{"by display name", "Turkish", "tr", false},
		{"by id", "EN-US", "en-us", false},
		{"unknown", "Klingon", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveVoice(context.Background(), engine, tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveVoice() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownVoice) {
				t.Errorf("error %v should wrap ErrUnknownVoice", err)
			}
			if got != tt.want {
				t.Errorf("ResolveVoice() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWorkspaceCleanup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conversion")
	ws, err := NewWorkspace(dir)
	if err != nil {
		t.Fatalf("NewWorkspace() error = %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("work dir not created: %v", err)
	}

	written := ws.ClipPath(0)
	_ = ws.ClipPath(1) // never written
	if err := os.WriteFile(written, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	keep := filepath.Join(dir, "final_output.mp4")
	if err := os.WriteFile(keep, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if len(ws.Files()) != 2 {
		t.Errorf("Files() = %v, want 2 entries", ws.Files())
	}
	if err := ws.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(written); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("temp file %s still exists", written)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("untracked output removed: %v", err)
	}
	if len(ws.Files()) != 0 {
		t.Error("Cleanup() should forget tracked files")
	}
}

func TestWorkspaceClipPathsAreUnique(t *testing.T) {
	ws, _ := NewWorkspace(t.TempDir())
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		p := ws.ClipPath(i)
		if seen[p] {
			t.Fatalf("duplicate clip path %s", p)
		}
		seen[p] = true
	}
}

type recordingExecutor struct {
	name string
	args []string
	out  string
	err  error
}

func (r *recordingExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	r.name, r.args = name, args
	for i, a := range args {
		if a == "-w" && i+1 < len(args) {
			_ = os.WriteFile(args[i+1], []byte("RIFF"), 0644)
		}
	}
	return r.out, r.err
}

func (r *recordingExecutor) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	return r.Execute(ctx, name, args...)
}

func TestCommandEngineSynthesize(t *testing.T) {
	out := filepath.Join(t.TempDir(), "temp_tts_0.wav")
	exec := &recordingExecutor{}
	engine := NewCommandEngine(exec, "espeak-ng")

	if err := engine.Synthesize(context.Background(), "--not a flag", out, Options{Gain: 1.5, Rate: 220, Voice: "en-us"}); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	want := []string{"-w", out, "-s", "220", "-a", "150", "-v", "en-us", "-f", out + ".txt"}
	if diff := cmp.Diff(want, exec.args); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(out + ".txt"); !errors.Is(err, os.ErrNotExist) {
		t.Error("text sidecar should be removed")
	}
}

func TestCommandEngineFailure(t *testing.T) {
	exec := &recordingExecutor{err: errors.New("exit status 1")}
	err := NewCommandEngine(exec, "espeak-ng").Synthesize(context.Background(), "hi", filepath.Join(t.TempDir(), "a.wav"), Options{Gain: 1, Rate: 200})
	if err == nil {
		t.Fatal("Synthesize() should fail when the engine fails")
	}
}

func TestParseVoices(t *testing.T) {
	out := `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  en-us           --/M      English_(America)  gmw/en-US            (en 3)
 5  tr              --/M      Turkish            trk/tr

`
	want := []Voice{
		{ID: "af", Name: "Afrikaans"},
		{ID: "en-us", Name: "English (America)"},
		{ID: "tr", Name: "Turkish"},
	}
	if diff := cmp.Diff(want, parseVoices(out)); diff != "" {
		t.Errorf("parseVoices() mismatch (-want +got):\n%s", diff)
	}
}
