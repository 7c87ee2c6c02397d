package narration

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/narration-flow/pkg/executor"
)

type commandEngine struct {
	executor executor.Executor
	binary   string
}

// NewCommandEngine creates an Engine driving an espeak-ng compatible binary
func NewCommandEngine(exec executor.Executor, binary string) Engine {
	return &commandEngine{executor: exec, binary: binary}
}

// Synthesize writes text to a sidecar file and renders it to outputPath as WAV
func (e *commandEngine) Synthesize(ctx context.Context, text, outputPath string, opts Options) error {
	textPath := outputPath + ".txt"
	if err := os.WriteFile(textPath, []byte(text), 0644); err != nil {
		return fmt.Errorf("write narration text: %w", err)
	}
	defer os.Remove(textPath)

	if _, err := e.executor.Execute(ctx, e.binary, e.args(textPath, outputPath, opts)...); err != nil {
		return fmt.Errorf("tts engine: %w", err)
	}

	if info, err := os.Stat(outputPath); err != nil || info.Size() == 0 {
		return fmt.Errorf("tts engine produced no audio at %s", outputPath)
	}
	return nil
}

func (e *commandEngine) args(textPath, outputPath string, opts Options) []string {
	// espeak-ng amplitude runs 0-200 with 100 as normal
	amplitude := int(opts.Gain*100 + 0.5)
	args := []string{
		"-w", outputPath,
		"-s", strconv.Itoa(opts.Rate),
		"-a", strconv.Itoa(amplitude),
	}
	if opts.Voice != "" {
		args = append(args, "-v", opts.Voice)
	}
	return append(args, "-f", textPath)
}

// Voices parses the espeak-ng voice table:
//
//	Pty Language  Age/Gender VoiceName          File        Other Languages
//	 5  en-us      --/M      English_(America)  gmw/en-US   (en 3)
func (e *commandEngine) Voices(ctx context.Context) ([]Voice, error) {
	out, err := e.executor.Execute(ctx, e.binary, "--voices")
	if err != nil {
		return nil, fmt.Errorf("list voices: %w", err)
	}
	return parseVoices(out), nil
}

func parseVoices(out string) []Voice {
	var voices []Voice
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		voices = append(voices, Voice{
			ID:   fields[1],
			Name: strings.ReplaceAll(fields[3], "_", " "),
		})
	}
	return voices
}
