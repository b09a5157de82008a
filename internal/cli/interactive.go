package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/output"
	"github.com/nguyentantai21042004/minutes-flow/internal/refiner"
)

// voiceFunc records one spoken answer and returns its transcript.
type voiceFunc func(ctx context.Context) (string, error)

// terminalResponder answers refinement questions from the terminal, either
// typed or spoken.
type terminalResponder struct {
	in    *bufio.Reader
	f     *output.Formatter
	voice voiceFunc
}

func newTerminalResponder(in io.Reader, f *output.Formatter, voice voiceFunc) *terminalResponder {
	return &terminalResponder{in: bufio.NewReader(in), f: f, voice: voice}
}

func (t *terminalResponder) Respond(ctx context.Context, question string) (refiner.Reply, error) {
	t.f.Assistant(question)

	for {
		if err := ctx.Err(); err != nil {
			return refiner.Reply{}, err
		}

		t.f.ResponseMenu()
		choice, err := t.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return refiner.Reply{Action: refiner.ActionQuit}, nil
			}
			return refiner.Reply{}, err
		}

		switch strings.ToUpper(choice) {
		case "1":
			text, err := t.voice(ctx)
			if err != nil {
				t.f.Warning(fmt.Sprintf("Voice answer failed: %v", err))
				continue
			}
			if strings.TrimSpace(text) == "" {
				t.f.Warning("No speech detected. Please try again.")
				continue
			}
			t.f.Info("Transcribed: " + text)
			return refiner.Reply{Action: refiner.ActionAnswer, Text: text}, nil

		case "2":
			t.f.Prompt("Enter your response: ")
			text, err := t.readLine()
			if err != nil && !errors.Is(err, io.EOF) {
				return refiner.Reply{}, err
			}
			if text == "" {
				if errors.Is(err, io.EOF) {
					return refiner.Reply{Action: refiner.ActionQuit}, nil
				}
				t.f.Warning("Empty input. Please try again.")
				continue
			}
			return refiner.Reply{Action: refiner.ActionAnswer, Text: text}, nil

		case "R":
			return refiner.Reply{Action: refiner.ActionRetake}, nil

		case "Q":
			return refiner.Reply{Action: refiner.ActionQuit}, nil

		default:
			t.f.Warning("Invalid choice. Please enter 1, 2, R, or Q.")
		}
	}
}

// readLine returns the next trimmed line. A final line without a newline
// is returned with a nil error.
func (t *terminalResponder) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return strings.TrimSpace(line), err
	}
	return strings.TrimSpace(line), nil
}
