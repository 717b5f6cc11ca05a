package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Default external player used by ExecAudio.
const DefaultPlayerCommand = "mpv"

// DefaultPlayerArgs are passed before the stream URL.
var DefaultPlayerArgs = []string{"--no-video", "--really-quiet"}

// ExecAudio plays streams by running an external player process, one at a
// time. Pausing ends the process; playing again reconnects to the stream.
type ExecAudio struct {
	command string
	args    []string
	logger  *zap.Logger

	mu      sync.Mutex
	running *process
}

type process struct {
	cmd     *exec.Cmd
	done    chan struct{}
	stopped atomic.Bool
}

// NewExecAudio creates an adapter running command with args followed by the
// stream URL. An empty command selects mpv.
func NewExecAudio(logger *zap.Logger, command string, args ...string) *ExecAudio {
	if command == "" {
		command = DefaultPlayerCommand
		args = DefaultPlayerArgs
	}
	return &ExecAudio{
		command: command,
		args:    append([]string(nil), args...),
		logger:  logger,
	}
}

// Play stops the running process, if any, and starts a new one for streamURL.
func (a *ExecAudio) Play(ctx context.Context, streamURL string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopLocked()

	if err := ctx.Err(); err != nil {
		return err
	}

	args := append(append([]string(nil), a.args...), streamURL)
	cmd := exec.CommandContext(ctx, a.command, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", a.command, err)
	}

	p := &process{cmd: cmd, done: make(chan struct{})}
	a.running = p
	go a.reap(p, streamURL)

	return nil
}

// Pause ends playback. Live streams cannot be resumed where they left off.
func (a *ExecAudio) Pause() error {
	return a.Stop()
}

// Stop ends the running process and waits for it to exit.
func (a *ExecAudio) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
	return nil
}

// Running reports whether a player process is alive.
func (a *ExecAudio) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running == nil {
		return false
	}
	select {
	case <-a.running.done:
		return false
	default:
		return true
	}
}

// stopLocked kills the running process. Caller holds a.mu.
func (a *ExecAudio) stopLocked() {
	p := a.running
	if p == nil {
		return
	}
	a.running = nil
	p.stopped.Store(true)

	select {
	case <-p.done:
		return
	default:
	}

	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		a.logger.Warn("killing player", zap.Error(err))
	}
	<-p.done
}

// reap waits for the process and logs an unexpected exit, such as an
// unreachable stream.
func (a *ExecAudio) reap(p *process, streamURL string) {
	err := p.cmd.Wait()
	close(p.done)

	if err != nil && !p.stopped.Load() {
		a.logger.Warn("player exited",
			zap.String("command", a.command),
			zap.String("stream_url", streamURL),
			zap.Error(err),
		)
	}
}
