// Package browser opens external links on behalf of a screen.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"
	"sync"
)

// Origin identifies the screen a link is presented from.
type Origin string

// Presenter opens a link for a screen. It is fire-and-forget: failures are the
// presenter's to report.
type Presenter interface {
	Present(from Origin, rawURL string)
}

// Operating system constants
const (
	osDarwin  = "darwin"
	osWindows = "windows"
)

// Launcher starts the platform command that opens u.
type Launcher func(ctx context.Context, u string) error

// OSPresenter opens links with the platform's default handler.
type OSPresenter struct {
	ctx    context.Context
	launch Launcher
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewOSPresenter returns a presenter using the platform launcher.
// A nil logger discards output.
func NewOSPresenter(ctx context.Context, logger *slog.Logger) *OSPresenter {
	return NewPresenter(ctx, OpenCommand, logger)
}

// NewPresenter returns a presenter using launch.
func NewPresenter(ctx context.Context, launch Launcher, logger *slog.Logger) *OSPresenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &OSPresenter{ctx: ctx, launch: launch, logger: logger}
}

// Present validates rawURL and opens it in the background.
func (p *OSPresenter) Present(from Origin, rawURL string) {
	u, err := Validate(rawURL)
	if err != nil {
		p.logger.Warn("link not opened", "origin", from, "url", rawURL, "error", err)
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.launch(p.ctx, u); err != nil {
			p.logger.Error("open link", "origin", from, "url", u, "error", err)
			return
		}
		p.logger.Info("opened link", "origin", from, "url", u)
	}()
}

// Wait blocks until every launched open has returned.
func (p *OSPresenter) Wait() {
	p.wg.Wait()
}

// Validate accepts absolute http(s) URLs only.
func Validate(rawURL string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("empty url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url has no host")
	}
	return u.String(), nil
}

// OpenCommand hands u to the platform URL handler.
func OpenCommand(ctx context.Context, u string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case osDarwin:
		cmd = exec.CommandContext(ctx, "open", u)
	case osWindows:
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", u)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", u)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", cmd.Path, err)
	}
	return cmd.Wait()
}

// Call is one recorded presentation.
type Call struct {
	From Origin
	URL  string
}

// Recorder is a Presenter that records calls instead of opening anything.
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) Present(from Origin, rawURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{From: from, URL: rawURL})
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}
