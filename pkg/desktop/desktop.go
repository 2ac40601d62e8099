// Package desktop opens site pages in the browser and shows desktop notifications
// by running external commands.
package desktop

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"
)

// Runner executes a command and returns its stdout
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	return out, nil
}

// DefaultOpenCmd returns the platform command opening a url in the default browser
func DefaultOpenCmd() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return "rundll32 url.dll,FileProtocolHandler"
	default:
		return "xdg-open"
	}
}

// defaults for commands
const (
	DefaultWindowsCmd = "wmctrl -l"
	DefaultNotifyCmd  = "notify-send"
)

// Browser opens urls and counts already open pages by window title
type Browser struct {
	openCmd    []string
	windowsCmd []string
	run        Runner
}

// NewBrowser makes a browser for the opener and window-list command lines.
// Empty commands are replaced by defaults, windowsCmd "-" disables tab counting.
func NewBrowser(openCmd, windowsCmd string, run Runner) *Browser {
	if openCmd == "" {
		openCmd = DefaultOpenCmd()
	}
	if windowsCmd == "" {
		windowsCmd = DefaultWindowsCmd
	}
	if windowsCmd == "-" {
		windowsCmd = ""
	}
	if run == nil {
		run = ExecRunner
	}
	return &Browser{openCmd: strings.Fields(openCmd), windowsCmd: strings.Fields(windowsCmd), run: run}
}

// Open opens the url
func (b *Browser) Open(ctx context.Context, url string) error {
	if len(b.openCmd) == 0 {
		return errors.New("no open command")
	}
	args := append(append([]string{}, b.openCmd[1:]...), url)
	if _, err := b.run(ctx, b.openCmd[0], args...); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	lgr.Printf("[DEBUG] opened %s", url)
	return nil
}

// CountTabs returns the number of windows whose title contains title.
// A failing window-list command counts as no windows.
func (b *Browser) CountTabs(ctx context.Context, title string) int {
	if len(b.windowsCmd) == 0 {
		return 0
	}
	out, err := b.run(ctx, b.windowsCmd[0], b.windowsCmd[1:]...)
	if err != nil {
		lgr.Printf("[DEBUG] can't list windows: %v", err)
		return 0
	}
	count := 0
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, title) {
			count++
		}
	}
	return count
}

// Notifier shows desktop notifications
type Notifier struct {
	cmd    []string
	run    Runner
	policy *bluemonday.Policy
}

// NewNotifier makes a notifier for the notify command line, notify-send by default
func NewNotifier(cmd string, run Runner) *Notifier {
	if cmd == "" {
		cmd = DefaultNotifyCmd
	}
	if run == nil {
		run = ExecRunner
	}
	return &Notifier{cmd: strings.Fields(cmd), run: run, policy: bluemonday.StrictPolicy()}
}

// Notify shows a notification expiring after life. The body is stripped of markup,
// notification daemons render a subset of html in it.
func (n *Notifier) Notify(ctx context.Context, title, body string, life time.Duration) error {
	if len(n.cmd) == 0 {
		return errors.New("no notify command")
	}
	args := append([]string{}, n.cmd[1:]...)
	args = append(args, "-t", strconv.FormatInt(life.Milliseconds(), 10), title, n.policy.Sanitize(body))
	if _, err := n.run(ctx, n.cmd[0], args...); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}
