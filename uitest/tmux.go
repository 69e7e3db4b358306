// Package uitest provides TUI testing via tmux
package uitest

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Session wraps a tmux session for TUI testing
type Session struct {
	Name   string
	Width  int
	Height int
}

// NewSession creates a new tmux session running the given command
func NewSession(name string, width, height int, cmd string) (*Session, error) {
	s := &Session{Name: name, Width: width, Height: height}

	// Kill any existing session with this name
	exec.Command("tmux", "kill-session", "-t", name).Run()

	// Create new session
	args := []string{
		"new-session", "-d",
		"-s", name,
		"-x", fmt.Sprintf("%d", width),
		"-y", fmt.Sprintf("%d", height),
		cmd,
	}
	if err := exec.Command("tmux", args...).Run(); err != nil {
		return nil, errors.Wrap(err, "create tmux session")
	}

	return s, nil
}

// Close kills the tmux session
func (s *Session) Close() error {
	return exec.Command("tmux", "kill-session", "-t", s.Name).Run()
}

// SendKeys sends keys to the tmux session
func (s *Session) SendKeys(keys ...string) error {
	args := append([]string{"send-keys", "-t", s.Name}, keys...)
	return exec.Command("tmux", args...).Run()
}

// SendText types text literally, without tmux key name lookup
func (s *Session) SendText(text string) error {
	return exec.Command("tmux", "send-keys", "-t", s.Name, "-l", text).Run()
}

// SendLine sends text followed by Enter
func (s *Session) SendLine(text string) error {
	if err := s.SendText(text); err != nil {
		return err
	}
	return s.SendKeys("Enter")
}

// Capture returns the current pane content
func (s *Session) Capture() (string, error) {
	out, err := exec.Command("tmux", "capture-pane", "-t", s.Name, "-p").Output()
	if err != nil {
		return "", errors.Wrap(err, "capture pane")
	}
	return string(out), nil
}

// WaitFor waits until the output contains the pattern or timeout
func (s *Session) WaitFor(pattern string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		content, err := s.Capture()
		if err != nil {
			return err
		}
		if strings.Contains(content, pattern) {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	content, _ := s.Capture()
	return errors.Newf("timeout waiting for %q\nCurrent content:\n%s", pattern, content)
}

// WaitForRegex waits until the output matches the regex or timeout
func (s *Session) WaitForRegex(pattern string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		content, err := s.Capture()
		if err != nil {
			return err
		}
		matched, _ := regexpMatch(pattern, content)
		if matched {
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
	content, _ := s.Capture()
	return errors.Newf("timeout waiting for pattern %q\nCurrent content:\n%s", pattern, content)
}

func regexpMatch(pattern, content string) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, errors.Wrapf(err, "bad pattern %q", pattern)
	}
	return re.MatchString(content), nil
}

// Contains checks if the current output contains the pattern
func (s *Session) Contains(pattern string) (bool, error) {
	content, err := s.Capture()
	if err != nil {
		return false, err
	}
	return strings.Contains(content, pattern), nil
}

// ContainsRegex checks if the current output matches the regex
func (s *Session) ContainsRegex(pattern string) (bool, error) {
	content, err := s.Capture()
	if err != nil {
		return false, err
	}
	return regexpMatch(pattern, content)
}

// Sleep pauses for the given duration
func (s *Session) Sleep(d time.Duration) {
	time.Sleep(d)
}

// RequireTmux reports an error if tmux is not installed
func RequireTmux() error {
	if _, err := exec.LookPath("tmux"); err != nil {
		return errors.WithHint(errors.Wrap(err, "tmux not found"), "install tmux to run the UI tests")
	}
	return nil
}
