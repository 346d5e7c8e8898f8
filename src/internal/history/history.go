// Package history wraps the library's mutating operations in automatic git
// commits and provides undo/redo over that commit log. Only the policy lives
// here; version control itself is delegated to the external git binary.
package history

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
)

// AutoPrefix tags commits created by this tool, so that undo can distinguish
// them from unrelated manual commits.
const AutoPrefix = "auto-commit:"

// ErrUndoGuard is returned when the newest commit was not auto-committed and
// force was not given. No state is touched.
var ErrUndoGuard = errors.New("newest commit was not auto-committed (use --force to undo anyway)")

// ErrNotConfigured is returned when git tracking is requested but the
// repository or the committer identity is not set up.
var ErrNotConfigured = errors.New("git tracking is not configured")

// Runner abstracts command execution for testability.
type Runner interface {
	Run(name string, args ...string) (stdout string, stderr string, err error)
}

type defaultRunner struct{}

// Run executes the named program with args and returns stdout, stderr, and error.
func (defaultRunner) Run(name string, args ...string) (string, string, error) {
	cmd := exec.Command(name, args...)
	var out, errB bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errB
	err := cmd.Run()
	return out.String(), errB.String(), err
}

// Log tracks the directory containing the database file.
type Log struct {
	root string
	file string
	run  Runner
}

// New returns a history log for the given database file.
func New(file string) *Log {
	return &Log{root: filepath.Dir(file), file: file, run: defaultRunner{}}
}

// NewWithRunner returns a history log with a custom command runner.
func NewWithRunner(file string, r Runner) *Log {
	return &Log{root: filepath.Dir(file), file: file, run: r}
}

func (l *Log) git(args ...string) (string, string, error) {
	return l.run.Run("git", append([]string{"-C", l.root}, args...)...)
}

// IsInsideWorkTree reports whether the database directory is tracked by git.
func (l *Log) IsInsideWorkTree() bool {
	out, _, err := l.git("rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// HasIdentity reports whether a committer identity is configured; without
// one the auto-commit cannot proceed.
func (l *Log) HasIdentity() bool {
	name, _, err := l.git("config", "user.name")
	if err != nil || strings.TrimSpace(name) == "" {
		return false
	}
	email, _, err := l.git("config", "user.email")
	return err == nil && strings.TrimSpace(email) != ""
}

// Init initializes the git repository for the library directory.
func (l *Log) Init() error {
	if _, stderr, err := l.git("init"); err != nil {
		return fmt.Errorf("git init failed: %v: %s", err, stderr)
	}
	return nil
}

// Commit stages the database file and commits it with the auto-commit prefix
// and the given command name and detail line. "Nothing to commit" is treated
// as success. It returns the resulting commit id (empty for a no-op).
func (l *Log) Commit(command, details string) (string, error) {
	if !l.IsInsideWorkTree() {
		return "", fmt.Errorf("%w: %s is not inside a git work tree (run `litdb init --git`)", ErrNotConfigured, l.root)
	}
	if !l.HasIdentity() {
		return "", fmt.Errorf("%w: git user.name/user.email are not set", ErrNotConfigured)
	}
	if _, stderr, err := l.git("add", "--", l.file); err != nil {
		return "", fmt.Errorf("git add failed: %v: %s", err, stderr)
	}
	msg := fmt.Sprintf("%s %s", AutoPrefix, command)
	if strings.TrimSpace(details) != "" {
		msg += "\n\n" + details
	}
	stdout, stderr, err := l.git("commit", "--no-gpg-sign", "--quiet", "--message", msg)
	if err != nil {
		combined := stderr + stdout
		if strings.Contains(combined, "nothing to commit") ||
			strings.Contains(combined, "no changes added to commit") ||
			strings.Contains(combined, "working tree clean") {
			slog.Debug("nothing to commit", "command", command)
			return "", nil
		}
		return "", fmt.Errorf("git commit failed: %v: %s%s", err, stderr, stdout)
	}
	return l.head()
}

func (l *Log) head() (string, error) {
	out, stderr, err := l.git("rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse failed: %v: %s", err, stderr)
	}
	return strings.TrimSpace(out), nil
}

// commitLine is one parsed line of `git log --oneline --no-abbrev`.
type commitLine struct {
	sha     string
	subject string
}

func (l *Log) log() ([]commitLine, error) {
	out, stderr, err := l.git("--no-pager", "log", "--oneline", "--no-decorate", "--no-abbrev")
	if err != nil {
		return nil, fmt.Errorf("git log failed: %v: %s", err, stderr)
	}
	var lines []commitLine
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sha, subject, _ := strings.Cut(line, " ")
		lines = append(lines, commitLine{sha: sha, subject: subject})
	}
	return lines, nil
}

// isAuto reports whether a commit subject carries the auto-commit prefix but
// is not the initial library scaffold (which must never be undone).
func isAuto(subject string) bool {
	if !strings.HasPrefix(subject, AutoPrefix) {
		return false
	}
	return !strings.HasSuffix(strings.TrimSpace(subject), "init")
}

// Undo reverts the most recent auto-commit that has not been undone yet,
// committing the revert as "undo <sha>". Without force, a non-auto commit at
// the top of the unprocessed log refuses with ErrUndoGuard. The caller must
// reload the store afterwards. It returns the sha that was undone.
func (l *Log) Undo(force bool) (string, error) {
	if !l.IsInsideWorkTree() {
		return "", fmt.Errorf("%w: %s is not inside a git work tree (run `litdb init --git`)", ErrNotConfigured, l.root)
	}
	commits, err := l.log()
	if err != nil {
		return "", err
	}
	undone := map[string]bool{}
	for _, c := range commits {
		if rest, ok := strings.CutPrefix(c.subject, "undo "); ok {
			undone[strings.TrimSpace(rest)] = true
			continue
		}
		if undone[c.sha] {
			slog.Debug("skipping already undone commit", "sha", c.sha)
			continue
		}
		if !force && !isAuto(c.subject) {
			return "", fmt.Errorf("%w: %s %q", ErrUndoGuard, c.sha, c.subject)
		}
		if err := l.revert(c.sha, "undo "+c.sha); err != nil {
			return "", err
		}
		slog.Info("undid commit", "sha", c.sha, "subject", c.subject)
		return c.sha, nil
	}
	return "", fmt.Errorf("could not find a commit to undo")
}

// Redo re-applies the change reverted by the most recent undo commit that
// has not been redone yet, committing as "redo <sha>". When there is nothing
// to redo it returns an empty sha and logs the fact; this is not an error.
func (l *Log) Redo() (string, error) {
	if !l.IsInsideWorkTree() {
		return "", fmt.Errorf("%w: %s is not inside a git work tree (run `litdb init --git`)", ErrNotConfigured, l.root)
	}
	commits, err := l.log()
	if err != nil {
		return "", err
	}
	redone := map[string]bool{}
	for _, c := range commits {
		if rest, ok := strings.CutPrefix(c.subject, "redo "); ok {
			redone[strings.TrimSpace(rest)] = true
			continue
		}
		if redone[c.sha] {
			slog.Debug("skipping already redone commit", "sha", c.sha)
			continue
		}
		if !strings.HasPrefix(c.subject, "undo ") {
			break
		}
		if err := l.revert(c.sha, "redo "+c.sha); err != nil {
			return "", err
		}
		slog.Info("redid commit", "sha", c.sha)
		return c.sha, nil
	}
	slog.Warn("nothing to redo; undo something first")
	return "", nil
}

// revert reverts sha and commits the result under the given message.
func (l *Log) revert(sha, message string) error {
	if _, stderr, err := l.git("revert", "--no-commit", sha); err != nil {
		_, _, _ = l.git("revert", "--abort")
		return fmt.Errorf("git revert %s failed: %v: %s", sha, err, stderr)
	}
	if _, stderr, err := l.git("commit", "--no-gpg-sign", "--quiet", "--message", message); err != nil {
		return fmt.Errorf("git commit after revert failed: %v: %s", err, stderr)
	}
	return nil
}
