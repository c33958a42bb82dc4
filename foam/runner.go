package foam

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Env binds a detected installation and runtime so commands can be
// launched inside the tool environment.
type Env struct {
	// InstallDir is the root of the foam installation.
	InstallDir string

	// Runtime selects how commands are wrapped and paths translated.
	Runtime Runtime

	// Log receives command lifecycle events. Defaults to slog.Default.
	Log *slog.Logger
}

// NewEnv detects the installation and runtime and returns a ready
// environment. configuredDir may be empty.
func NewEnv(configuredDir string, log *slog.Logger) (*Env, error) {
	dir, err := DetectInstallation(configuredDir)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Env{InstallDir: dir, Runtime: DetectRuntime(), Log: log}, nil
}

// MakeRunCommand wraps cmdline so it executes with the installation's
// environment sourced, in dir (host path) if non-empty.
func (e *Env) MakeRunCommand(cmdline, dir string) string {
	installed := TranslatePath(e.Runtime, e.InstallDir)
	source := fmt.Sprintf("source %q", installed+"/etc/bashrc")

	cd := ""
	if dir != "" {
		cd = fmt.Sprintf("cd %q && ", TranslatePath(e.Runtime, dir))
	}
	return source + " && " + cd + cmdline
}

// shell returns the program and leading arguments used to run a
// wrapped command line.
func (e *Env) shell() (string, []string) {
	switch e.Runtime {
	case WSL:
		return "wsl", []string{"bash", "-c"}
	case BlueCFD:
		return filepath.Join(e.InstallDir, "..", "msys64", "usr", "bin", "bash"), []string{"--login", "-O", "expand_aliases", "-c"}
	default:
		return "bash", []string{"-c"}
	}
}

// command builds the exec.Cmd for cmdline run in dir.
func (e *Env) command(ctx context.Context, cmdline, dir string) *exec.Cmd {
	prog, args := e.shell()
	cmd := exec.CommandContext(ctx, prog, append(args, e.MakeRunCommand(cmdline, dir))...)
	cmd.Env = append(os.Environ(), RunEnvironment(e.Runtime)...)
	return cmd
}

// RunCommand runs cmdline to completion in dir and returns its
// combined output. The error wraps the exit status and includes the
// tail of the output.
func (e *Env) RunCommand(ctx context.Context, cmdline, dir string) (string, error) {
	cmd := e.command(ctx, cmdline, dir)
	e.Log.Debug("running command", "cmdline", cmdline, "dir", dir)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	err := cmd.Run()
	out := buf.String()
	if err != nil {
		return out, fmt.Errorf("command %q failed: %w\n%s", cmdline, err, tail(out, 20))
	}
	return out, nil
}

// StartApplication launches app with args in caseDir, streaming the
// combined output to a log file in the case directory (and to extra,
// if non-nil). The caller waits on the returned command.
func (e *Env) StartApplication(ctx context.Context, app string, args []string, caseDir, logName string, extra io.Writer) (*exec.Cmd, error) {
	if logName == "" {
		logName = "log." + filepath.Base(app)
	}
	logFile, err := os.Create(filepath.Join(caseDir, logName))
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}

	cmdline := app
	if len(args) > 0 {
		cmdline += " " + strings.Join(args, " ")
	}
	cmd := e.command(ctx, cmdline, caseDir)

	var w io.Writer = logFile
	if extra != nil {
		w = io.MultiWriter(logFile, extra)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	e.Log.Info("starting application", "app", app, "case", caseDir, "log", logName)
	if err := cmd.Start(); err != nil {
		logFile.Close()
		return nil, fmt.Errorf("starting %q: %w", app, err)
	}
	go func() {
		cmd.Wait()
		logFile.Close()
	}()
	return cmd, nil
}

// tail returns the last n lines of s.
func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
