package executor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/dharsanguruparan/rreport/internal/config"
	"github.com/dharsanguruparan/rreport/internal/logger"
	"github.com/dharsanguruparan/rreport/internal/report"
)

// Runner starts a process and returns its combined output and exit code.
// A non-nil error means the process could not be run at all.
type Runner func(ctx context.Context, name string, args ...string) (output []byte, exitCode int, err error)

// CLI runs the engine jar through the java binary.
type CLI struct {
	javaPath string
	jarPath  string
	tempDir  string
	verbose  bool
	run      Runner
	log      logger.Logger
}

// NewCLI builds a CLI executor from configuration.
func NewCLI(cfg *config.Config, log logger.Logger) (*CLI, error) {
	if strings.TrimSpace(cfg.JarPath) == "" {
		return nil, errors.New("engine jar path is not configured")
	}
	return &CLI{
		javaPath: cfg.JavaPath,
		jarPath:  cfg.JarPath,
		tempDir:  cfg.TempDirectory,
		verbose:  cfg.Verbose,
		run:      runCommand,
		log:      logger.Component(log, "executor.cli"),
	}, nil
}

// WithRunner swaps the process runner.
func (c *CLI) WithRunner(run Runner) *CLI {
	c.run = run
	return c
}

// Execute writes the report document to a temporary file and runs the
// engine on it. The document file is removed afterwards.
func (c *CLI) Execute(ctx context.Context, r *report.Report) (*Result, error) {
	if err := os.MkdirAll(c.tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	tmp, err := os.CreateTemp(c.tempDir, "rreport-*.xml")
	if err != nil {
		return nil, fmt.Errorf("create document file: %w", err)
	}
	docPath := tmp.Name()
	tmp.Close()
	defer os.Remove(docPath)

	if err := r.SerializeToFile(docPath); err != nil {
		return nil, err
	}

	args := []string{"-jar", c.jarPath, "-f", docPath}
	if c.verbose {
		args = append(args, "-v")
	}
	c.log.Debugf("running %s %s", c.javaPath, strings.Join(args, " "))

	start := time.Now()
	out, code, err := c.run(ctx, c.javaPath, args...)
	res := &Result{ExitCode: code, Messages: lines(out), Duration: time.Since(start)}
	if err != nil {
		return res, fmt.Errorf("run engine: %w", err)
	}
	if code != 0 {
		c.log.WithField("exit_code", code).Warnf("engine failed for %s", r.OutputFile())
		return res, fmt.Errorf("%w: engine exited with code %d", ErrExecution, code)
	}
	if data, err := os.ReadFile(r.OutputFile()); err == nil {
		res.Report = data
	} else {
		c.log.Warnf("rendered report %s not readable: %v", r.OutputFile(), err)
	}
	c.log.WithFields(map[string]interface{}{
		"output":   r.OutputFile(),
		"duration": res.Duration.String(),
	}).Infof("report rendered")
	return res, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	var buf bytes.Buffer
	execCmd := exec.CommandContext(ctx, name, args...)
	execCmd.Stdout = &buf
	execCmd.Stderr = &buf
	err := execCmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return buf.Bytes(), exitErr.ExitCode(), nil
	}
	if err != nil {
		return buf.Bytes(), -1, err
	}
	return buf.Bytes(), 0, nil
}

func lines(out []byte) []string {
	var msgs []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			msgs = append(msgs, line)
		}
	}
	return msgs
}
