package executor

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/pkg/errors"

	"github.com/mensylisir/xmrecipes/common"
)

// localExecutor runs commands on the local machine via os/exec.
type localExecutor struct {
	env []string
}

// NewLocalExecutor creates an Executor for local operations. extraEnv
// entries ("KEY=VALUE") are appended to the inherited environment.
func NewLocalExecutor(extraEnv ...string) Executor {
	return &localExecutor{env: extraEnv}
}

func (l *localExecutor) Execute(ctx context.Context, command string, args ...string) (*Result, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	if len(l.env) > 0 {
		cmd.Env = append(os.Environ(), l.env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	res := &Result{Cmd: command + " " + strings.Join(args, " ")}

	err := cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			res.ExitCode = status.ExitStatus()
			if status.Signaled() {
				res.Signal = status.Signal().String()
			}
		} else {
			res.ExitCode = 1
		}
		// A non-zero exit is a classification concern, not an adapter error.
		return res, nil
	}

	// The process never ran (command not found, bad working dir, ...).
	res.ExitCode = -1
	return res, errors.Wrapf(err, "failed to run command %q", res.Cmd)
}

func (l *localExecutor) UploadFile(ctx context.Context, localPath, targetPath string, permissions os.FileMode) error {
	src, err := os.Open(localPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open source file %s", localPath)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(targetPath), common.FileMode0755); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", targetPath)
	}
	dst, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, permissions)
	if err != nil {
		return errors.Wrapf(err, "failed to create destination file %s", targetPath)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrapf(err, "failed to copy %s to %s", localPath, targetPath)
	}
	return dst.Chmod(permissions)
}

func (l *localExecutor) Close() error { return nil }
