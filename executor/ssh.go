package executor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/mensylisir/xmrecipes/common"
)

// SSHConfig describes the remote host an sshExecutor targets.
type SSHConfig struct {
	Address        string
	Port           int
	User           string
	Password       string
	PrivateKeyPath string
	Timeout        time.Duration
}

// sshExecutor runs commands on a remote host over SSH and stages files
// with SFTP.
type sshExecutor struct {
	cfg    SSHConfig
	client *ssh.Client
}

// NewSSHExecutor dials the remote host and returns an Executor bound to it.
// The caller owns the returned executor and must Close it.
func NewSSHExecutor(cfg SSHConfig) (Executor, error) {
	if cfg.Address == "" {
		return nil, errors.New("ssh executor requires a host address")
	}
	if cfg.Port == 0 {
		cfg.Port = common.DefaultSSHPort
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	auth, err := authMethods(cfg)
	if err != nil {
		return nil, err
	}

	clientCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		Timeout:         cfg.Timeout,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	addr := net.JoinHostPort(cfg.Address, fmt.Sprintf("%d", cfg.Port))
	client, err := ssh.Dial("tcp", addr, clientCfg)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dial ssh host %s", addr)
	}
	return &sshExecutor{cfg: cfg, client: client}, nil
}

func authMethods(cfg SSHConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if cfg.PrivateKeyPath != "" {
		keyBytes, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read private key %s", cfg.PrivateKeyPath)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse private key %s", cfg.PrivateKeyPath)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}
	if len(methods) == 0 {
		return nil, errors.New("ssh executor requires a password or private key")
	}
	return methods, nil
}

func (s *sshExecutor) Execute(ctx context.Context, command string, args ...string) (*Result, error) {
	session, err := s.client.NewSession()
	if err != nil {
		return &Result{Cmd: command, ExitCode: -1}, errors.Wrap(err, "failed to open ssh session")
	}
	defer session.Close()

	full := command
	for _, a := range args {
		full += " " + shellQuote(a)
	}
	res := &Result{Cmd: full}

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- session.Run(full) }()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		res.ExitCode = -1
		return res, errors.Wrap(ctx.Err(), "ssh command canceled")
	case err = <-done:
	}

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	if err == nil {
		return res, nil
	}
	var exitErr *ssh.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitStatus()
		res.Signal = exitErr.Signal()
		return res, nil
	}
	res.ExitCode = -1
	return res, errors.Wrapf(err, "failed to run remote command %q", full)
}

func (s *sshExecutor) UploadFile(ctx context.Context, localPath, targetPath string, permissions os.FileMode) error {
	client, err := sftp.NewClient(s.client)
	if err != nil {
		return errors.Wrap(err, "failed to open sftp client")
	}
	defer client.Close()

	src, err := os.Open(localPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open source file %s", localPath)
	}
	defer src.Close()

	if err := client.MkdirAll(filepath.Dir(targetPath)); err != nil {
		return errors.Wrapf(err, "failed to create remote directory for %s", targetPath)
	}
	dst, err := client.Create(targetPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create remote file %s", targetPath)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrapf(err, "failed to upload %s to %s", localPath, targetPath)
	}
	return client.Chmod(targetPath, permissions)
}

func (s *sshExecutor) Close() error {
	return s.client.Close()
}

func shellQuote(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsAny(arg, " \t\n\"'\\$`&|;<>(){}*?#~") {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
