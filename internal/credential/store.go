package credential

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/example/scripthub/internal/logging"
)

const (
	defaultHelperCommand = "git"
	defaultProtocol      = "https"
	passwordKey          = "password"
)

// Store looks tokens up through "git credential fill".
type Store struct {
	// Command is the executable invoked with "credential fill". Defaults to git.
	Command  string
	Protocol string
	Host     string
}

// NewStore returns a Store querying command for https://host.
func NewStore(command, host string) *Store {
	return &Store{Command: command, Protocol: defaultProtocol, Host: host}
}

// FillResult is the raw outcome of one helper invocation. Stderr and ExitCode
// are kept so callers can tell a refusal from a malfunction if they need to.
type FillResult struct {
	Password string
	Found    bool
	ExitCode int
	Stderr   string
}

func (s *Store) Name() string {
	return "credential-store"
}

// Request returns the descriptor written to the helper's stdin.
func (s *Store) Request() []byte {
	protocol := s.Protocol
	if protocol == "" {
		protocol = defaultProtocol
	}
	return []byte("protocol=" + protocol + "\nhost=" + s.Host + "\n\n")
}

// Lookup implements Source.
func (s *Store) Lookup(ctx context.Context) (string, bool, error) {
	res, err := s.Fill(ctx)
	if err != nil {
		return "", false, err
	}
	if !res.Found {
		return "", false, nil
	}
	return res.Password, true, nil
}

// Fill runs the helper once. A non-zero exit is a miss, not an error; only a
// failure to start or wait for the process is returned as *ExecError.
func (s *Store) Fill(ctx context.Context) (FillResult, error) {
	command := s.Command
	if command == "" {
		command = defaultHelperCommand
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, command, "credential", "fill")
	cmd.Stdin = bytes.NewReader(s.Request())
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	hideWindow(cmd)

	logging.Debugf("running %s credential fill for host %s", command, s.Host)
	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		return FillResult{}, &ExecError{Command: command, Err: ctx.Err()}
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		res := FillResult{ExitCode: exitErr.ExitCode(), Stderr: stderr.String()}
		logging.Debugf("%s credential fill exited with %d: %s", command, res.ExitCode, strings.TrimSpace(res.Stderr))
		return res, nil
	case err != nil:
		return FillResult{}, &ExecError{Command: command, Err: err}
	}

	password, found := parsePassword(stdout.Bytes())
	return FillResult{Password: password, Found: found, Stderr: stderr.String()}, nil
}

// parsePassword returns the first non-empty "password" value. Empty
// password lines are skipped.
func parsePassword(output []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		key, value, ok := strings.Cut(line, "=")
		if !ok || key != passwordKey {
			continue
		}
		if value == "" {
			continue
		}
		return value, true
	}
	return "", false
}
