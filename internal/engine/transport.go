package engine

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// Transport is the asynchronous line channel to an engine process. Send
// transmits one command; Lines delivers engine output one line at a time and
// is closed when the process goes away. A transport has exactly one owner.
type Transport interface {
	Send(cmd string) error
	Lines() <-chan string
	Close() error
}

// Process is a Transport backed by a spawned engine binary, speaking over
// its stdin/stdout pipes.
type Process struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string

	mu     sync.Mutex
	closed bool
}

// StartProcess spawns the engine binary and begins pumping its stdout into
// the line channel.
func StartProcess(path string) (*Process, error) {
	cmd := exec.Command(path)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", path, err)
	}

	p := &Process{
		cmd:   cmd,
		stdin: stdin,
		lines: make(chan string, 256),
	}

	go func() {
		defer close(p.lines)
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			p.lines <- scanner.Text()
		}
	}()

	return p, nil
}

// Send writes one command line to the engine's stdin.
func (p *Process) Send(cmd string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("transport closed")
	}
	if _, err := io.WriteString(p.stdin, cmd+"\n"); err != nil {
		return fmt.Errorf("send %q: %w", cmd, err)
	}
	return nil
}

// Lines returns the engine output channel. Closed when the process exits.
func (p *Process) Lines() <-chan string {
	return p.lines
}

// Close asks the engine to quit and reaps the process.
func (p *Process) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	_, _ = io.WriteString(p.stdin, "quit\n")
	_ = p.stdin.Close()
	p.mu.Unlock()
	return p.cmd.Wait()
}
