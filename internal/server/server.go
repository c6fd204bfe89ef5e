// Package server manages the served application's process: start, stop,
// restart after a checkout, and cache invalidation.
package server

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mleclerc/gitshot/internal/config"
)

// Server supervises one dev-server process for the project under capture.
type Server struct {
	projectPath string
	command     string
	port        int
	cacheDir    string
	out         io.Writer

	settleDelay  time.Duration
	restartPause time.Duration

	cmd *exec.Cmd
}

// New creates a Server from the project path and server config. The
// default command serves the project's public/ directory with PHP's
// built-in server, matching the original workflow.
func New(projectPath string, cfg config.Server, out io.Writer) *Server {
	command := cfg.Command
	if command == "" {
		command = fmt.Sprintf("php -S 127.0.0.1:%d -t public/", cfg.Port)
	}
	return &Server{
		projectPath:  projectPath,
		command:      command,
		port:         cfg.Port,
		cacheDir:     cfg.CacheDir,
		out:          out,
		settleDelay:  2 * time.Second,
		restartPause: 1 * time.Second,
	}
}

// BaseURL returns the address captures are resolved against.
func (s *Server) BaseURL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", s.port)
}

// Start spawns the server process and waits a settle period for it to
// bind. No-op when already running.
func (s *Server) Start() error {
	if s.cmd != nil {
		return nil
	}
	cmd := exec.Command("sh", "-c", s.command)
	cmd.Dir = s.projectPath
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	s.cmd = cmd
	time.Sleep(s.settleDelay)
	fmt.Fprintf(s.out, "server started on %s\n", s.BaseURL())
	return nil
}

// Stop terminates the server process and reaps it. Safe before Start.
func (s *Server) Stop() error {
	if s.cmd == nil {
		return nil
	}
	cmd := s.cmd
	s.cmd = nil
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		_ = cmd.Process.Kill()
	}
	// The process exits by signal; the non-zero status is expected.
	_ = cmd.Wait()
	fmt.Fprintf(s.out, "server stopped\n")
	return nil
}

// Restart bounces the process so a freshly checked-out tree is served.
func (s *Server) Restart() error {
	if err := s.Stop(); err != nil {
		return err
	}
	time.Sleep(s.restartPause)
	return s.Start()
}

// ClearCache removes the project's build cache directory so the next
// request rebuilds against the checked-out tree.
func (s *Server) ClearCache() error {
	dir := filepath.Join(s.projectPath, s.cacheDir)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear cache %s: %w", dir, err)
	}
	fmt.Fprintf(s.out, "  cache cleared\n")
	return nil
}
