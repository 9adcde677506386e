package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Directive is the interpreter line at the top of every audit log. With
// env -S the log file is directly executable: running it invokes
// `sb replay <logfile>`, which feeds the recorded command lines back through
// the normal dispatch path.
const Directive = "#!/usr/bin/env -S sb replay"

func (s *Store) logPath() string {
	return filepath.Join(s.Dir(), logFileName)
}

// LogPath returns the audit log location.
func (s *Store) LogPath() string { return s.logPath() }

// AppendLog appends lines to the audit log, creating it (with the interpreter
// directive and execute permission) on first write.
func (s *Store) AppendLog(lines ...string) error {
	if len(lines) == 0 {
		return nil
	}
	if err := os.MkdirAll(s.Dir(), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	fresh := false
	if _, err := os.Stat(s.logPath()); os.IsNotExist(err) {
		fresh = true
	}

	f, err := os.OpenFile(s.logPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0755)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	if fresh {
		b.WriteString(Directive + "\n")
	}
	for _, line := range lines {
		b.WriteString(line + "\n")
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}

// ReadLog returns the raw audit log contents, or "" when no log exists yet.
func (s *Store) ReadLog() (string, error) {
	data, err := os.ReadFile(s.logPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read audit log: %w", err)
	}
	return string(data), nil
}
