package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// sessionFileName is the per-user session state file under ~/.toyagent.
// It remembers the active chat so consecutive `toyagent chat send` calls
// continue the same conversation.
const sessionFileName = "session.json"

// SessionStore reads and writes the per-user session state.
//
// The file is JSON and updated field-by-field with sjson so unknown fields
// written by other tool versions survive a round trip.
type SessionStore struct {
	// dir is the directory holding the session file.
	dir string
}

// NewSessionStore creates a session store rooted at ~/.toyagent.
//
// Returns:
//   - *SessionStore: A new store instance
func NewSessionStore() *SessionStore {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return &SessionStore{dir: filepath.Join(homeDir, ".toyagent")}
}

// NewSessionStoreWithDir creates a session store with a custom directory.
//
// Parameters:
//   - dir: The directory to store the session file in
//
// Returns:
//   - *SessionStore: A new store instance
func NewSessionStoreWithDir(dir string) *SessionStore {
	return &SessionStore{dir: dir}
}

// path returns the session file path.
func (s *SessionStore) path() string {
	return filepath.Join(s.dir, sessionFileName)
}

// ActiveChat returns the id of the last active chat, or empty string if
// none is recorded.
func (s *SessionStore) ActiveChat() string {
	data, err := os.ReadFile(s.path())
	if err != nil {
		return ""
	}
	return gjson.GetBytes(data, "active_chat_id").String()
}

// SetActiveChat records the active chat id and the time it was last used.
//
// Parameters:
//   - chatID: The chat id to record
//
// Returns:
//   - error: Any error that occurred
func (s *SessionStore) SetActiveChat(chatID string) error {
	data, err := os.ReadFile(s.path())
	if err != nil {
		data = []byte("{}")
	}

	data, err = sjson.SetBytes(data, "active_chat_id", chatID)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	data, err = sjson.SetBytes(data, "last_used_at", time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// ClearActiveChat removes the recorded active chat, e.g. after the chat is
// deleted on the backend.
//
// Returns:
//   - error: Any error that occurred
func (s *SessionStore) ClearActiveChat() error {
	data, err := os.ReadFile(s.path())
	if err != nil {
		return nil
	}

	data, err = sjson.DeleteBytes(data, "active_chat_id")
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}
