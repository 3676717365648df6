// Package identity manages the node's persistent identity. Peers key their
// trust records to it, so it must survive restarts.
package identity

// #region imports
import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// #endregion imports

// #region identity

// Identity is the node's stable ID plus a short fingerprint for logs.
type Identity struct {
	NodeID      string
	Fingerprint string
}

// Load reads the node ID from path, creating and persisting a fresh one on
// first start. The file is written 0600.
func Load(path string) (Identity, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if _, perr := uuid.Parse(id); perr != nil {
			return Identity{}, fmt.Errorf("corrupt node id in %s: %w", path, perr)
		}
		return fromID(id), nil
	}
	if !os.IsNotExist(err) {
		return Identity{}, fmt.Errorf("read node id: %w", err)
	}

	id := uuid.New().String()
	if err := os.WriteFile(path, []byte(id+"\n"), 0600); err != nil {
		return Identity{}, fmt.Errorf("write node id: %w", err)
	}
	return fromID(id), nil
}

func fromID(id string) Identity {
	sum := sha256.Sum256([]byte(id))
	return Identity{
		NodeID:      id,
		Fingerprint: hex.EncodeToString(sum[:4]),
	}
}

// #endregion identity
