package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies the layout of one branch of a snapshot.
	LayoutKey(snapshotHash string, opts LayoutKeyOpts) string
	// RelationshipKey identifies the relationship of a to b in a snapshot.
	RelationshipKey(snapshotHash string, a, b int64) string
	// ArtifactKey identifies a rendered layout in one output format.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs of a layout besides the snapshot.
type LayoutKeyOpts struct {
	BranchID int64 `json:"branch_id"`
	Geometry any   `json:"geometry,omitempty"`
}

// ArtifactKeyOpts are the inputs of a rendering besides the layout.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", snapshotHash, opts)
}

// RelationshipKey implements Keyer. Relationships are directional, so a and
// b are not reordered.
func (DefaultKeyer) RelationshipKey(snapshotHash string, a, b int64) string {
	return fmt.Sprintf("relationship:%s:%d:%d", snapshotHash, a, b)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Hash returns the hex SHA-256 of data. Snapshot and layout hashes use it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns prefix:sha256(json(parts)).
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}
