package ir

// Version constants for snapshot records and the engine.
const (
	// SnapshotVersion is the snapshot record schema version.
	SnapshotVersion = "1"

	// EngineVersion is the reqm engine version.
	EngineVersion = "0.1.0"
)
