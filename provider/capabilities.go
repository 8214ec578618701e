package provider

// Capabilities describes a backend for the health endpoint and for callers
// deciding how much to trust its streaming behaviour.
type Capabilities struct {
	// Name is the registered provider name.
	Name string `json:"name"`

	// Remote is true when items are fetched from another catalog service.
	Remote bool `json:"remote"`

	// StreamsCursor is true when results are read lazily from a cursor or a
	// network stream rather than filtered from memory.
	StreamsCursor bool `json:"streams_cursor"`

	// SupportsCancel is true when closing a stream releases the backend work
	// (cursor, HTTP body, RPC call) before it finishes.
	SupportsCancel bool `json:"supports_cancel"`

	// Persistent is true when the data survives a restart of this process.
	Persistent bool `json:"persistent"`
}

var (
	MemoryCapabilities = Capabilities{
		Name:           "memory",
		SupportsCancel: true,
	}

	PostgresCapabilities = Capabilities{
		Name:           "postgres",
		StreamsCursor:  true,
		SupportsCancel: true,
		Persistent:     true,
	}

	SQLiteCapabilities = Capabilities{
		Name:           "sqlite",
		StreamsCursor:  true,
		SupportsCancel: true,
		Persistent:     true,
	}

	RemoteSSECapabilities = Capabilities{
		Name:           "sse",
		Remote:         true,
		StreamsCursor:  true,
		SupportsCancel: true,
	}

	RemoteGRPCCapabilities = Capabilities{
		Name:           "grpc",
		Remote:         true,
		StreamsCursor:  true,
		SupportsCancel: true,
	}
)
