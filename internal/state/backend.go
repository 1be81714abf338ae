package state

// PersistenceBackend stores text under a key. Get reports ok=false when
// nothing is stored.
type PersistenceBackend interface {
	Get(key string) (text string, ok bool, err error)
	Set(key, text string) error
}

// FragmentBackend reads and writes the URL-fragment equivalent.
type FragmentBackend interface {
	Read() (string, error)
	Write(text string) error
}

// CompressionCodec compresses payload text for fragment transport.
type CompressionCodec interface {
	Compress(text string) ([]byte, error)
	Decompress(data []byte) (string, error)
}

// MemoryFragment is a FragmentBackend holding the fragment in memory.
type MemoryFragment struct {
	Text string
}

var _ FragmentBackend = (*MemoryFragment)(nil)

// Read implements FragmentBackend.
func (f *MemoryFragment) Read() (string, error) { return f.Text, nil }

// Write implements FragmentBackend.
func (f *MemoryFragment) Write(text string) error {
	f.Text = text
	return nil
}
