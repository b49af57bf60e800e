package ports

// KeyDeriver validates a private key and derives its address
type KeyDeriver interface {
	// Derive returns the checksummed address for key or core.ErrInvalidKeyFormat
	Derive(key string) (string, error)
}
