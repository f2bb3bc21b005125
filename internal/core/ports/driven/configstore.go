package driven

// ConfigStore reads and writes settings addressed by dotted key,
// such as "ledger.backend". Typed lookups report false when the key is
// absent or holds a value of another type.
type ConfigStore interface {
	Lookup(key string) (any, bool)
	String(key string) (string, bool)
	// Int accepts whole numbers only.
	Int(key string) (int64, bool)
	// Float also accepts whole numbers.
	Float(key string) (float64, bool)

	// Set persists before returning.
	Set(key string, value any) error

	// Path is the backing file, shown to operators in errors.
	Path() string
}
