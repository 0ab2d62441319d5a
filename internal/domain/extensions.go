package domain

import "fmt"

const (
	MaxExtensionKeyLength   = 100
	MaxExtensionValueLength = 1024
)

// Extensions carries caller-defined string metadata on an entity. Keys are
// unique by construction; bounds are enforced at the engine boundary.
type Extensions map[string]string

func (e Extensions) Validate() error {
	for k, v := range e {
		if k == "" {
			return fmt.Errorf("extension key must not be empty")
		}
		if len(k) > MaxExtensionKeyLength {
			return fmt.Errorf("extension key %q too long", k[:MaxExtensionKeyLength])
		}
		if len(v) > MaxExtensionValueLength {
			return fmt.Errorf("extension value for key %q too long", k)
		}
	}
	return nil
}

func (e Extensions) Clone() Extensions {
	if e == nil {
		return nil
	}
	out := make(Extensions, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

func (e Extensions) Equal(other Extensions) bool {
	if len(e) != len(other) {
		return false
	}
	for k, v := range e {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
