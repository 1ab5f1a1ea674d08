//go:build !darwin

package permissions

type platformGate struct{}

// EnsureMicrophone is granted unconditionally on platforms without a
// per-application microphone permission model.
func (platformGate) EnsureMicrophone() error {
	return nil
}
