package errors

// Kind is the closed enumeration of failure classes the workflow can report.
// Each kind has a fixed exit status so the shell contract stays stable.
type Kind string

const (
	// KindInput covers malformed or contradictory operator-provided values.
	KindInput Kind = "INPUT"
	// KindEnvironment covers missing privilege, connectivity, disk or tooling
	// detected before any host mutation.
	KindEnvironment Kind = "ENVIRONMENT"
	// KindNetwork covers unreachable repositories and failed clones.
	KindNetwork Kind = "NETWORK"
	// KindConfig covers invalid web-server configuration or failed reloads.
	KindConfig Kind = "CONFIG"
	// KindEnhancement covers best-effort extras (certificates, firewall);
	// these downgrade to warnings and never fail the run on their own.
	KindEnhancement Kind = "ENHANCEMENT"
	// KindVerification covers reachability shortfalls at the end of the run.
	KindVerification Kind = "VERIFICATION"
)

// ExitCode returns the process exit status associated with the kind.
func (k Kind) ExitCode() int {
	switch k {
	case KindInput:
		return 2
	case KindConfig:
		return 3
	case KindEnhancement:
		return 0
	case KindEnvironment, KindNetwork, KindVerification:
		return 1
	default:
		return 1
	}
}

// Fatal reports whether an error of this kind terminates the workflow.
func (k Kind) Fatal() bool {
	return k != KindEnhancement
}
