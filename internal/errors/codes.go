package errors

// Error code definitions used as sensible defaults across modules.
const (
	CodeInputGeneric       = "INP-000"
	CodeInputSubdomain     = "INP-001"
	CodeInputRepoURL       = "INP-002"
	CodeInputCredentials   = "INP-003"
	CodeInputAnswer        = "INP-004"
	CodeInputEmail         = "INP-005"
	CodeEnvGeneric         = "ENV-000"
	CodeEnvPrivilege       = "ENV-001"
	CodeEnvPreflight       = "ENV-002"
	CodeEnvDirectory       = "ENV-003"
	CodeEnvPackages        = "ENV-004"
	CodeNetworkGeneric     = "NET-000"
	CodeNetworkUnreachable = "NET-001"
	CodeNetworkClone       = "NET-002"
	CodeConfigGeneric      = "CFG-000"
	CodeConfigValidate     = "CFG-001"
	CodeConfigReload       = "CFG-002"
	CodeEnhancementCert    = "ENH-001"
	CodeEnhancementFw      = "ENH-002"
	CodeVerifyProbe        = "VRF-001"
)
