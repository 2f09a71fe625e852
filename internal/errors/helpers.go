package errors

import "time"

// New creates a generic AppError with the supplied metadata.
func New(code string, kind Kind, message string, err error) *AppError {
	return &AppError{
		Code:      code,
		Kind:      kind,
		Message:   message,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// InputError creates an INPUT kind error instance.
func InputError(code, message string, err error) *AppError {
	return New(code, KindInput, message, err)
}

// EnvironmentError creates an ENVIRONMENT kind error instance.
func EnvironmentError(code, message string, err error) *AppError {
	return New(code, KindEnvironment, message, err)
}

// NetworkError creates a NETWORK kind error instance.
func NetworkError(code, message string, err error) *AppError {
	return New(code, KindNetwork, message, err)
}

// ConfigError creates a CONFIG kind error instance.
func ConfigError(code, message string, err error) *AppError {
	return New(code, KindConfig, message, err)
}

// EnhancementWarning creates an ENHANCEMENT kind error instance.
// Callers report these and continue in degraded mode.
func EnhancementWarning(code, message string, err error) *AppError {
	return New(code, KindEnhancement, message, err)
}

// VerificationError creates a VERIFICATION kind error instance.
func VerificationError(code, message string, err error) *AppError {
	return New(code, KindVerification, message, err)
}
