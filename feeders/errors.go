package feeders

import "errors"

var (
	// ErrEnvInvalidStructure indicates the target is not a pointer to struct.
	ErrEnvInvalidStructure = errors.New("env: invalid structure")

	// ErrEnvEmptyPrefixAndSuffix indicates an affixed feeder with neither
	// prefix nor suffix.
	ErrEnvEmptyPrefixAndSuffix = errors.New("env: prefix or suffix cannot be empty")

	// ErrEnvFieldNotSettable indicates a tagged field that cannot be set.
	ErrEnvFieldNotSettable = errors.New("env: field is not settable")
)
