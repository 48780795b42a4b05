// Copyright (C) 2026 ScyllaDB

package naming

const (
	// EnvVarPrefix is prepended to flag names to build the environment variables that can set them.
	EnvVarPrefix = "KEYREQUEST_"

	ProgramName = "keyrequest"
)
