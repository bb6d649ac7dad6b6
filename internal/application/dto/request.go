// Package dto contains data transfer objects for application layer use cases.
package dto

// EnvironmentRequest encapsulates all inputs needed to build an environment.
type EnvironmentRequest struct {
	// Requests are requirement strings such as "maya-2025" or "redshift".
	Requests []string

	// BaseEnviron seeds the context (KEY=VALUE pairs, the shape of os.Environ()).
	BaseEnviron []string

	// LockfilePath, when set, receives a lockfile of the resolved environment.
	LockfilePath string

	// FromLockfile recreates the environment pinned by an existing lockfile.
	// Requests must be empty when it is set.
	FromLockfile string
}

// BuildCommandRequest encapsulates inputs for rendering a build command.
type BuildCommandRequest struct {
	// Request selects the package ("blender-4.3").
	Request string

	// Values are placeholder values keyed by placeholder name.
	Values map[string]string

	// Strict fails on missing late-bound placeholders instead of keeping them.
	Strict bool
}
