// Package registry locates and materializes artifacts in a local canonizer
// registry.
//
// A registry root is a .canonizer/ directory holding a config.yaml, a
// lock.json, and an artifact store (by default registry/ with schemas/ and
// transforms/ subtrees). Root discovery walks the directory chain upward
// from a starting directory; a global per-user root and an environment
// override are available as explicit fallbacks.
//
// # Root Resolution
//
// The API is two-step by design: FindLocalRoot walks upward from a
// directory, FindGlobalRoot consults the per-user home, and FindRoot
// composes the conventional chain. Callers wanting strict local-only
// semantics call FindLocalRoot directly.
//
// The CANONIZER_REGISTRY_ROOT environment variable, when set, bypasses
// root discovery entirely at the artifact resolvers.
//
// # Artifact Resolution
//
// ResolveSchema, ResolveTransform, and ResolveBody map parsed references
// to absolute paths under the registry store. Path construction never
// touches the filesystem; existence is asserted only when requested, and
// a missing required artifact surfaces as a *NotFoundError carrying the
// expected path and a remediation hint.
package registry
