package domain

import (
	"strings"
	"testing"

	"cubenote/testutil"
)

// TestDomainImportsOnlyStdlib enforces the rule that the domain layer stays
// free of internal and third-party dependencies. Fast local feedback close to
// the code when editing the domain layer.
func TestDomainImportsOnlyStdlib(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"domain must not reach into internal packages")
	testutil.AssertNoDirectImports(t, ".", func(path string) bool {
		return strings.Contains(path, ".") && strings.Contains(path, "/")
	}, "domain must not import third-party packages")
}

// TestDomainNoTransitiveThirdParty closes the gap left by direct-import
// scanning: a stdlib-looking import chain still must not pull in module
// dependencies.
func TestDomainNoTransitiveThirdParty(t *testing.T) {
	testutil.AssertNoTransitiveDependency(t, ".", func(path string) bool {
		return strings.Contains(path, ".") && strings.Contains(path, "/") && !strings.HasPrefix(path, "cubenote/")
	}, "domain must stay stdlib-only")
}
