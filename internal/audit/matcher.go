package audit

import (
	"strings"

	"github.com/selfphp/php-dependency-inspector/internal/composer"
	"github.com/selfphp/php-dependency-inspector/internal/usage"
)

// IsNamespaceUsed reports whether any used token is a prefix of the declared namespace or has it as a
// prefix. Separator boundaries are not enforced, so "Foo" also matches "FooBar".
func IsNamespaceUsed(declaredNamespace string, usedNamespaces usage.UsedNamespaceSet) bool {
	for usedToken := range usedNamespaces {
		usedNamespace := string(usedToken)
		if strings.HasPrefix(usedNamespace, declaredNamespace) || strings.HasPrefix(declaredNamespace, usedNamespace) {
			return true
		}
	}
	return false
}

// IsPackageUsed reports whether any namespace root of the package matches the used set.
// Packages without namespace roots are never used.
func IsPackageUsed(declaredPackage composer.DeclaredPackage, usedNamespaces usage.UsedNamespaceSet) bool {
	for _, declaredNamespace := range declaredPackage.Namespaces {
		if IsNamespaceUsed(declaredNamespace, usedNamespaces) {
			return true
		}
	}
	return false
}
