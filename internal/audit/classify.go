package audit

import (
	"github.com/selfphp/php-dependency-inspector/internal/composer"
	"github.com/selfphp/php-dependency-inspector/internal/usage"
)

// Classify splits the declared packages into used and unused lists, both in declaration order.
func Classify(manifest composer.PackageManifest, usedNamespaces usage.UsedNamespaceSet) Classification {
	classification := Classification{UsedPackages: []string{}, UnusedPackages: []string{}}
	for _, declaredPackage := range manifest.Packages {
		if IsPackageUsed(declaredPackage, usedNamespaces) {
			classification.UsedPackages = append(classification.UsedPackages, declaredPackage.Name)
			continue
		}
		classification.UnusedPackages = append(classification.UnusedPackages, declaredPackage.Name)
	}
	return classification
}
