package audit_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/selfphp/php-dependency-inspector/internal/audit"
	"github.com/selfphp/php-dependency-inspector/internal/composer"
	"github.com/selfphp/php-dependency-inspector/internal/usage"
)

func TestClassifyPartitionsDeclaredPackages(testInstance *testing.T) {
	manifest := composer.PackageManifest{Packages: []composer.DeclaredPackage{
		{Name: "monolog/monolog", Namespaces: []string{"Monolog\\"}},
		{Name: "guzzlehttp/guzzle", Namespaces: []string{"GuzzleHttp\\"}},
		{Name: "symfony/console", Namespaces: []string{"Symfony\\Component\\Console\\"}},
		{Name: "psr/log", Namespaces: []string{"Psr\\Log\\"}},
		{Name: "no/autoload", Namespaces: []string{}},
	}}
	usedNamespaces := usage.NewUsedNamespaceSet("Monolog\\Logger", "Symfony\\Component\\Console\\Application")

	classification := audit.Classify(manifest, usedNamespaces)

	require.Equal(testInstance, []string{"monolog/monolog", "symfony/console"}, classification.UsedPackages)
	require.Equal(testInstance, []string{"guzzlehttp/guzzle", "psr/log", "no/autoload"}, classification.UnusedPackages)

	seen := map[string]int{}
	for _, packageName := range append(append([]string{}, classification.UsedPackages...), classification.UnusedPackages...) {
		seen[packageName]++
	}
	require.Len(testInstance, seen, manifest.Len())
	for _, packageName := range manifest.Names() {
		require.Equal(testInstance, 1, seen[packageName])
	}
}

func TestClassifyEmptyManifest(testInstance *testing.T) {
	classification := audit.Classify(composer.PackageManifest{}, usage.NewUsedNamespaceSet("App"))

	require.NotNil(testInstance, classification.UsedPackages)
	require.NotNil(testInstance, classification.UnusedPackages)
	require.Empty(testInstance, classification.UsedPackages)
	require.Empty(testInstance, classification.UnusedPackages)
}
