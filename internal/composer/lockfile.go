package composer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

const (
	// DefaultLockFileNameConstant is the lock file name Composer writes in the project root.
	DefaultLockFileNameConstant = "composer.lock"

	manifestMissingMessageConstant       = "composer.lock file not found"
	manifestInvalidMessageConstant       = "composer.lock file is not valid JSON"
	manifestMissingErrorTemplateConstant = "%w: %s"
	manifestInvalidErrorTemplateConstant = "%w: %s: %v"
	manifestReadErrorTemplateConstant    = "unable to read %s: %w"
	namespaceMapObjectExpectedMessage    = "psr-4 autoload section must be an object"
	namespaceKeyExpectedMessage          = "psr-4 autoload key must be a string"
)

var (
	// ErrManifestMissing indicates the lock file does not exist.
	ErrManifestMissing = errors.New(manifestMissingMessageConstant)
	// ErrManifestInvalid indicates the lock file exists but cannot be decoded.
	ErrManifestInvalid = errors.New(manifestInvalidMessageConstant)

	errNamespaceMapObjectExpected = errors.New(namespaceMapObjectExpectedMessage)
	errNamespaceKeyExpected       = errors.New(namespaceKeyExpectedMessage)
)

// DeclaredPackage is a dependency listed in the lock file together with its PSR-4 namespace roots.
type DeclaredPackage struct {
	Name       string
	Version    string
	Namespaces []string
}

// PackageManifest holds the declared packages in lock file order.
type PackageManifest struct {
	Packages []DeclaredPackage
}

// Len returns the number of declared packages.
func (manifest PackageManifest) Len() int {
	return len(manifest.Packages)
}

// Names returns the package names in declaration order.
func (manifest PackageManifest) Names() []string {
	names := make([]string, 0, len(manifest.Packages))
	for _, declaredPackage := range manifest.Packages {
		names = append(names, declaredPackage.Name)
	}
	return names
}

// FileReader loads file contents.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// OSFileReader reads files from the local disk.
type OSFileReader struct{}

// ReadFile implements FileReader.
func (OSFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// LockFileLoader reads declared packages from composer.lock.
type LockFileLoader struct {
	lockFilePath       string
	includeDevelopment bool
	fileReader         FileReader
}

// NewLockFileLoader constructs a loader for the lock file at lockFilePath. When includeDevelopment is
// set, packages-dev entries are appended after the production packages.
func NewLockFileLoader(lockFilePath string, includeDevelopment bool, fileReader FileReader) *LockFileLoader {
	if fileReader == nil {
		fileReader = OSFileReader{}
	}
	return &LockFileLoader{lockFilePath: lockFilePath, includeDevelopment: includeDevelopment, fileReader: fileReader}
}

type lockFileDocument struct {
	Packages            []lockFilePackage `json:"packages"`
	DevelopmentPackages []lockFilePackage `json:"packages-dev"`
}

type lockFilePackage struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Autoload struct {
		PSR4 orderedNamespaceKeys `json:"psr-4"`
	} `json:"autoload"`
}

// orderedNamespaceKeys keeps the keys of a JSON object in document order.
type orderedNamespaceKeys []string

// UnmarshalJSON implements json.Unmarshaler.
func (keys *orderedNamespaceKeys) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))

	openingToken, tokenError := decoder.Token()
	if tokenError != nil {
		return tokenError
	}
	if openingToken == nil {
		*keys = nil
		return nil
	}
	if delimiter, isDelimiter := openingToken.(json.Delim); !isDelimiter || delimiter != '{' {
		// Composer writes an empty PSR-4 map as [].
		if isDelimiter && delimiter == '[' {
			*keys = nil
			return nil
		}
		return errNamespaceMapObjectExpected
	}

	collectedKeys := orderedNamespaceKeys{}
	for decoder.More() {
		keyToken, keyError := decoder.Token()
		if keyError != nil {
			return keyError
		}
		namespaceKey, isString := keyToken.(string)
		if !isString {
			return errNamespaceKeyExpected
		}

		var ignoredValue json.RawMessage
		if valueError := decoder.Decode(&ignoredValue); valueError != nil {
			return valueError
		}
		collectedKeys = append(collectedKeys, namespaceKey)
	}

	*keys = collectedKeys
	return nil
}

// LoadPackages reads the lock file and returns the declared packages. Later entries with a name
// already seen replace the earlier namespaces in place.
func (loader *LockFileLoader) LoadPackages() (PackageManifest, error) {
	lockFileContents, readError := loader.fileReader.ReadFile(loader.lockFilePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return PackageManifest{}, fmt.Errorf(manifestMissingErrorTemplateConstant, ErrManifestMissing, loader.lockFilePath)
		}
		return PackageManifest{}, fmt.Errorf(manifestReadErrorTemplateConstant, loader.lockFilePath, readError)
	}

	var document lockFileDocument
	if decodingError := json.Unmarshal(lockFileContents, &document); decodingError != nil {
		return PackageManifest{}, fmt.Errorf(manifestInvalidErrorTemplateConstant, ErrManifestInvalid, loader.lockFilePath, decodingError)
	}

	lockedPackages := document.Packages
	if loader.includeDevelopment {
		lockedPackages = append(append([]lockFilePackage{}, document.Packages...), document.DevelopmentPackages...)
	}

	manifest := PackageManifest{}
	packageIndexByName := make(map[string]int, len(lockedPackages))
	for _, lockedPackage := range lockedPackages {
		declaredPackage := DeclaredPackage{
			Name:       lockedPackage.Name,
			Version:    lockedPackage.Version,
			Namespaces: append([]string{}, lockedPackage.Autoload.PSR4...),
		}

		if existingIndex, seen := packageIndexByName[declaredPackage.Name]; seen {
			manifest.Packages[existingIndex] = declaredPackage
			continue
		}
		packageIndexByName[declaredPackage.Name] = len(manifest.Packages)
		manifest.Packages = append(manifest.Packages, declaredPackage)
	}

	return manifest, nil
}
