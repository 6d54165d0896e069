package report

// OutdatedEntry describes one package with a newer release available.
type OutdatedEntry struct {
	Name           string `json:"name" yaml:"name"`
	CurrentVersion string `json:"currentVersion" yaml:"currentVersion"`
	LatestVersion  string `json:"latestVersion" yaml:"latestVersion"`
	LatestStatus   string `json:"-" yaml:"latestStatus,omitempty"`
}

// AuditDocument is the rendered form of an audit run.
type AuditDocument struct {
	Used     []string        `json:"used" yaml:"used"`
	Unused   []string        `json:"unused" yaml:"unused"`
	Outdated []OutdatedEntry `json:"outdated" yaml:"outdated"`
}

// normalized replaces nil lists with empty ones so encoders emit [] instead of null.
func (document AuditDocument) normalized() AuditDocument {
	normalizedDocument := document
	if normalizedDocument.Used == nil {
		normalizedDocument.Used = []string{}
	}
	if normalizedDocument.Unused == nil {
		normalizedDocument.Unused = []string{}
	}
	if normalizedDocument.Outdated == nil {
		normalizedDocument.Outdated = []OutdatedEntry{}
	}
	return normalizedDocument
}

// PackageUsage records whether a declared package is referenced by the scanned sources.
type PackageUsage struct {
	Name string
	Used bool
}

// AnalysisDocument is the rendered form of an analyse run.
type AnalysisDocument struct {
	Packages   []PackageUsage
	OnlyUnused bool
}

// UsedNames returns the used package names in declaration order.
func (document AnalysisDocument) UsedNames() []string {
	return document.filterNames(true)
}

// UnusedNames returns the unused package names in declaration order.
func (document AnalysisDocument) UnusedNames() []string {
	return document.filterNames(false)
}

func (document AnalysisDocument) filterNames(used bool) []string {
	names := []string{}
	for _, packageUsage := range document.Packages {
		if packageUsage.Used == used {
			names = append(names, packageUsage.Name)
		}
	}
	return names
}
