package usage

import "regexp"

var (
	namespaceDeclarationPattern = regexp.MustCompile(`namespace\s+([^;]+);`)
	symbolReferencePattern      = regexp.MustCompile(`(?:use|new|extends|implements)\s+([\\\w]+)`)
)

// SymbolExtraction holds the tokens found in a single source file.
type SymbolExtraction struct {
	Namespace    NamespaceToken
	HasNamespace bool
	References   []NamespaceToken
}

// Tokens returns the declared namespace (when present) followed by every reference in file order.
func (extraction SymbolExtraction) Tokens() []NamespaceToken {
	tokens := make([]NamespaceToken, 0, len(extraction.References)+1)
	if extraction.HasNamespace {
		tokens = append(tokens, extraction.Namespace)
	}
	return append(tokens, extraction.References...)
}

// ExtractSymbols lexically extracts the first namespace declaration and every name that follows
// a use, new, extends, or implements keyword. Comments and string literals are not excluded.
func ExtractSymbols(content string) SymbolExtraction {
	var extraction SymbolExtraction

	if declarationMatch := namespaceDeclarationPattern.FindStringSubmatch(content); declarationMatch != nil {
		extraction.Namespace, extraction.HasNamespace = NormalizeNamespaceToken(declarationMatch[1])
	}

	for _, referenceMatch := range symbolReferencePattern.FindAllStringSubmatch(content, -1) {
		token, valid := NormalizeNamespaceToken(referenceMatch[1])
		if !valid {
			continue
		}
		extraction.References = append(extraction.References, token)
	}

	return extraction
}
