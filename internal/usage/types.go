package usage

import (
	"sort"
	"strings"
)

const namespaceSeparatorConstant = `\`

// NamespaceToken is a qualified PHP name with surrounding namespace separators removed.
type NamespaceToken string

// NormalizeNamespaceToken trims leading and trailing separators and reports whether anything remains.
func NormalizeNamespaceToken(rawToken string) (NamespaceToken, bool) {
	trimmedToken := strings.Trim(rawToken, namespaceSeparatorConstant)
	if len(trimmedToken) == 0 {
		return "", false
	}
	return NamespaceToken(trimmedToken), true
}

// UsedNamespaceSet collects the distinct namespace tokens observed while scanning.
type UsedNamespaceSet map[NamespaceToken]struct{}

// NewUsedNamespaceSet builds a set seeded with the provided tokens.
func NewUsedNamespaceSet(tokens ...NamespaceToken) UsedNamespaceSet {
	namespaceSet := make(UsedNamespaceSet, len(tokens))
	for _, token := range tokens {
		namespaceSet.Add(token)
	}
	return namespaceSet
}

// Add inserts the token; empty tokens are ignored.
func (namespaceSet UsedNamespaceSet) Add(token NamespaceToken) {
	if len(token) == 0 {
		return
	}
	namespaceSet[token] = struct{}{}
}

// Contains reports whether the exact token was observed.
func (namespaceSet UsedNamespaceSet) Contains(token NamespaceToken) bool {
	_, exists := namespaceSet[token]
	return exists
}

// Len returns the number of distinct tokens.
func (namespaceSet UsedNamespaceSet) Len() int {
	return len(namespaceSet)
}

// Tokens returns the tokens in lexical order.
func (namespaceSet UsedNamespaceSet) Tokens() []NamespaceToken {
	tokens := make([]NamespaceToken, 0, len(namespaceSet))
	for token := range namespaceSet {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(firstIndex int, secondIndex int) bool {
		return tokens[firstIndex] < tokens[secondIndex]
	})
	return tokens
}
