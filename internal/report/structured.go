package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	jsonIndentConstant                = "    "
	jsonPrefixConstant                = ""
	yamlIndentConstant                = 2
	jsonEncodingErrorTemplateConstant = "unable to encode JSON report: %w"
	yamlEncodingErrorTemplateConstant = "unable to encode YAML report: %w"
)

// RenderAuditJSON renders the audit document as indented JSON with the keys used, unused, and outdated.
func RenderAuditJSON(document AuditDocument) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent(jsonPrefixConstant, jsonIndentConstant)

	if encodingError := encoder.Encode(document.normalized()); encodingError != nil {
		return nil, fmt.Errorf(jsonEncodingErrorTemplateConstant, encodingError)
	}

	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}

// RenderAuditYAML renders the audit document as YAML.
func RenderAuditYAML(document AuditDocument) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(yamlIndentConstant)

	if encodingError := encoder.Encode(document.normalized()); encodingError != nil {
		return nil, fmt.Errorf(yamlEncodingErrorTemplateConstant, encodingError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return nil, fmt.Errorf(yamlEncodingErrorTemplateConstant, closeError)
	}

	return buffer.Bytes(), nil
}
