package pipeline

import (
	"encoding/base64"

	"ovpnapi/internal/country"
	"ovpnapi/internal/generator"
	"ovpnapi/internal/ovpn"
	"ovpnapi/pkg/models"
)

// Converter turns one profile into a server record
type Converter struct {
	parser   *ovpn.Parser
	resolver country.Resolver
	gen      *generator.Generator
}

// NewConverter creates a converter from its collaborators
func NewConverter(parser *ovpn.Parser, resolver country.Resolver, gen *generator.Generator) *Converter {
	return &Converter{
		parser:   parser,
		resolver: resolver,
		gen:      gen,
	}
}

// Convert builds the record for content. When fallbackName is not
// empty it replaces the display name of a profile without a declared
// server identifier.
func (c *Converter) Convert(content []byte, fallbackName string) models.ServerRecord {
	meta := c.parser.Parse(string(content))
	if fallbackName != "" {
		meta = meta.WithFallbackName(fallbackName)
	}

	record := c.gen.Generate(meta.DisplayName, c.resolver.Resolve(meta.DisplayName), meta.Hostname)
	record.IP = meta.IP
	record.ConfigBase64 = base64.StdEncoding.EncodeToString(content)

	return record
}
