package ovpn

import (
	"regexp"
	"strings"
)

// Defaults holds the values used when a pattern is absent
type Defaults struct {
	Name     string
	Hostname string
	IP       string
}

// DefaultValues returns the stock fallbacks for unlabelled profiles
func DefaultValues() Defaults {
	return Defaults{
		Name:     "Unknown",
		Hostname: "pro-server",
		IP:       "219.100.37.119",
	}
}

// Metadata is what a profile tells us about its server
type Metadata struct {
	DisplayName string
	Hostname    string
	IP          string

	// Declared is set when a "server" identifier line was found
	Declared bool
}

// WithFallbackName replaces the display name of an undeclared profile
func (m Metadata) WithFallbackName(name string) Metadata {
	if !m.Declared {
		m.DisplayName = name
	}
	return m
}

type matchPolicy int

const (
	firstMatch matchPolicy = iota
	lastMatch
)

// lineMatcher captures the first group of pattern on a single line
type lineMatcher struct {
	pattern *regexp.Regexp
	policy  matchPolicy
}

// find returns the capture selected by the matcher policy
func (m lineMatcher) find(lines []string) (string, bool) {
	var (
		value string
		found bool
	)

	for _, line := range lines {
		match := m.pattern.FindStringSubmatch(line)
		if len(match) < 2 || match[1] == "" {
			continue
		}

		value, found = match[1], true
		if m.policy == firstMatch {
			break
		}
	}

	return value, found
}

var (
	serverMatcher = lineMatcher{
		pattern: regexp.MustCompile(`"server":\s*"([^"]+)"`),
		policy:  lastMatch,
	}
	remoteMatcher = lineMatcher{
		pattern: regexp.MustCompile(`^remote\s+(\d+\.\d+\.\d+\.\d+)`),
		policy:  firstMatch,
	}
	transportSuffix = regexp.MustCompile(`(?i)_(tcp|udp)$`)
)

// Parser extracts server metadata from OpenVPN profile text
type Parser struct {
	defaults Defaults
}

// NewParser creates a new profile parser
func NewParser(defaults Defaults) *Parser {
	return &Parser{defaults: defaults}
}

// Parse scans profile content line by line. It never fails, missing
// fields take the parser defaults.
func (p *Parser) Parse(content string) Metadata {
	lines := strings.Split(content, "\n")

	meta := Metadata{
		DisplayName: p.defaults.Name,
		Hostname:    p.defaults.Hostname,
		IP:          p.defaults.IP,
	}

	if server, ok := serverMatcher.find(lines); ok {
		meta.DisplayName = StripTransport(server)
		meta.Hostname = server
		meta.Declared = true
	}

	if ip, ok := remoteMatcher.find(lines); ok {
		meta.IP = ip
	}

	return meta
}

// StripTransport removes a trailing _tcp or _udp, in any case
func StripTransport(name string) string {
	return transportSuffix.ReplaceAllString(name, "")
}
