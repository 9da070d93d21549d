package generator

import (
	"math/rand/v2"
	"strconv"

	"ovpnapi/pkg/models"
)

// Fixed listing values
const (
	DefaultIP = "219.100.37.119"
	LogType   = "2weeks"
	Operator  = "Pro Users."
)

// Source is the randomness a Generator draws from.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
	Float64() float64
}

type globalSource struct{}

func (globalSource) IntN(n int) int   { return rand.IntN(n) }
func (globalSource) Float64() float64 { return rand.Float64() }

// Global returns the process-wide source
func Global() Source {
	return globalSource{}
}

// NewSource returns a deterministic source for the given seed
func NewSource(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// IntRange is an inclusive integer range
type IntRange struct {
	Min, Max int
}

// DecimalRange is a decimal range rendered with a fixed number of digits
type DecimalRange struct {
	Min, Max float64
	Digits   int
}

// Ranges used for every synthetic record
var (
	ScoreRange    = IntRange{70, 100}
	PingRange     = IntRange{5, 50}
	SessionsRange = IntRange{10, 500}
	UsersRange    = IntRange{1000, 50000}
	SpeedRange    = DecimalRange{20, 100, 2}
	UptimeRange   = DecimalRange{95, 100, 1}
	TrafficRange  = DecimalRange{10, 1000, 2}
)

// Generator fabricates server statistics
type Generator struct {
	src Source
}

// New creates a generator drawing from src, or from the global source
// when src is nil
func New(src Source) *Generator {
	if src == nil {
		src = Global()
	}
	return &Generator{src: src}
}

// Generate builds a record for the given country and hostname.
// IP starts at DefaultIP and the config payload is left empty.
func (g *Generator) Generate(countryLong, countryShort, hostname string) models.ServerRecord {
	return models.ServerRecord{
		Hostname:       hostname,
		IP:             DefaultIP,
		Score:          g.Int(ScoreRange),
		Ping:           g.Int(PingRange),
		Speed:          g.Decimal(SpeedRange),
		CountryLong:    countryLong,
		CountryShort:   countryShort,
		NumVPNSessions: g.Int(SessionsRange),
		Uptime:         g.Decimal(UptimeRange),
		TotalUsers:     g.Int(UsersRange),
		TotalTraffic:   g.Decimal(TrafficRange),
		LogType:        LogType,
		Operator:       Operator,
		Message:        "",
	}
}

// Int draws a uniform integer in r and formats it in base 10
func (g *Generator) Int(r IntRange) string {
	return strconv.Itoa(r.Min + g.src.IntN(r.Max-r.Min+1))
}

// Decimal draws a uniform value in r and formats it with r.Digits
// fraction digits
func (g *Generator) Decimal(r DecimalRange) string {
	v := g.src.Float64()*(r.Max-r.Min) + r.Min
	return strconv.FormatFloat(v, 'f', r.Digits, 64)
}
