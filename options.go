package grammar

import (
	"strconv"

	"go.uber.org/zap"
)

// Flag toggles dialect leniency of the parser.
type Flag uint16

// Flag values.
const (
	FlagStarHack   Flag = 1 << iota // accept *property: value
	FlagIEValues                    // accept progid: values and \9 hacks as compat identifiers
	FlagIEPrio                      // accept !ie priority
	FlagIEPrioChar                  // accept a trailing ! after the value
)

// String returns the string representation of a Flag set.
func (f Flag) String() string {
	if f == 0 {
		return "None"
	}
	s := ""
	for _, fl := range []struct {
		Flag
		name string
	}{
		{FlagStarHack, "StarHack"},
		{FlagIEValues, "IEValues"},
		{FlagIEPrio, "IEPrio"},
		{FlagIEPrioChar, "IEPrioChar"},
	} {
		if f&fl.Flag != 0 {
			s += "|" + fl.name
			f &^= fl.Flag
		}
	}
	if f != 0 {
		s += "|Invalid(" + strconv.Itoa(int(f)) + ")"
	}
	return s[1:]
}

// Has returns true if all flags in g are set.
func (f Flag) Has(g Flag) bool {
	return f&g == g
}

////////////////////////////////////////////////////////////////

const (
	// DefaultMaxStreamSize is the default input size ceiling.
	DefaultMaxStreamSize = 100 << 20
	// MinMaxStreamSize is the floor applied to a configured ceiling.
	MinMaxStreamSize = 64 << 10
	// DefaultMaxEditNodes is the default node ceiling of a lexical arena.
	DefaultMaxEditNodes = 0x20000
	// MaxNestingDepth is the maximum nesting of boolean conditions.
	MaxNestingDepth = 32
)

// Options configures a parser once before use.
type Options struct {
	Flags         Flag
	MaxStreamSize int64
	MaxEditNodes  int
	Profile       *Profile
	Logger        *zap.Logger // receives recognizer tracing and warnings without an error handler
}

// DefaultOptions returns options with the default ceilings and the embedded profile.
func DefaultOptions() Options {
	return Options{
		MaxStreamSize: DefaultMaxStreamSize,
		MaxEditNodes:  DefaultMaxEditNodes,
		Profile:       DefaultProfile(),
		Logger:        zap.NewNop(),
	}
}

// StreamLimit returns the effective input size ceiling.
func (o Options) StreamLimit() int64 {
	if o.MaxStreamSize <= 0 {
		return DefaultMaxStreamSize
	} else if o.MaxStreamSize < MinMaxStreamSize {
		return MinMaxStreamSize
	}
	return o.MaxStreamSize
}

// EditLimit returns the effective lexical arena node ceiling.
func (o Options) EditLimit() int {
	if o.MaxEditNodes <= 0 {
		return DefaultMaxEditNodes
	}
	return o.MaxEditNodes
}

// GetProfile returns the configured profile or the default one.
func (o Options) GetProfile() *Profile {
	if o.Profile == nil {
		return DefaultProfile()
	}
	return o.Profile
}

// GetLogger returns the configured logger or a no-op one.
func (o Options) GetLogger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
