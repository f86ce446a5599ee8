// Package codes resolves djn-coding symbols against a controlled vocabulary.
//
// A Code can only be obtained through a Registry, so every Code held by a
// parsed document is known to exist in the vocabulary it was resolved against.
package codes

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var embeddedVocabulary []byte

// ErrInvalidCode is returned when a symbol is blank or not part of the vocabulary.
var ErrInvalidCode = errors.New("invalid code")

// InvalidCodeError carries the offending symbol and matches ErrInvalidCode.
type InvalidCodeError struct {
	Symbol string
}

func (e *InvalidCodeError) Error() string {
	if strings.TrimSpace(e.Symbol) == "" {
		return "invalid code: empty symbol"
	}
	return fmt.Sprintf("invalid code: %q", e.Symbol)
}

func (e *InvalidCodeError) Is(target error) bool {
	return target == ErrInvalidCode
}

// Axis is the coding dimension a symbol belongs to, taken from the letter
// before the slash.
type Axis string

const (
	AxisUnknown    Axis = ""
	AxisGovernment Axis = "government"
	AxisIndustry   Axis = "industry"
	AxisJournal    Axis = "journal"
	AxisMarket     Axis = "market"
	AxisSubject    Axis = "subject"
	AxisProduct    Axis = "product"
	AxisGeo        Axis = "geo"
	AxisStat       Axis = "stat"
)

var axisByPrefix = map[string]Axis{
	"G": AxisGovernment,
	"I": AxisIndustry,
	"J": AxisJournal,
	"M": AxisMarket,
	"N": AxisSubject,
	"P": AxisProduct,
	"R": AxisGeo,
	"S": AxisStat,
}

func axisOf(symbol string) Axis {
	prefix, _, ok := strings.Cut(symbol, "/")
	if !ok {
		return AxisUnknown
	}
	return axisByPrefix[prefix]
}

// Code is a resolved vocabulary entry. Two codes resolved from the same
// symbol compare equal with ==.
type Code struct {
	symbol string
	name   string
}

// Symbol returns the code symbol, e.g. "N/GEN".
func (c Code) Symbol() string { return c.symbol }

// Name returns the human-readable category name, e.g. "General News".
func (c Code) Name() string { return c.name }

// Axis returns the coding dimension encoded in the symbol prefix.
func (c Code) Axis() Axis { return axisOf(c.symbol) }

func (c Code) String() string { return c.symbol }

// Equal reports whether both codes carry the same symbol and name.
func (c Code) Equal(other Code) bool { return c == other }

// IsZero reports whether c was never resolved.
func (c Code) IsZero() bool { return c.symbol == "" }

func (c Code) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
		Axis   Axis   `json:"axis,omitempty"`
	}{c.symbol, c.name, c.Axis()})
}

// Registry is a read-only symbol table. It is safe for concurrent use.
type Registry struct {
	names map[string]string
}

type vocabularyFile struct {
	Codes map[string]string `yaml:"codes"`
}

// NewRegistry builds a registry from symbol -> name pairs.
func NewRegistry(names map[string]string) *Registry {
	m := make(map[string]string, len(names))
	for symbol, name := range names {
		m[symbol] = name
	}
	return &Registry{names: m}
}

// LoadRegistry reads a YAML vocabulary with a top-level "codes" mapping.
func LoadRegistry(r io.Reader) (*Registry, error) {
	var vf vocabularyFile
	if err := yaml.NewDecoder(r).Decode(&vf); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	if len(vf.Codes) == 0 {
		return nil, errors.New("decode vocabulary: no codes defined")
	}
	for symbol := range vf.Codes {
		if strings.TrimSpace(symbol) == "" {
			return nil, errors.New("decode vocabulary: blank symbol")
		}
	}
	return NewRegistry(vf.Codes), nil
}

// LoadRegistryFile is LoadRegistry over a file on disk.
func LoadRegistryFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary: %w", err)
	}
	defer func() { _ = f.Close() }()
	return LoadRegistry(f)
}

// Resolve looks up symbol. Blank and unknown symbols yield an *InvalidCodeError.
func (r *Registry) Resolve(symbol string) (Code, error) {
	if strings.TrimSpace(symbol) == "" {
		return Code{}, &InvalidCodeError{Symbol: symbol}
	}
	name, ok := r.names[symbol]
	if !ok {
		return Code{}, &InvalidCodeError{Symbol: symbol}
	}
	return Code{symbol: symbol, name: name}, nil
}

// ResolveAll resolves every symbol in order and stops at the first invalid one.
func (r *Registry) ResolveAll(symbols []string) ([]Code, error) {
	out := make([]Code, 0, len(symbols))
	for _, s := range symbols {
		c, err := r.Resolve(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Len returns the number of known symbols.
func (r *Registry) Len() int { return len(r.names) }

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry built from the embedded vocabulary.
func Default() *Registry {
	defaultOnce.Do(func() {
		reg, err := LoadRegistry(strings.NewReader(string(embeddedVocabulary)))
		if err != nil {
			panic(fmt.Sprintf("codes: embedded vocabulary: %v", err))
		}
		defaultRegistry = reg
	})
	return defaultRegistry
}

// Resolve resolves symbol against the default registry.
func Resolve(symbol string) (Code, error) {
	return Default().Resolve(symbol)
}
