package listing

import "strings"

// Tri is a three valued flag: a raw attribute either clearly says yes,
// clearly says no, or says nothing usable
type Tri int8

const (
	// Unknown never satisfies a yes or a no filter
	Unknown Tri = iota
	// True is a resolved yes
	True
	// False is a resolved no
	False
)

func (t Tri) String() string {
	switch t {
	case True:
		return "yes"
	case False:
		return "no"
	default:
		return "unknown"
	}
}

// ParseTri reads the wire names yes and no; anything else is Unknown
func ParseTri(s string) Tri {
	switch s {
	case "yes":
		return True
	case "no":
		return False
	default:
		return Unknown
	}
}

// MarshalText encodes the wire name
func (t Tri) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText decodes the wire name
func (t *Tri) UnmarshalText(b []byte) error {
	*t = ParseTri(string(b))
	return nil
}

// FlagTokens is a versioned coercion table for marked strings. Matching is
// case insensitive on the trimmed value
type FlagTokens struct {
	Version     string
	Affirmative []string
	Negative    []string

	index map[string]Tri
}

// FlagTokensV1 is the table listing documents have been written against.
// Keep it exactly as is; a new table gets a new version
var FlagTokensV1 = NewFlagTokens("v1",
	[]string{"true", "yes", "y", "on", "1", "evet", "var", "ja", "oui", "si", "sí"},
	[]string{"false", "no", "n", "off", "0", "hayır", "hayir", "yok", "nein", "non"},
)

// NewFlagTokens builds a lookup table
func NewFlagTokens(version string, yes, no []string) FlagTokens {
	t := FlagTokens{
		Version:     version,
		Affirmative: yes,
		Negative:    no,
		index:       make(map[string]Tri, len(yes)+len(no)),
	}
	for _, s := range yes {
		t.index[strings.ToLower(s)] = True
	}
	for _, s := range no {
		t.index[strings.ToLower(s)] = False
	}
	return t
}

// Coerce resolves a raw attribute: booleans pass through, the numbers 1 and 0
// map to yes and no, strings go through the token table. Everything else is Unknown
func (t FlagTokens) Coerce(v Value) Tri {
	switch v.kind {
	case KindBool:
		if v.b {
			return True
		}
		return False
	case KindNumber:
		switch v.f {
		case 1:
			return True
		case 0:
			return False
		}
		return Unknown
	case KindString:
		return t.index[strings.ToLower(strings.TrimSpace(v.s))]
	default:
		return Unknown
	}
}

// Flag coerces v with FlagTokensV1
func Flag(v Value) Tri { return FlagTokensV1.Coerce(v) }
