package wallet

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

const (
	// MaxHardenedValue is the max value for hardened indexes of BIP32
	// derivation paths
	MaxHardenedValue = hdkeychain.HardenedKeyStart - 1

	// AccountIndexPlaceholder is the path element of a PathTemplate replaced
	// with the index of the account when enumerating sequential accounts.
	AccountIndexPlaceholder = "x"

	// DefaultPathTemplate m/44'/60'/0'/0/x
	DefaultPathTemplate PathTemplate = "m/44'/60'/0'/0/x"
)

var (
	// DefaultBaseDerivationPath m/44'/60'/0'/0
	DefaultBaseDerivationPath = DerivationPath{
		hdkeychain.HardenedKeyStart + 44,
		hdkeychain.HardenedKeyStart + 60,
		hdkeychain.HardenedKeyStart + 0,
		0,
	}
	// DefaultDerivationPath m/44'/60'/0'/0/0
	DefaultDerivationPath = append(DefaultBaseDerivationPath.Clone(), 0)
)

// Index is a single step of a derivation path.
type Index struct {
	Value    uint32
	Hardened bool
}

// NewIndex returns the Index encoded in the given BIP32 child number.
func NewIndex(childNumber uint32) Index {
	if childNumber >= hdkeychain.HardenedKeyStart {
		return Index{childNumber - hdkeychain.HardenedKeyStart, true}
	}
	return Index{childNumber, false}
}

// ChildNumber returns the BIP32 child number, biased by 2^31 if hardened.
func (i Index) ChildNumber() uint32 {
	if i.Hardened {
		return i.Value + hdkeychain.HardenedKeyStart
	}
	return i.Value
}

func (i Index) String() string {
	if i.Hardened {
		return fmt.Sprintf("%d'", i.Value)
	}
	return strconv.FormatUint(uint64(i.Value), 10)
}

// DerivationPath is the internal representation of a hierarchical
// deterministic wallet account
type DerivationPath []uint32

// NewDerivationPath builds a path out of a list of indexes.
func NewDerivationPath(indexes ...Index) (DerivationPath, error) {
	path := make(DerivationPath, 0, len(indexes))
	for _, i := range indexes {
		if i.Value > MaxHardenedValue {
			return nil, ErrOutOfRangeIndex
		}
		path = append(path, i.ChildNumber())
	}
	return path, nil
}

// ParseDerivationPath converts a derivation path string to the
// internal binary representation
func ParseDerivationPath(strPath string) (DerivationPath, error) {
	var path DerivationPath

	elems := strings.Split(strPath, "/")
	switch {
	case strPath == "":
		return nil, ErrNullDerivationPath

	case containsEmptyString(elems):
		return nil, ErrMalformedDerivationPath
	case len(elems) < 2:
		return nil, ErrMalformedDerivationPath

	default:
		if elems[0] == "m" {
			elems = elems[1:]
		}
	}

	// all remaining elems are relative, append one by one
	for _, elem := range elems {
		var value uint32

		if strings.HasSuffix(elem, "'") {
			value = hdkeychain.HardenedKeyStart
			elem = strings.TrimSuffix(elem, "'")
		}

		if !isDecimal(elem) {
			return nil, fmt.Errorf("%w: invalid elem '%s'", ErrInvalidDerivationPath, elem)
		}
		index, err := strconv.ParseUint(elem, 10, 32)
		if err != nil || index > uint64(math.MaxUint32-value) {
			max := math.MaxUint32 - value
			if value == 0 {
				return nil, fmt.Errorf(
					"%w: elem %s must be in range [0, %d]", ErrInvalidDerivationPath, elem, max,
				)
			}
			return nil, fmt.Errorf(
				"%w: elem %s must be in hardened range [0, %d]", ErrInvalidDerivationPath, elem, max,
			)
		}
		value += uint32(index)

		path = append(path, value)
	}

	return path, nil
}

// isDecimal reports whether s is a non-empty run of ASCII digits.
func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// MustParseDerivationPath is like ParseDerivationPath but panics on error.
func MustParseDerivationPath(strPath string) DerivationPath {
	path, err := ParseDerivationPath(strPath)
	if err != nil {
		panic(err)
	}
	return path
}

// String converts a binary derivation path to its canonical representation
func (path DerivationPath) String() string {
	if len(path) <= 0 {
		return ""
	}

	result := "m"
	for _, component := range path {
		result = fmt.Sprintf("%s/%s", result, NewIndex(component))
	}
	return result
}

// Indexes returns the steps of the path.
func (path DerivationPath) Indexes() []Index {
	indexes := make([]Index, 0, len(path))
	for _, component := range path {
		indexes = append(indexes, NewIndex(component))
	}
	return indexes
}

func (path DerivationPath) Clone() DerivationPath {
	if path == nil {
		return nil
	}
	return append(DerivationPath{}, path...)
}

func (path DerivationPath) Equal(other DerivationPath) bool {
	if len(path) != len(other) {
		return false
	}
	for i := range path {
		if path[i] != other[i] {
			return false
		}
	}
	return true
}

// Increment returns a copy of the path with the value of the last index
// increased by one. The hardened flag of the last index is preserved.
func (path DerivationPath) Increment() (DerivationPath, error) {
	if len(path) <= 0 {
		return nil, ErrNullDerivationPath
	}
	last := NewIndex(path[len(path)-1])
	if last.Value >= MaxHardenedValue {
		return nil, ErrOutOfRangeIndex
	}
	last.Value++

	next := path.Clone()
	next[len(next)-1] = last.ChildNumber()
	return next, nil
}

func (path DerivationPath) MarshalText() ([]byte, error) {
	return []byte(path.String()), nil
}

func (path *DerivationPath) UnmarshalText(text []byte) error {
	p, err := ParseDerivationPath(string(text))
	if err != nil {
		return err
	}
	*path = p
	return nil
}

// PathTemplate is a derivation path string where one element may be the
// AccountIndexPlaceholder, optionally hardened.
type PathTemplate string

// At returns the path obtained by replacing the placeholder with index.
// A template without placeholder resolves to itself for any index.
func (t PathTemplate) At(index uint32) (DerivationPath, error) {
	if index > MaxHardenedValue {
		return nil, ErrOutOfRangeIndex
	}
	elems := strings.Split(string(t), "/")
	for i, elem := range elems {
		switch elem {
		case AccountIndexPlaceholder:
			elems[i] = strconv.FormatUint(uint64(index), 10)
		case AccountIndexPlaceholder + "'":
			elems[i] = strconv.FormatUint(uint64(index), 10) + "'"
		}
	}
	return ParseDerivationPath(strings.Join(elems, "/"))
}

// HasPlaceholder returns whether the template enumerates accounts.
func (t PathTemplate) HasPlaceholder() bool {
	for _, elem := range strings.Split(string(t), "/") {
		if strings.TrimSuffix(elem, "'") == AccountIndexPlaceholder {
			return true
		}
	}
	return false
}

// Validate makes sure the template resolves to a valid path.
func (t PathTemplate) Validate() error {
	_, err := t.At(0)
	return err
}

// Accounts returns the paths of count sequential accounts starting at index
// from.
func (t PathTemplate) Accounts(from, count uint32) ([]DerivationPath, error) {
	if !t.HasPlaceholder() {
		return nil, ErrMissingPlaceholder
	}
	paths := make([]DerivationPath, 0, count)
	for i := uint32(0); i < count; i++ {
		path, err := t.At(from + i)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func containsEmptyString(composedPath []string) bool {
	for _, s := range composedPath {
		if s == "" {
			return true
		}
	}
	return false
}
