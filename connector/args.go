package connector

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/sarchlab/rawmem/mem"
)

// Args are the arguments of the connector.
type Args struct {
	// Target is the path of the memory image.
	Target string
	// Extra holds the key=value arguments, such as base and writable.
	Extra map[string]string
}

// ParseArgs parses an argument string of the form
// "[rawmem::]target[:key=value,key=value]".
func ParseArgs(s string) (Args, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), Name+"::")

	args := Args{
		Target: s,
		Extra:  make(map[string]string),
	}

	i := strings.LastIndex(s, ":")
	if i < 0 || !strings.Contains(s[i+1:], "=") {
		return args, nil
	}

	args.Target = s[:i]

	for _, kv := range strings.Split(s[i+1:], ",") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}

		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return Args{}, invalidArgs(fmt.Errorf("malformed argument %q", kv))
		}

		args.Extra[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return args, nil
}

// String formats the arguments so that ParseArgs can read them back.
func (a Args) String() string {
	if len(a.Extra) == 0 {
		return a.Target
	}

	keys := make([]string, 0, len(a.Extra))
	for k := range a.Extra {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + a.Extra[k]
	}

	return a.Target + ":" + strings.Join(pairs, ",")
}

// ParseBase parses a base address. Hexadecimal values use the 0x prefix.
func ParseBase(s string) (uint64, error) {
	t := strings.TrimSpace(s)

	var (
		v   uint64
		err error
	)

	if hex, ok := cutHexPrefix(t); ok {
		v, err = strconv.ParseUint(hex, 16, 64)
	} else {
		v, err = strconv.ParseUint(t, 10, 64)
	}

	if err != nil {
		return 0, invalidArgs(fmt.Errorf("invalid base %q: %w", s, err))
	}

	return v, nil
}

func cutHexPrefix(s string) (string, bool) {
	if hex, ok := strings.CutPrefix(s, "0x"); ok {
		return hex, true
	}

	return strings.CutPrefix(s, "0X")
}

func (a Args) base() (uint64, error) {
	s, ok := a.Extra["base"]
	if !ok || s == "" {
		return 0, nil
	}

	return ParseBase(s)
}

func (a Args) writable() (bool, error) {
	s, ok := a.Extra["writable"]
	if !ok || s == "" {
		return false, nil
	}

	w, err := strconv.ParseBool(s)
	if err != nil {
		return false, invalidArgs(fmt.Errorf("invalid writable %q: %w", s, err))
	}

	return w, nil
}

func invalidArgs(err error) error {
	return mem.NewAccessError(mem.KindInvalidArgs, Name, 0, 0).WithErr(err)
}
