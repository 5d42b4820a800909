package bytecode

import (
	"fmt"
	"strings"
)

// AccessFlags is a bit set of class and method access modifiers.
type AccessFlags uint32

// Access flag bits, using the Dalvik encoding.
const (
	AccPublic       AccessFlags = 0x1
	AccPrivate      AccessFlags = 0x2
	AccProtected    AccessFlags = 0x4
	AccStatic       AccessFlags = 0x8
	AccFinal        AccessFlags = 0x10
	AccSynchronized AccessFlags = 0x20
	AccBridge       AccessFlags = 0x40
	AccVarargs      AccessFlags = 0x80
	AccNative       AccessFlags = 0x100
	AccInterface    AccessFlags = 0x200
	AccAbstract     AccessFlags = 0x400
	AccStrict       AccessFlags = 0x800
	AccSynthetic    AccessFlags = 0x1000
	AccAnnotation   AccessFlags = 0x2000
	AccEnum         AccessFlags = 0x4000
	AccConstructor  AccessFlags = 0x10000
)

// accessFlagNames lists flags in the order they are rendered.
var accessFlagNames = []struct {
	flag AccessFlags
	name string
}{
	{AccPublic, "public"},
	{AccPrivate, "private"},
	{AccProtected, "protected"},
	{AccStatic, "static"},
	{AccFinal, "final"},
	{AccSynchronized, "synchronized"},
	{AccBridge, "bridge"},
	{AccVarargs, "varargs"},
	{AccNative, "native"},
	{AccInterface, "interface"},
	{AccAbstract, "abstract"},
	{AccStrict, "strictfp"},
	{AccSynthetic, "synthetic"},
	{AccAnnotation, "annotation"},
	{AccEnum, "enum"},
	{AccConstructor, "constructor"},
}

// Has reports whether every bit of flag is set.
func (f AccessFlags) Has(flag AccessFlags) bool {
	return f&flag == flag
}

// Names returns the modifier names of the set bits, in smali order.
func (f AccessFlags) Names() []string {
	var names []string
	for _, entry := range accessFlagNames {
		if f&entry.flag != 0 {
			names = append(names, entry.name)
		}
	}
	return names
}

// String renders the flags as space-separated modifiers (e.g., "public static").
func (f AccessFlags) String() string {
	return strings.Join(f.Names(), " ")
}

// ParseAccessFlags combines modifier names into a flag set, ignoring case.
func ParseAccessFlags(names ...string) (AccessFlags, error) {
	var flags AccessFlags
	for _, name := range names {
		folded := foldName(strings.TrimSpace(name))
		found := false
		for _, entry := range accessFlagNames {
			if entry.name == folded {
				flags |= entry.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("bytecode: unknown access flag %q", name)
		}
	}
	return flags, nil
}
