package compiler

// DefaultABI is the calling convention given to methods that do not name one.
const DefaultABI = "C"

// Conventions the generators know how to spell. Anything else is rejected
// per method.
var knownABIs = map[string]bool{
	"C":          true,
	"cdecl":      true,
	"system":     true,
	"stdcall":    true,
	"fastcall":   true,
	"thiscall":   true,
	"vectorcall": true,
	"win64":      true,
	"sysv64":     true,
	"aapcs":      true,
	"efiapi":     true,
}

// KnownABI reports whether name is a supported calling convention.
func KnownABI(name string) bool {
	return knownABIs[name]
}
