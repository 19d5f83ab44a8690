package fonts

import (
	"golang.org/x/image/font/gofont/goregular"
)

// BuiltinSource is the Source reported when no external font was found.
const BuiltinSource = "builtin:goregular"

// Builtin returns the bundled Go Regular font. It covers Latin, Greek and
// Cyrillic and is always available, so font resolution can never fail outright.
func Builtin() []byte {
	return goregular.TTF
}
