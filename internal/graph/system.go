package graph

import "strings"

// stdlibRoots lists the first path segments of standard-library packages.
// Module paths are not reliably distinguishable from the standard library by
// shape alone (a bare module name is just as dotless as "time"), so platform
// detection works off this fixed table instead.
var stdlibRoots = map[string]bool{
	"archive": true, "bufio": true, "bytes": true, "cmp": true,
	"compress": true, "container": true, "context": true, "crypto": true,
	"database": true, "debug": true, "embed": true, "encoding": true,
	"errors": true, "expvar": true, "flag": true, "fmt": true, "go": true,
	"hash": true, "html": true, "image": true, "index": true, "io": true,
	"iter": true, "log": true, "maps": true, "math": true, "mime": true,
	"net": true, "os": true, "path": true, "plugin": true, "reflect": true,
	"regexp": true, "runtime": true, "slices": true, "sort": true,
	"strconv": true, "strings": true, "structs": true, "sync": true,
	"syscall": true, "testing": true, "text": true, "time": true,
	"unicode": true, "unique": true, "unsafe": true, "weak": true,
}

// IsSystemPackagePath reports whether a package path denotes platform code
// whose internals the engine must not traverse. The empty path (the
// universe) counts as system; both adapters share this rule so the system
// flag stays backend-equivalent.
func IsSystemPackagePath(path string) bool {
	if path == "" {
		return true
	}
	first, _, _ := strings.Cut(path, "/")
	return stdlibRoots[first]
}
