package extract

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/ossyrian/shockex/internal/rifx"
)

// extVariants maps an original extension to its replacements: index 0 for
// standard movies, index 1 for Shockwave-compressed ones.
var extVariants = map[string][2]string{
	".dir": {".dxr", ".dcr"},
	".cst": {".cxt", ".cct"},
}

// defaultExt is assumed for names without a 4-character dot extension.
const defaultExt = ".dir"

// outputName derives the output filename for a sub-file from its original
// in-archive path: the path prefix is stripped with the origin platform's
// separator, the extension is remapped by the sub-file's type tag with the
// original's case preserved, and any stray forward slash becomes an
// underscore.
func outputName(original string, origin rifx.Origin, typeTag string) string {
	name := original
	if i := strings.LastIndexByte(name, origin.Separator()); i >= 0 {
		name = name[i+1:]
	}

	hasExt := len(name) >= 4 && name[len(name)-4] == '.'
	origExt := defaultExt
	if hasExt {
		origExt = strings.ToLower(name[len(name)-4:])
	}

	if variants, ok := extVariants[origExt]; ok {
		ext := origExt
		switch typeTag {
		case rifx.TypeMovie:
			ext = variants[0]
		case rifx.TypeCompressedMovie:
			ext = variants[1]
		}
		if hasExt {
			if isUpper(name[len(name)-4:]) {
				ext = strings.ToUpper(ext)
			}
			name = name[:len(name)-4] + ext
		} else {
			name += ext
		}
	}

	return strings.ReplaceAll(name, "/", "_")
}

// isUpper reports whether s contains a cased character and no lowercase ones,
// so ".DIR" counts but "1234" does not.
func isUpper(s string) bool {
	return s == strings.ToUpper(s) && s != strings.ToLower(s)
}

// uniqueName resolves output-name collisions against both the filesystem and
// the names already claimed in this run, appending _N until unique. Claimed
// names go into taken, which must be accessed from one goroutine; names are
// resolved before work fans out.
func uniqueName(fs afero.Fs, dir, name string, taken map[string]bool) string {
	candidate := name
	for n := 1; ; n++ {
		onDisk, _ := afero.Exists(fs, filepath.Join(dir, candidate))
		if !onDisk && !taken[candidate] {
			break
		}
		candidate = fmt.Sprintf("%s_%d", name, n)
	}
	taken[candidate] = true
	return candidate
}

// DeriveOutputDir returns the default output directory for an input path: the
// path with its extension stripped, or with "_out" appended when stripping
// changes nothing.
func DeriveOutputDir(input string) string {
	out := strings.TrimSuffix(input, filepath.Ext(input))
	if out == input {
		out += "_out"
	}
	return out
}
