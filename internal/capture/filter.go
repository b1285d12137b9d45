package capture

import (
	"strings"
)

// PackagePath returns the import path of the package that defines the Go
// function named fn, e.g. "github.com/a/b" for "github.com/a/b.(*T).M".
func PackagePath(fn string) string {
	// Type arguments may contain slashes and dots; ignore them.
	if i := strings.IndexByte(fn, '['); i >= 0 {
		fn = fn[:i]
	}

	slash := strings.LastIndexByte(fn, '/')
	dot := strings.IndexByte(fn[slash+1:], '.')
	if dot < 0 {
		return fn
	}
	return fn[:slash+1+dot]
}

// IsStdlib reports whether pkg is a standard library package path: its first
// element carries no dot. Package main is not part of the standard library.
func IsStdlib(pkg string) bool {
	if pkg == "main" || pkg == "" {
		return false
	}
	first, _, _ := strings.Cut(pkg, "/")
	return !strings.Contains(first, ".")
}

// InModule reports whether pkg belongs to module, or is package main.
func InModule(pkg, module string) bool {
	if pkg == "main" {
		return true
	}
	if module == "" {
		return false
	}
	return pkg == module || strings.HasPrefix(pkg, module+"/")
}

// IsConvention reports whether f is a compiler-generated frame: method value
// wrappers, go/defer statement wrappers, type equality helpers and other
// autogenerated code.
func IsConvention(f Frame) bool {
	switch {
	case strings.HasSuffix(f.Function, "-fm"):
		return true
	case strings.Contains(f.Function, ".gowrap"), strings.Contains(f.Function, ".deferwrap"):
		return true
	case strings.HasPrefix(f.Function, "type:."), strings.HasPrefix(f.Function, "type.."):
		return true
	case f.File == "<autogenerated>":
		return true
	}
	return false
}

// Filter applies flags to innermost-first frames, drops skip innermost frames
// first, and truncates the result to maxFrames.
func Filter(frames []Frame, skip, maxFrames int, flags Flags, mainModule string) []Frame {
	if skip >= len(frames) || maxFrames <= 0 {
		return []Frame{}
	}
	if skip > 0 {
		frames = frames[skip:]
	}

	out := make([]Frame, 0, min(len(frames), maxFrames))
	for _, f := range frames {
		if len(out) == maxFrames {
			break
		}
		pkg := PackagePath(f.Function)
		if flags.Has(KeepMainOnly) && !InModule(pkg, mainModule) {
			continue
		}
		if flags.Has(FilterStdlib) && IsStdlib(pkg) {
			continue
		}
		if flags.Has(FilterConventions) && IsConvention(f) {
			continue
		}
		out = append(out, f)
	}
	return out
}
