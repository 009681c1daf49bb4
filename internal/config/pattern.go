package config

import (
	"fmt"

	"github.com/gobwas/glob"
)

// CompilePattern compiles a slash-separated glob. gobwas/glob accepts an
// unclosed brace and then never matches, so braces are checked first.
func CompilePattern(pattern string) (glob.Glob, error) {
	if err := checkBraces(pattern); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, pattern, err)
	}
	return g, nil
}

// checkBraces ignores escaped characters and braces inside [...] classes.
func checkBraces(pattern string) error {
	depth := 0
	inClass := false
	for i := 0; i < len(pattern); i++ {
		switch c := pattern[i]; {
		case c == '\\':
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
		case c == '{':
			depth++
		case c == '}':
			if depth == 0 {
				return fmt.Errorf("unmatched '}' at offset %d", i)
			}
			depth--
		}
	}
	if depth > 0 {
		return fmt.Errorf("%d unclosed '{'", depth)
	}
	return nil
}
