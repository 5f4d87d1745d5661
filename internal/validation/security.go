// Package validation checks operator-supplied commands and names before they
// reach the filesystem or a subprocess.
package validation

import (
	"fmt"
	"strings"
)

var shellMetacharacters = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\\", "\"", "'"}

// ValidateArgument rejects shell metacharacters. Commands are executed
// without a shell, so these would be passed literally.
func ValidateArgument(arg string) error {
	for _, char := range shellMetacharacters {
		if strings.Contains(arg, char) {
			return fmt.Errorf("contains dangerous character: %s", char)
		}
	}

	return nil
}

// ParseCommand splits a configured command line on whitespace and validates
// every part.
func ParseCommand(line string) ([]string, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil, fmt.Errorf("command cannot be empty")
	}

	for _, part := range parts {
		if err := ValidateArgument(part); err != nil {
			return nil, fmt.Errorf("invalid command %q: %w", line, err)
		}
	}

	return parts, nil
}

// ValidateName checks a project or home directory name. Names are single
// path segments.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}

	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("name %q must not contain a path separator", name)
	}

	if name == "." || name == ".." {
		return fmt.Errorf("name %q is not a directory name", name)
	}

	if err := ValidateArgument(name); err != nil {
		return fmt.Errorf("invalid name %q: %w", name, err)
	}

	return nil
}
