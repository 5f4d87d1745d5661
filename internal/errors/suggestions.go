package errors

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrorSuggestion represents a suggestion for fixing an error
type ErrorSuggestion struct {
	Title       string
	Description string
	Command     string
	Example     string
}

// SuggestionContext provides context for generating suggestions
type SuggestionContext struct {
	WorkDir    string
	ConfigPath string
	IndexPath  string
	Command    string
	// HomeConfig is the file whose presence marks a home documentation
	// directory. Defaults to mkdocs.yml.
	HomeConfig string
}

// SuggestProjectRoots lists the immediate subdirectories of dir that contain
// homeConfig, as paths relative to dir ("./name"). The result is sorted and
// never contains dir itself. Unreadable directories are skipped.
func SuggestProjectRoots(dir, homeConfig string) []string {
	if homeConfig == "" {
		homeConfig = "mkdocs.yml"
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var roots []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, entry.Name(), homeConfig)); err == nil {
			roots = append(roots, "./"+entry.Name())
		}
	}
	sort.Strings(roots)

	return roots
}

// MissingFileError generates suggestions for a command that was run outside
// a home documentation directory.
func MissingFileError(err error, ctx *SuggestionContext) []ErrorSuggestion {
	command := ctx.Command
	if command == "" {
		command = "docmux"
	}

	suggestions := []ErrorSuggestion{
		{
			Title:       "Check the working directory",
			Description: fmt.Sprintf("Are you sure you ran %q in the right directory?", command),
			Command:     "pwd",
		},
	}

	if ctx.IndexPath != "" {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Check the index document",
			Description: "The home index document must exist and contain a Projects section",
			Command:     "ls -la " + ctx.IndexPath,
			Example:     "# Projects\n* [Foo](/foo/) - Foo's documentation",
		})
	}

	if ctx.WorkDir != "" {
		roots := SuggestProjectRoots(ctx.WorkDir, ctx.HomeConfig)
		if len(roots) > 0 {
			suggestions = append(suggestions, ErrorSuggestion{
				Title:       "Try in",
				Description: strings.Join(roots, "\n     "),
				Command:     fmt.Sprintf("cd %s && %s", roots[0], command),
			})
		}
	}

	return suggestions
}

// ServerStartError generates suggestions for server startup failures
func ServerStartError(err error, port int, ctx *SuggestionContext) []ErrorSuggestion {
	suggestions := []ErrorSuggestion{}

	errStr := err.Error()

	if strings.Contains(errStr, "address already in use") || strings.Contains(errStr, "bind") ||
		strings.Contains(errStr, "aborted") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Port already in use",
			Description: fmt.Sprintf("Port %d is already being used by another process", port),
			Command:     fmt.Sprintf("lsof -i :%d", port),
		})

		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Use a different port",
			Description: "You can specify a custom port with docmux serve --port",
			Command:     fmt.Sprintf("docmux serve --port %d", port+1),
		})
	}

	if strings.Contains(errStr, "permission denied") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Permission denied",
			Description: "You don't have permission to bind to this port",
		})

		if port < 1024 {
			suggestions = append(suggestions, ErrorSuggestion{
				Title:       "Use unprivileged port",
				Description: "Ports below 1024 require root privileges",
				Command:     "docmux serve --port 8443",
			})
		}
	}

	return suggestions
}

// ConfigurationError generates suggestions for configuration issues
func ConfigurationError(configError string, configPath string, ctx *SuggestionContext) []ErrorSuggestion {
	suggestions := []ErrorSuggestion{
		{
			Title:       "Check configuration file",
			Description: "Verify your .docmux.yml file has valid syntax",
			Command:     "cat " + configPath,
		},
	}

	if strings.Contains(configError, "yaml") || strings.Contains(configError, "unmarshal") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Fix YAML syntax",
			Description: "There's a syntax error in your YAML configuration",
			Example:     "Use proper indentation and avoid tabs",
		})
	}

	if strings.Contains(configError, "projects") {
		suggestions = append(suggestions, ErrorSuggestion{
			Title:       "Select projects explicitly",
			Description: "Use either --all or --projects, not both",
			Command:     "docmux build --projects foo bar",
		})
	}

	return suggestions
}

// FormatSuggestions formats suggestions into a user-friendly string
func FormatSuggestions(title string, suggestions []ErrorSuggestion) string {
	if len(suggestions) == 0 {
		return title
	}

	var output strings.Builder
	output.WriteString(title + "\n\n")
	output.WriteString("Suggestions:\n")

	for i, suggestion := range suggestions {
		output.WriteString(fmt.Sprintf("  %d. %s\n", i+1, suggestion.Title))
		if suggestion.Description != "" {
			output.WriteString(fmt.Sprintf("     %s\n", suggestion.Description))
		}
		if suggestion.Command != "" {
			output.WriteString(fmt.Sprintf("     Run: %s\n", suggestion.Command))
		}
		if suggestion.Example != "" {
			output.WriteString(fmt.Sprintf("     Example: %s\n", suggestion.Example))
		}
		output.WriteString("\n")
	}

	return output.String()
}

// EnhancedError wraps an error with suggestions
type EnhancedError struct {
	OriginalError error
	Title         string
	Suggestions   []ErrorSuggestion
}

// Error implements the error interface
func (e *EnhancedError) Error() string {
	return FormatSuggestions(e.Title, e.Suggestions)
}

// Unwrap returns the original error
func (e *EnhancedError) Unwrap() error {
	return e.OriginalError
}

// NewEnhancedError creates a new enhanced error with suggestions
func NewEnhancedError(title string, originalError error, suggestions []ErrorSuggestion) *EnhancedError {
	return &EnhancedError{
		OriginalError: originalError,
		Title:         title,
		Suggestions:   suggestions,
	}
}

// SuggestPath wraps fn so that a missing-file failure is returned as an
// EnhancedError listing candidate home directories. Other errors pass
// through unchanged. The suggestions are advisory; nothing is corrected.
func SuggestPath(ctx *SuggestionContext, fn func() error) error {
	err := fn()
	if err == nil || !IsNotFound(err) {
		return err
	}

	return NewEnhancedError(err.Error(), err, MissingFileError(err, ctx))
}
