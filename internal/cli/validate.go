package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/reminders/internal/config"
)

// ValidationIssue is one schema violation as reported by the CLI.
type ValidationIssue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Config *config.Config    `json:"config,omitempty"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a config file",
		Long: `Validate a reminders config file against the config schema.

Unknown keys, a non-positive delayMs, an unknown idPolicy and an unknown
logLevel are all reported.

Exit codes:
  0 - Config is valid
  1 - Config violates the schema
  2 - Command error (file missing, malformed YAML)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return outputValidateError(formatter, ErrCodeNotFound, fmt.Sprintf("config file not found: %s", path))
	}

	formatter.VerboseLog("Validating %s", path)

	cfg, err := config.Load(path)
	if err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			return outputValidationErrors(formatter, toIssues(verrs))
		}
		return outputValidateError(formatter, ErrCodeParseFailed, err.Error())
	}

	return outputValidateSuccess(formatter, cfg)
}

func toIssues(verrs config.ValidationErrors) []ValidationIssue {
	issues := make([]ValidationIssue, len(verrs))
	for i, ve := range verrs {
		issues[i] = ValidationIssue{
			Field:   ve.Field,
			Message: ve.Message,
			Code:    ErrCodeInvalidConfig,
		}
	}
	return issues
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, cfg config.Config) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Config: &cfg})
	}

	fmt.Fprintln(formatter.Writer, "✓ Config valid")
	fmt.Fprintf(formatter.Writer, "  delayMs: %d\n  idPolicy: %s\n  logLevel: %s\n  normalizeText: %t\n",
		cfg.DelayMS, cfg.IDPolicy, cfg.LogLevel, cfg.NormalizeText)
	return nil
}

// outputValidateError outputs a single command-level error (exit code 2).
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs schema violations (exit code 1).
func outputValidationErrors(formatter *OutputFormatter, issues []ValidationIssue) error {
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))

	if formatter.Format == "json" {
		err := formatter.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: issues},
			Error: &CLIError{
				Code:    issues[0].Code,
				Message: issues[0].Message,
			},
		})
		if err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, issue := range issues {
		if issue.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", issue.Code, issue.Field, issue.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
		}
	}

	return failure
}
