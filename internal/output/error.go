package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	ethrawerr "github.com/nexeth/ethraw/pkg/errors"
)

// ErrorOutput represents a structured error for JSON output.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// FormatError formats an error for display.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}

	if format == FormatJSON {
		return formatErrorJSON(w, err)
	}
	return formatErrorText(w, err)
}

// formatErrorJSON outputs error in JSON format.
func formatErrorJSON(w io.Writer, err error) error {
	detail := ErrorDetail{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		ExitCode: ethrawerr.ExitGeneral,
	}

	var ee *ethrawerr.Error
	if errors.As(err, &ee) {
		detail = ErrorDetail{
			Code:       ee.Code,
			Message:    ee.Message,
			Details:    ee.Details,
			Suggestion: ee.Suggestion,
			ExitCode:   ee.ExitCode,
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ErrorOutput{Error: detail})
}

// formatErrorText outputs error in text format.
func formatErrorText(w io.Writer, err error) error {
	var sb strings.Builder

	var ee *ethrawerr.Error
	if errors.As(err, &ee) {
		sb.WriteString(fmt.Sprintf("Error: %s\n", ee.Message))

		if len(ee.Details) > 0 {
			sb.WriteString("\nDetails:\n")
			for k, v := range ee.Details {
				sb.WriteString(fmt.Sprintf("  %s: %s\n", k, v))
			}
		}

		if ee.Suggestion != "" {
			sb.WriteString(fmt.Sprintf("\nSuggestion: %s\n", ee.Suggestion))
		}
	} else {
		sb.WriteString(fmt.Sprintf("Error: %s\n", err.Error()))
	}

	_, writeErr := w.Write([]byte(sb.String()))
	return writeErr
}

// FormatSuccess formats a success message.
func FormatSuccess(w io.Writer, message string, format Format) error {
	if format == FormatJSON {
		output := map[string]string{"status": "success", "message": message}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(output)
	}
	_, err := fmt.Fprintln(w, message)
	return err
}
