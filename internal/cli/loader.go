package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/roach88/charta/internal/pipeline"
	"github.com/roach88/charta/internal/semantic"
)

// Command-level error codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Path not found
	ErrCodeTooLarge    = "E003" // Document exceeds max_document_bytes
	ErrCodeReadFailed  = "E004" // Read error
	ErrCodeSchemaLoad  = "E005" // Schema cannot be read or compiled
	ErrCodeStore       = "E006" // History database error
	ErrCodeConfig      = "E007" // Invalid config file or flag
	ErrCodeParse       = "E010" // Document is not well-formed
	ErrCodeMismatch    = "E011" // Document does not conform to the schema
	ErrCodeStructural  = "E012" // Structural validator failed to run
	ErrCodeDeserialize = "E013" // Document cannot be decoded into the IR
)

// stdinPath names standard input as a document argument.
const stdinPath = "-"

// LoadError represents an error that occurred while reading a document.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadDocument reads the document at path, or stdin when path is "-".
// Documents larger than maxBytes are rejected; maxBytes <= 0 means no limit.
func LoadDocument(path string, maxBytes int64, stdin io.Reader) ([]byte, error) {
	var r io.Reader
	if path == stdinPath {
		r = stdin
	} else {
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("document not found: %s", path)}
		}
		if err != nil {
			return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("open %s: %v", path, err)}
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("stat %s: %v", path, err)}
		}
		if info.IsDir() {
			return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("is a directory: %s", path)}
		}
		r = f
	}

	if maxBytes > 0 {
		// Read one byte past the limit to detect oversize input
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("read %s: %v", path, err)}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, &LoadError{Code: ErrCodeTooLarge, Message: fmt.Sprintf("document %s exceeds %d bytes", path, maxBytes)}
	}
	return data, nil
}

// FormatFor picks the document format: explicit unless input is "auto",
// otherwise by extension. Stdin defaults to JSON.
func FormatFor(path, input string) (pipeline.Format, error) {
	if input != "" && input != "auto" {
		return pipeline.ParseFormat(input)
	}
	return pipeline.FormatForPath(path), nil
}

// CodeForStage maps a failed pipeline stage to its error code.
// Semantic failures carry their own codes.
func CodeForStage(stage pipeline.Stage) string {
	switch stage {
	case pipeline.StageSchemaLoad:
		return ErrCodeSchemaLoad
	case pipeline.StageParse:
		return ErrCodeParse
	case pipeline.StageStructuralMismatch:
		return ErrCodeMismatch
	case pipeline.StageStructural:
		return ErrCodeStructural
	case pipeline.StageDeserialize:
		return ErrCodeDeserialize
	default:
		return ErrCodeGeneric
	}
}

// ErrorDetail is one reported problem with a document.
type ErrorDetail struct {
	Code     string `json:"code"`
	Location string `json:"location,omitempty"`
	Message  string `json:"message"`
}

// Details flattens a pipeline error into reportable problems, in the order
// the pipeline found them.
func Details(err error) []ErrorDetail {
	if err == nil {
		return nil
	}

	var structural *pipeline.StructuralValidationError
	if errors.As(err, &structural) && structural.Err == nil {
		out := make([]ErrorDetail, len(structural.Violations))
		for i, v := range structural.Violations {
			loc := v.Path
			if loc == "" {
				loc = "/"
			}
			out[i] = ErrorDetail{Code: ErrCodeMismatch, Location: loc, Message: v.Message}
		}
		return out
	}

	var invalid *pipeline.InvalidStructureError
	if errors.As(err, &invalid) && len(invalid.Violations) > 0 {
		return semanticDetails(invalid.Violations)
	}

	unwrapped := err
	var parseErr *pipeline.DocumentParseError
	if errors.As(err, &parseErr) && parseErr.Err != nil {
		unwrapped = parseErr.Err
	}
	return []ErrorDetail{{Code: CodeForStage(pipeline.StageOf(err)), Message: unwrapped.Error()}}
}

func semanticDetails(vs []semantic.Violation) []ErrorDetail {
	out := make([]ErrorDetail, len(vs))
	for i, v := range vs {
		out[i] = ErrorDetail{Code: v.Code, Location: v.Field, Message: v.Message}
	}
	return out
}
