package summary

import (
	"fmt"
	"strings"
)

// ReadError reports an input file that could not be opened or parsed as a
// delimited table.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("Не удалось прочитать JTL: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// SchemaError reports a table that lacks one or more required columns.
type SchemaError struct {
	Required []string
	Found    []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("файл должен содержать колонки: [%s]. Найдены: [%s]",
		strings.Join(e.Required, " "), strings.Join(e.Found, " "))
}

// Missing lists the required columns absent from Found.
func (e *SchemaError) Missing() []string {
	present := make(map[string]struct{}, len(e.Found))
	for _, c := range e.Found {
		present[c] = struct{}{}
	}
	var missing []string
	for _, c := range e.Required {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	return missing
}
