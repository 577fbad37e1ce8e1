package format

import (
	"errors"
	"fmt"
	"io"

	"github.com/dhamidi/peg/parse"
)

// WriteError prints err one diagnostic per line as "line:column: message".
// Errors other than parse.Diagnostics are printed on a single line.
func WriteError(w io.Writer, err error) {
	var ds parse.Diagnostics
	if !errors.As(err, &ds) {
		fmt.Fprintln(w, err)
		return
	}
	for _, d := range ds {
		fmt.Fprintln(w, d.Error())
	}
}
