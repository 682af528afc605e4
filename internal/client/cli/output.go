package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/tradeguard/internal/client/gateway"
)

// show prints res.Data as indented JSON, or returns res.Error.
func show[T any](w io.Writer, res gateway.Result[T]) error {
	if !res.OK {
		return errors.New(res.Error)
	}
	return printJSON(w, res.Data)
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
