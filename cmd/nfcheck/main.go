// Command nfcheck valida CNPJs y borradores de notas fiscales sin backend.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errCheckFailed) {
			fmt.Fprintf(os.Stderr, "Erro: %v\n", err)
		}
		os.Exit(1)
	}
}
