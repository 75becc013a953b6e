// Command hashtbl runs an interactive shell over one of the three hash
// table schemes in this module, selected and sized from the command
// line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/makirkman/hash-tables/table"
)

const defaultSize = 4

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var typeFlag string
	var sizeFlag int

	cmd := &cobra.Command{
		Use:           "hashtbl",
		Short:         "Interactive shell over a cuckoo, xtndbln, or xuckoo hash table",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			errOut := cmd.ErrOrStderr()

			kind := table.ParseKind(typeFlag)
			if kind == table.NoType {
				fmt.Fprintln(errOut, "please specify which table type to use, using the -t flag:")
				fmt.Fprintln(errOut, " -t 0 or cuckoo:  cuckoo hash table")
				fmt.Fprintln(errOut, " -t 1 or xtndbln: n-key extendible hash table")
				fmt.Fprintln(errOut, " -t 2 or xuckoo:  extendible cuckoo table")
				return errSilentUsage
			}
			if sizeFlag <= 0 {
				fmt.Fprintln(errOut, "please specify initial table size (>0) using the -s flag")
				return errSilentUsage
			}

			logger, err := zap.NewDevelopment()
			if err != nil {
				logger = zap.NewNop()
			}
			defer logger.Sync() //nolint:errcheck

			tbl, err := table.New(kind, sizeFlag, table.WithLogger(logger))
			if err != nil {
				return err
			}
			defer tbl.Destroy()

			runREPL(cmd.InOrStdin(), cmd.OutOrStdout(), tbl)
			return nil
		},
	}

	cmd.Flags().StringVarP(&typeFlag, "type", "t", "", "table type: 0/cuckoo, 1/xtndbln, 2/xuckoo")
	cmd.Flags().IntVarP(&sizeFlag, "size", "s", defaultSize, "initial table size (ignored for xuckoo)")

	return cmd
}

// errSilentUsage marks a command failure whose explanation was already
// printed, so cobra's own error-printing machinery stays quiet.
var errSilentUsage = fmt.Errorf("invalid usage")
