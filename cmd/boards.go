// Package cmd holds the gpiosample subcommands.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/smazurov/gpiosample/internal/board"
)

// CreateBoardsCmd creates the boards command.
func CreateBoardsCmd() *cobra.Command {
	var tableFile string

	cmd := &cobra.Command{
		Use:   "boards",
		Short: "List supported boards",
		Long:  `Lists the board profiles gpiosample can drive: the built-in ConnectCore boards plus any from --table.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := RunBoards(cmd.OutOrStdout(), tableFile); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVarP(&tableFile, "table", "t", "", "TOML file with extra or overriding board profiles")
	return cmd
}

// RunBoards writes one row per profile to out.
func RunBoards(out io.Writer, tableFile string) error {
	table, err := board.LoadTable(tableFile)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tIDENTITIES\tBUTTON\tLED\tPOLARITY\tEDGE")
	for _, p := range table.Profiles() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.Name,
			strings.Join(p.Identities, ","),
			p.ButtonSpec(),
			p.LEDSpec(),
			p.Polarity,
			p.ButtonEdge)
	}
	return tw.Flush()
}
