package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/smazurov/gpiosample/internal/board"
)

// IdentifyOptions selects where the identity comes from.
type IdentifyOptions struct {
	Identity     string
	IdentityPath string
	TableFile    string
}

// CreateIdentifyCmd creates the identify command. It exits 1 when the board
// is not supported.
func CreateIdentifyCmd() *cobra.Command {
	var opts IdentifyOptions

	cmd := &cobra.Command{
		Use:   "identify",
		Short: "Detect the board and show its profile",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := RunIdentify(cmd.OutOrStdout(), opts, nil); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().StringVar(&opts.Identity, "identity", "", "Use this identity instead of reading the platform")
	cmd.Flags().StringVar(&opts.IdentityPath, "identity-path", board.MachineNamePath, "File holding the board identity")
	cmd.Flags().StringVarP(&opts.TableFile, "table", "t", "", "TOML file with extra or overriding board profiles")
	return cmd
}

// RunIdentify detects the identity, resolves it and prints the profile.
// sources replaces the default detection chain when non-nil.
func RunIdentify(out io.Writer, opts IdentifyOptions, sources []board.Source) error {
	table, err := board.LoadTable(opts.TableFile)
	if err != nil {
		return err
	}
	if sources == nil {
		sources = board.DefaultSources(opts.Identity, opts.IdentityPath)
	}

	id, src, err := board.Detect(sources...)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "identity: %s (%s)\n", id, src)

	p, err := table.Resolve(id)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "board:    %s\n", p.Name)
	fmt.Fprintf(out, "button:   %s edge=%s\n", p.ButtonSpec(), p.ButtonEdge)
	fmt.Fprintf(out, "led:      %s polarity=%s\n", p.LEDSpec(), p.Polarity)
	fmt.Fprintf(out, "image:    %s\n", p.BoardImage())
	if p.NeedsReleasePoll() {
		fmt.Fprintln(out, "release:  polled")
	}
	return nil
}
