//go:build linux

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ja7ad/taskmon/pkg/procsig"
)

func newSignalCmd(g *globalOpts) *cobra.Command {
	kinds := make([]string, len(procsig.Kinds))
	for i, k := range procsig.Kinds {
		kinds[i] = k.String()
	}
	return &cobra.Command{
		Use:       "signal PID KIND",
		Short:     "Send terminate, kill, stop or continue to a process you own",
		Args:      cobra.ExactArgs(2),
		ValidArgs: kinds,
		Example:   "  taskmon signal 4242 stop\n  taskmon signal 4242 SIGCONT",
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("pid %q: must be an integer", args[0])
			}
			kind, err := procsig.ParseKind(args[1])
			if err != nil {
				return fmt.Errorf("%w (want one of %s)", err, strings.Join(kinds, ", "))
			}

			a, err := g.load()
			if err != nil {
				return err
			}
			if err := a.sender(a.catalog()).Send(pid, kind); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s to %d\n", kind, pid)
			return nil
		},
	}
}
