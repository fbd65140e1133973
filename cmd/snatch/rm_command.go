package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Remove a download record, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if all {
				if len(args) > 0 {
					return errors.New("--all takes no id argument")
				}
				resp, err := ctx.client().Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, resp.Message)
				return nil
			}

			if len(args) == 0 {
				return errors.New("an id is required unless --all is given")
			}
			resp, err := ctx.client().Remove(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, resp.Message)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Remove every download record")
	return cmd
}
