package main

import (
	"github.com/spf13/cobra"

	"courier-dispatch/internal/service/dispatch"
)

func newPassCmd(e env, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "pass",
		Short: "Run one dispatch pass over all pending orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(flags)
			defer cancel()

			s, err := openSession(ctx, e, flags)
			if err != nil {
				return err
			}
			defer s.close()

			loop := dispatch.NewLoop(s.queue, s.engine, nil, nil, dispatch.Config{
				Workers:          s.cfg.Dispatch.Workers,
				OperationTimeout: s.cfg.Dispatch.OperationTimeout,
			}, s.logger)
			report := loop.RunPass(ctx, dispatch.TriggerManual)
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
}
