package main

import (
	"github.com/spf13/cobra"

	"courier-dispatch/internal/domain"
)

type poolOutput struct {
	Waiting    []string `json:"waiting"`
	Delivering []string `json:"delivering"`
}

func newPoolCmd(e env, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "pool",
		Short: "List waiting and delivering partners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(flags)
			defer cancel()

			s, err := openSession(ctx, e, flags)
			if err != nil {
				return err
			}
			defer s.close()

			waiting, err := s.pool.ListWaiting(ctx)
			if err != nil {
				return err
			}
			delivering, err := s.pool.ListDelivering(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), poolOutput{
				Waiting:    ids(waiting),
				Delivering: ids(delivering),
			})
		},
	}
}

func ids(ps []domain.Partner) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}
