package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"courier-dispatch/internal/domain"
)

type assignOutput struct {
	OrderID   string `json:"order_id"`
	PartnerID string `json:"partner_id,omitempty"`
	Outcome   string `json:"outcome"`
	Error     string `json:"error,omitempty"`
}

func newAssignCmd(e env, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <orderId>",
		Short: "Assign one pending order to a waiting partner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(flags)
			defer cancel()

			s, err := openSession(ctx, e, flags)
			if err != nil {
				return err
			}
			defer s.close()

			res := s.engine.Assign(ctx, domain.Order{ID: args[0]})
			out := assignOutput{
				OrderID:   res.OrderID,
				PartnerID: res.PartnerID,
				Outcome:   string(res.Outcome),
			}
			if res.Err != nil {
				out.Error = res.Err.Error()
			}
			if err := printJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if res.Outcome != domain.OutcomeAssigned {
				return fmt.Errorf("order %s not assigned: %s", res.OrderID, res.Outcome)
			}
			return nil
		},
	}
}
