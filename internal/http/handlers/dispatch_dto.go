package handlers

import (
	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/service/dispatch"
)

type statusResponse struct {
	Running  bool                 `json:"running"`
	LastPass *dispatch.PassReport `json:"last_pass"`
}

type assignResponse struct {
	OrderID   string `json:"order_id"`
	PartnerID string `json:"partner_id,omitempty"`
	Outcome   string `json:"outcome"`
}

type poolResponse struct {
	Waiting    []string `json:"waiting"`
	Delivering []string `json:"delivering"`
}

func assignResultToResponse(res domain.AssignResult) assignResponse {
	return assignResponse{
		OrderID:   res.OrderID,
		PartnerID: res.PartnerID,
		Outcome:   string(res.Outcome),
	}
}

func partnerIDs(ps []domain.Partner) []string {
	ids := make([]string, 0, len(ps))
	for _, p := range ps {
		ids = append(ids, p.ID)
	}
	return ids
}
