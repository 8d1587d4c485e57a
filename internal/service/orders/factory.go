package orders

import (
	"context"
	"strings"

	"courier-dispatch/internal/domain"
)

type actionFunc func(context.Context, Event) error

type actionFactory struct {
	byStatus map[string]actionFunc
}

func newActionFactory(onPlaced actionFunc) *actionFactory {
	return &actionFactory{
		byStatus: map[string]actionFunc{
			string(domain.StatusOrderPlaced): onPlaced,
		},
	}
}

func (f *actionFactory) get(status string) (actionFunc, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	fn, ok := f.byStatus[status]
	return fn, ok
}
