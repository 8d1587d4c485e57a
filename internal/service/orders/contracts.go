//go:generate mockgen -source=contracts.go -destination=orders_mocks_test.go -package=orders_test

package orders

// Trigger asks the dispatch loop for a pass.
type Trigger interface {
	Trigger(source string) bool
}

// TriggerCounter counts trigger requests per source.
type TriggerCounter interface {
	IncTrigger(source string, accepted bool)
}
