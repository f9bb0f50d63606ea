package workflow

import "github.com/flowmesh/orchestrator/engine/model"

// FactoryAdapter adapts *model.Factory to the engine's narrower ModelFactory
// interface, since Go does not consider two identically-shaped interfaces
// from different packages interchangeable at the method-signature level.
type FactoryAdapter struct {
	Factory *model.Factory
}

func (a FactoryAdapter) Get(provider, name string, temperature float64) (ChatModel, error) {
	return a.Factory.Get(provider, name, temperature)
}
