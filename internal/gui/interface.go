package gui

import (
	"fmt"

	"imgmeta/internal/config"
	"imgmeta/internal/state"
)

// Interface defines the contract for GUI operations
type Interface interface {
	Run()
	ShowError(title string, err error)
	ShowInfo(message string)
}

// Factory creates GUI instances
type Factory struct {
	config *config.Config
	state  *state.Container
}

// NewFactory creates a new GUI factory
func NewFactory(cfg *config.Config, c *state.Container) *Factory {
	return &Factory{
		config: cfg,
		state:  c,
	}
}

// Create returns a new GUI instance
func (f *Factory) Create() (Interface, error) {
	if f.config == nil || f.state == nil {
		return nil, fmt.Errorf("gui: config and state container are required")
	}
	return NewApp(f.config, f.state), nil
}
