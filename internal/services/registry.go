package services

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Service is the interface for all lifecycle-managed services.
type Service interface {
	Start() error
	Stop() error
}

// Registry manages the lifecycle of the process's services in registration
// order.
type Registry struct {
	services    map[string]Service // Stores registered services
	serviceKeys []string           // Maintains order of service registration
	logger      zerolog.Logger
}

// NewRegistry initializes a new service registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		services: make(map[string]Service),
		logger:   logger,
	}
}

// RegisterService adds a new service to the registry.
func (r *Registry) RegisterService(name string, svc Service) {
	if _, exists := r.services[name]; exists {
		r.logger.Warn().Msgf("Service %s is already registered", name)
		return
	}
	r.services[name] = svc
	r.serviceKeys = append(r.serviceKeys, name)
	r.logger.Info().Msgf("Registered service: %s", name)
}

// StartServices initiates all registered services in order.
// If a service fails to start, it stops already started services.
func (r *Registry) StartServices() error {
	startedServices := []string{}

	for _, name := range r.serviceKeys {
		svc := r.services[name]
		r.logger.Info().Msgf("Starting service: %s", name)
		if err := svc.Start(); err != nil {
			r.logger.Error().Err(err).Msgf("Failed to start service: %s", name)

			// Stop already started services before returning
			r.logger.Warn().Msg("Stopping already started services due to startup failure...")
			for i := len(startedServices) - 1; i >= 0; i-- {
				_ = r.services[startedServices[i]].Stop()
			}
			return err
		}
		startedServices = append(startedServices, name)
	}

	return nil
}

// StopServices stops all services in reverse order.
func (r *Registry) StopServices() error {
	var stopErrors []error
	for i := len(r.serviceKeys) - 1; i >= 0; i-- {
		name := r.serviceKeys[i]
		if err := r.services[name].Stop(); err != nil {
			stopErrors = append(stopErrors, fmt.Errorf("failed to stop %s: %w", name, err))
		}
	}
	if len(stopErrors) > 0 {
		for _, e := range stopErrors {
			r.logger.Error().Err(e).Msg("Service stop failure")
		}
		return errors.Join(stopErrors...)
	}
	return nil
}
