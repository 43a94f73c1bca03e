// Package di wires the ammd services: config, logger, storage, event sink
// and pool engine.
package di

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Container is the dependency injection container.
// It manages service registration, lazy resolution and shutdown.
type Container struct {
	mu       sync.RWMutex
	services map[string]interface{}
	builders map[string]Builder
	// closers in build order; Close releases them in reverse
	closers []namedCloser
}

type namedCloser struct {
	name   string
	closer io.Closer
}

// Builder is a function that creates a service instance.
type Builder func(c *Container) (interface{}, error)

// ErrServiceNotFound is returned when no instance or builder is registered
var ErrServiceNotFound = errors.New("service not found")

// New creates a new dependency injection container.
func New() *Container {
	return &Container{
		services: make(map[string]interface{}),
		builders: make(map[string]Builder),
	}
}

// Register registers a service instance.
func (c *Container) Register(name string, service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = service
}

// RegisterBuilder registers a builder function for lazy instantiation.
// Built services implementing io.Closer are closed by Close.
func (c *Container) RegisterBuilder(name string, builder Builder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.builders[name] = builder
}

// Get retrieves a service by name, building it on first use.
// Builders may call Get for their own dependencies.
func (c *Container) Get(name string) (interface{}, error) {
	c.mu.RLock()
	service, exists := c.services[name]
	builder, hasBuilder := c.builders[name]
	c.mu.RUnlock()

	if exists {
		return service, nil
	}
	if !hasBuilder {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, name)
	}

	// Built without the lock so builders can resolve their dependencies
	service, err := builder(c)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.services[name]; ok {
		return existing, nil
	}
	c.services[name] = service
	if closer, ok := service.(io.Closer); ok {
		c.closers = append(c.closers, namedCloser{name: name, closer: closer})
	}
	return service, nil
}

// MustGet retrieves a service or panics if not found.
func (c *Container) MustGet(name string) interface{} {
	service, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return service
}

// Resolve retrieves a service and asserts its type.
func Resolve[T any](c *Container, name string) (T, error) {
	var zero T
	service, err := c.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := service.(T)
	if !ok {
		return zero, fmt.Errorf("service %s has type %T, want %T", name, service, zero)
	}
	return typed, nil
}

// Has checks if a service is registered.
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, exists := c.services[name]; exists {
		return true
	}
	_, exists := c.builders[name]
	return exists
}

// ServiceNames returns all registered service names, sorted.
func (c *Container) ServiceNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make(map[string]bool)
	for name := range c.services {
		names[name] = true
	}
	for name := range c.builders {
		names[name] = true
	}

	result := make([]string, 0, len(names))
	for name := range names {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// Close closes every built service in reverse build order and reports
// all failures.
func (c *Container) Close() error {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", closers[i].name, err))
		}
	}
	return errors.Join(errs...)
}

// Service names constants for type-safe access.
const (
	ServiceConfig    = "config"
	ServiceLogger    = "logger"
	ServiceKVManager = "storage.manager"
	ServiceStore     = "state.store"
	ServiceSink      = "events.sink"
	ServiceEngine    = "amm.engine"
)
