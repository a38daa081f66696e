// Observer pattern interfaces for event-driven visibility into the
// container lifecycle. Events use the CloudEvents specification for
// standardized format and interoperability with external systems.
package loom

import (
	"context"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Observer is notified of lifecycle events emitted by the application.
type Observer interface {
	// OnEvent is called when an event the observer subscribed to occurs.
	// Observers should handle events quickly to avoid blocking others.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier for this observer, used for
	// registration tracking and debugging.
	ObserverID() string
}

// Subject is implemented by event emitters. The Application is the framework
// subject; lifecycle phases and per-provider transitions are published
// through it.
type Subject interface {
	// RegisterObserver adds an observer, optionally filtered by event
	// types. An empty filter receives all events.
	RegisterObserver(observer Observer, eventTypes ...string) error

	// UnregisterObserver removes an observer. Idempotent.
	UnregisterObserver(observer Observer) error

	// NotifyObservers sends an event to all registered observers without
	// blocking the caller; observer errors are handled gracefully.
	NotifyObservers(ctx context.Context, event cloudevents.Event) error

	// GetObservers returns information about registered observers.
	GetObservers() []ObserverInfo
}

// ObserverInfo describes a registered observer.
type ObserverInfo struct {
	ID           string    `json:"id"`
	EventTypes   []string  `json:"eventTypes"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// CloudEvent types emitted by the core, in reverse domain notation.
const (
	EventTypeModuleInitialized   = "com.loom.module.initialized"
	EventTypeModuleDestroyed     = "com.loom.module.destroyed"
	EventTypeProviderInitialized = "com.loom.provider.initialized"
	EventTypeProviderStarted     = "com.loom.provider.started"
	EventTypeProviderStopped     = "com.loom.provider.stopped"
	EventTypeApplicationStarted  = "com.loom.application.started"
	EventTypeApplicationStopped  = "com.loom.application.stopped"
	EventTypeApplicationFailed   = "com.loom.application.failed"
	EventTypeConfigLoaded        = "com.loom.config.loaded"
	EventTypeConfigChanged       = "com.loom.config.changed"
)

// FunctionalObserver wraps a handler function as an Observer.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver creates an observer from a handler function.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{id: id, handler: handler}
}

func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

func (f *FunctionalObserver) ObserverID() string {
	return f.id
}

// observerRegistration holds bookkeeping for one registered observer.
type observerRegistration struct {
	observer     Observer
	eventTypes   map[string]bool
	registeredAt time.Time
}

func newObserverRegistration(observer Observer, eventTypes []string) *observerRegistration {
	eventTypeMap := make(map[string]bool, len(eventTypes))
	for _, eventType := range eventTypes {
		eventTypeMap[eventType] = true
	}
	return &observerRegistration{
		observer:     observer,
		eventTypes:   eventTypeMap,
		registeredAt: time.Now(),
	}
}

// RegisterObserver adds an observer to the application, optionally filtered
// by event type.
func (app *Application) RegisterObserver(observer Observer, eventTypes ...string) error {
	app.observerMu.Lock()
	defer app.observerMu.Unlock()

	app.observers[observer.ObserverID()] = newObserverRegistration(observer, eventTypes)

	app.logger.Debug("Observer registered", "observerID", observer.ObserverID(), "eventTypes", eventTypes)
	return nil
}

// UnregisterObserver removes an observer. Idempotent.
func (app *Application) UnregisterObserver(observer Observer) error {
	app.observerMu.Lock()
	defer app.observerMu.Unlock()

	delete(app.observers, observer.ObserverID())
	return nil
}

// NotifyObservers sends a CloudEvent to all registered observers. Each
// observer runs in its own goroutine so a slow observer cannot delay a
// lifecycle phase; panics and errors are logged, never propagated.
func (app *Application) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	app.observerMu.RLock()
	defer app.observerMu.RUnlock()

	// Validate before touching the event: writer methods on an event with
	// no context panic inside the SDK.
	if err := ValidateCloudEvent(event); err != nil {
		app.logger.Error("Invalid CloudEvent", "eventType", event.Type(), "error", err)
		return err
	}

	if event.Time().IsZero() {
		event.SetTime(time.Now())
	}

	var wg sync.WaitGroup
	for _, registration := range app.observers {
		if len(registration.eventTypes) > 0 && !registration.eventTypes[event.Type()] {
			continue
		}

		wg.Add(1)
		go func(registration *observerRegistration) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					app.logger.Error("Observer panicked",
						"observerID", registration.observer.ObserverID(), "event", event.Type(), "panic", r)
				}
			}()

			if err := registration.observer.OnEvent(ctx, event); err != nil {
				app.logger.Error("Observer error",
					"observerID", registration.observer.ObserverID(), "event", event.Type(), "error", err)
			}
		}(registration)
	}
	wg.Wait()

	return nil
}

// GetObservers returns information about currently registered observers.
func (app *Application) GetObservers() []ObserverInfo {
	app.observerMu.RLock()
	defer app.observerMu.RUnlock()

	infos := make([]ObserverInfo, 0, len(app.observers))
	for id, registration := range app.observers {
		eventTypes := make([]string, 0, len(registration.eventTypes))
		for eventType := range registration.eventTypes {
			eventTypes = append(eventTypes, eventType)
		}
		infos = append(infos, ObserverInfo{
			ID:           id,
			EventTypes:   eventTypes,
			RegisteredAt: registration.registeredAt,
		})
	}
	return infos
}

// emitEvent builds and publishes a framework CloudEvent. Emission never
// fails the lifecycle; notification errors are logged.
func (app *Application) emitEvent(ctx context.Context, eventType string, data any, metadata map[string]any) {
	event := NewCloudEvent(eventType, "application", data, metadata)
	if err := app.NotifyObservers(ctx, event); err != nil {
		app.logger.Error("Failed to notify observers", "event", eventType, "error", err)
	}
}
