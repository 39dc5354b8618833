package notifier

import (
	"fmt"
	"sync"
)

// Factory is a constructor function that creates a new Notifier instance.
type Factory func(config map[string]string) (Notifier, error)

var (
	mu        sync.RWMutex
	factories = make(map[Channel]Factory)
)

// Register makes a notifier factory available for a channel.
// It is typically called from an init() function in the adapter package.
func Register(ch Channel, factory Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[ch]; exists {
		panic(fmt.Sprintf("notifier: duplicate registration for %q", ch))
	}
	factories[ch] = factory
}

// New creates a new Notifier for the channel using the registered factory.
func New(ch Channel, config map[string]string) (Notifier, error) {
	mu.RLock()
	factory, ok := factories[ch]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("notifier: unknown channel %q", ch)
	}
	return factory(config)
}

// Available returns the channels with a registered factory.
func Available() []Channel {
	mu.RLock()
	defer mu.RUnlock()

	channels := make([]Channel, 0, len(factories))
	for ch := range factories {
		channels = append(channels, ch)
	}
	return channels
}
