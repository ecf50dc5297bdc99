package events

import "github.com/kelindar/event"

// SubscribeToChannel forwards events of type T into ch for select-based
// consumers such as SSE handlers. Events are dropped while ch is full.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	if bus == nil {
		return func() {}
	}
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}

// SubscribeBridgeEvents forwards every bridge lifecycle event into ch.
func SubscribeBridgeEvents(bus *Bus, ch chan<- any) func() {
	unsubs := []func(){
		SubscribeToChannel[LEDAddedEvent](bus, ch),
		SubscribeToChannel[LEDRemovedEvent](bus, ch),
		SubscribeToChannel[LEDMissingEvent](bus, ch),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
