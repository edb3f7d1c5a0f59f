package server

// Broker fans a publication out to every subscriber. Reload subscribers come
// and go with their websocket, so subscription management runs through the
// broker goroutine instead of a shared map.
type Broker struct {
	stopCh    chan struct{}
	publishCh chan interface{}
	subCh     chan chan interface{}
	unsubCh   chan chan interface{}
}

func newBroker() *Broker {
	return &Broker{
		stopCh:    make(chan struct{}),
		publishCh: make(chan interface{}, 1),
		subCh:     make(chan chan interface{}, 1),
		unsubCh:   make(chan chan interface{}, 1),
	}
}

// Start runs the broker loop until Stop. Call it in its own goroutine.
func (b *Broker) Start() {
	subs := map[chan interface{}]struct{}{}
	for {
		select {
		case <-b.stopCh:
			return
		case ch := <-b.subCh:
			subs[ch] = struct{}{}
		case ch := <-b.unsubCh:
			delete(subs, ch)
		case msg := <-b.publishCh:
			for ch := range subs {
				select {
				case ch <- msg:
				default:
				}
			}
		}
	}
}

func (b *Broker) Stop() {
	close(b.stopCh)
}

func (b *Broker) Subscribe() chan interface{} {
	ch := make(chan interface{}, 1)
	b.subCh <- ch
	return ch
}

func (b *Broker) Unsubscribe(ch chan interface{}) {
	b.unsubCh <- ch
}

// Publish never blocks; with nobody around to reload there is nothing to do.
func (b *Broker) Publish(msg interface{}) {
	select {
	case b.publishCh <- msg:
	default:
	}
}
