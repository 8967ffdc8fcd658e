package game

import "context"

// Fanout copies every snapshot from src to n subscribers. Each subscriber
// has its own unbounded queue, so a slow one never delays the others.
// Subscriber channels close after src closes and they have drained, or
// when ctx is done.
func Fanout(ctx context.Context, src <-chan State, n int) []<-chan State {
	boxes := make([]*outbox[State], n)
	outs := make([]<-chan State, n)
	for i := range boxes {
		boxes[i] = newOutbox[State]()
		outs[i] = boxes[i].out
		go func() { _ = boxes[i].run(ctx) }()
	}

	go func() {
		defer func() {
			for _, b := range boxes {
				b.close()
			}
		}()
		for {
			select {
			case st, ok := <-src:
				if !ok {
					return
				}
				for _, b := range boxes {
					b.push(st)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return outs
}
