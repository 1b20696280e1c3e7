package session

// maxMessageID bounds the message id value on the wire. The generator
// wraps back to 0 once its counter exceeds this bound.
const maxMessageID = 1 << 30

// idGenerator produces the sequential, wrapping stream of message ids:
// 0, 1, …, maxMessageID, 0, 1, …
//
// Ids are unique among outstanding calls as long as fewer than
// maxMessageID calls are in flight at once; there is no uniqueness
// guarantee across the wraparound boundary. Not safe for concurrent use,
// the session serializes access to it.
type idGenerator struct {
	counter uint64
}

func newIDGenerator() *idGenerator {
	return &idGenerator{}
}

// Next returns the next message id and advances the generator
func (g *idGenerator) Next() uint64 {
	id := g.counter
	g.counter++
	if g.counter > maxMessageID {
		g.counter = 0
	}
	return id
}
