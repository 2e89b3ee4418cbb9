package ranging

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/catminator/catminator"
)

var (
	// ErrBusy is returned when a measurement is already in flight
	ErrBusy = errors.New("measurement already in flight")
	// ErrUnsolicited is returned when replying to a request that was never received
	ErrUnsolicited = errors.New("reply without a matching request")
)

// Request is one "measure now" message
type Request struct {
	Seq uint32
}

// Response carries the sample for the request with the same Seq
type Response struct {
	Seq    uint32
	Sample catminator.Sample
}

// Measurer takes one blocking measurement
type Measurer interface {
	Measure() catminator.Sample
}

// Channel connects the control loop to the ranging worker. Both directions hold at most one
// message and a new request is refused until the previous response was collected.
//
// Request, Await, Measure and Busy belong to the control side and must be called from one
// goroutine. Next, Reply and Serve belong to the worker.
type Channel struct {
	requests  chan Request
	responses chan Response

	inflight atomic.Bool
	seq      uint32

	// worker side
	received bool
	current  Request
}

func NewChannel() *Channel {
	return &Channel{
		requests:  make(chan Request, 1),
		responses: make(chan Response, 1),
	}
}

// Request enqueues a measurement request without waiting for the result
func (c *Channel) Request() error {
	if !c.inflight.CompareAndSwap(false, true) {
		return ErrBusy
	}
	c.seq++
	c.requests <- Request{Seq: c.seq}
	return nil
}

// Await blocks until the response to the outstanding request arrives. If ctx is done first the
// request stays in flight and its response is collected later by Busy.
func (c *Channel) Await(ctx context.Context) (catminator.Sample, error) {
	if !c.inflight.Load() {
		return catminator.NoEcho, ErrUnsolicited
	}

	select {
	case <-ctx.Done():
		return catminator.NoEcho, ctx.Err()
	case resp := <-c.responses:
		c.inflight.Store(false)
		if resp.Seq != c.seq {
			return catminator.NoEcho, ErrUnsolicited
		}
		return resp.Sample, nil
	}
}

// Measure requests a measurement and waits for it
func (c *Channel) Measure(ctx context.Context) (catminator.Sample, error) {
	err := c.Request()
	if err != nil {
		return catminator.NoEcho, err
	}
	return c.Await(ctx)
}

// Busy reports whether a request is still unanswered. A response that arrived after its Await
// gave up is discarded here, which frees the channel.
func (c *Channel) Busy() bool {
	if !c.inflight.Load() {
		return false
	}
	select {
	case <-c.responses:
		c.inflight.Store(false)
		return false
	default:
		return true
	}
}

// Next blocks until the control side requests a measurement
func (c *Channel) Next(ctx context.Context) (Request, error) {
	select {
	case <-ctx.Done():
		return Request{}, ctx.Err()
	case req := <-c.requests:
		c.received = true
		c.current = req
		return req, nil
	}
}

// Reply answers the request most recently returned by Next
func (c *Channel) Reply(req Request, s catminator.Sample) error {
	if !c.received || req != c.current {
		return ErrUnsolicited
	}
	c.received = false

	select {
	case c.responses <- Response{Seq: req.Seq, Sample: s}:
		return nil
	default:
		return ErrUnsolicited
	}
}

// Serve answers requests with m until ctx is done
func (c *Channel) Serve(ctx context.Context, m Measurer) error {
	for {
		req, err := c.Next(ctx)
		if err != nil {
			return err
		}

		err = c.Reply(req, m.Measure())
		if err != nil {
			return err
		}
	}
}
