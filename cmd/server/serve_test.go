package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ServeSuite struct {
	suite.Suite
	log *slog.Logger
}

func TestServeSuite(t *testing.T) {
	suite.Run(t, new(ServeSuite))
}

func (s *ServeSuite) SetupTest() {
	s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeServer blocks in ListenAndServe until Shutdown, and lets the test run
// work that an in-flight request would do while the server drains.
type fakeServer struct {
	closed     chan struct{}
	listenErr  error
	onShutdown func()
	once       sync.Once
}

func newFakeServer() *fakeServer {
	return &fakeServer{closed: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.closed
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(context.Context) error {
	if f.onShutdown != nil {
		f.onShutdown()
	}
	f.once.Do(func() { close(f.closed) })
	return nil
}

// recordingWorker delivers events until its context ends, then drains.
type recordingWorker struct {
	inbox     chan string
	mu        sync.Mutex
	delivered []string
}

func (w *recordingWorker) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case e := <-w.inbox:
					w.record(e)
				default:
					return nil
				}
			}
		case e := <-w.inbox:
			w.record(e)
		}
	}
}

func (w *recordingWorker) record(e string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.delivered = append(w.delivered, e)
}

func (s *ServeSuite) TestWorkerOutlivesServerShutdown() {
	ctx, cancel := context.WithCancel(context.Background())
	srv := newFakeServer()
	w := &recordingWorker{inbox: make(chan string, 4)}

	var workerCtxAliveDuringShutdown bool
	workerCtx := make(chan context.Context, 1)
	srv.onShutdown = func() {
		wctx := <-workerCtx
		workerCtx <- wctx
		// a request finishing while the server drains
		time.Sleep(10 * time.Millisecond)
		w.inbox <- "invoice.created"
		workerCtxAliveDuringShutdown = wctx.Err() == nil
	}
	runWorker := func(ctx context.Context) error {
		workerCtx <- ctx
		return w.run(ctx)
	}

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, runWorker, time.Second, s.log) }()
	cancel()

	select {
	case err := <-done:
		s.Require().NoError(err)
	case <-time.After(5 * time.Second):
		s.FailNow("serve did not return")
	}
	s.True(workerCtxAliveDuringShutdown, "worker must keep running until shutdown returns")
	s.Equal([]string{"invoice.created"}, w.delivered)
}

func (s *ServeSuite) TestServerFailureStopsWorker() {
	srv := newFakeServer()
	srv.listenErr = errors.New("bind: address in use")
	w := &recordingWorker{inbox: make(chan string, 1)}

	err := serve(context.Background(), srv, w.run, time.Second, s.log)
	s.Require().Error(err)
	s.ErrorIs(err, srv.listenErr)
}

func (s *ServeSuite) TestRunsWithoutWorker() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.NoError(serve(ctx, newFakeServer(), nil, time.Second, s.log))
}
