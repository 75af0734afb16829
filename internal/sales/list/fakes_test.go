package list

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/crudio/crudio/internal/sales/customers"
)

type listCall struct {
	Page   int
	Search string
}

type fakeAPI struct {
	mu        sync.Mutex
	calls     []listCall
	deletes   []int64
	pages     int
	listErr   error
	deleteErr error
	// hook runs inside ListCustomers before it returns.
	hook func(call listCall)
}

func (f *fakeAPI) ListCustomers(ctx context.Context, page int, search string) (*customers.ListPage, error) {
	f.mu.Lock()
	call := listCall{Page: page, Search: search}
	f.calls = append(f.calls, call)
	hook, err, pages := f.hook, f.listErr, f.pages
	f.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	if err != nil {
		return nil, err
	}
	if pages == 0 {
		pages = 3
	}
	return &customers.ListPage{
		Results:    []customers.Customer{{CustomerID: int64(page*10 + len(search)), FirstName: search}},
		Pagination: customers.Pagination{TotalPages: pages, CurrentPage: page},
	}, nil
}

func (f *fakeAPI) DeleteCustomer(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return f.deleteErr
}

func (f *fakeAPI) Calls() []listCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]listCall(nil), f.calls...)
}

type fakeProducts struct {
	calls int
	err   error
}

func (f *fakeProducts) Products(ctx context.Context) ([]customers.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []customers.Product{{ProductID: 1, Name: "Pen", Price: 2}}, nil
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

// Fire runs the callback the way the runtime would, even after Stop lost a race.
func (t *fakeTimer) Fire() { t.f() }

type fakeClock struct {
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Last() *fakeTimer {
	if len(c.timers) == 0 {
		return nil
	}
	return c.timers[len(c.timers)-1]
}

type staleCounter struct{ n int }

func (s *staleCounter) StaleResponse() { s.n++ }

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
