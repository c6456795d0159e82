// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"projectmd/internal/backend"
)

// CreateCall records the arguments of one Create invocation.
type CreateCall struct {
	Title  string
	Body   string
	Labels []string
}

// UpdateCall records the arguments of one Update invocation.
type UpdateCall struct {
	Number int
	Title  string
	Body   string
	Labels []string
}

// FakeBackend is an in-memory implementation of backend.Backend for
// testing. Issue numbers are assigned sequentially starting at 1 (or
// after the highest seeded number).
type FakeBackend struct {
	mu     sync.Mutex
	next   int
	issues map[int]backend.Issue

	// Calls made, in order.
	CreateCalls []CreateCall
	UpdateCalls []UpdateCall

	// Error injection.
	CreateErr error
	UpdateErr error
	GetErr    error
	ListErr   error
}

// NewFakeBackend creates an empty fake backend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		next:   1,
		issues: make(map[int]backend.Issue),
	}
}

// AddIssue seeds an existing open issue.
func (f *FakeBackend) AddIssue(number int, title, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issues[number] = backend.Issue{
		ID:     int64(number),
		Number: number,
		Title:  title,
		Body:   body,
		State:  backend.StateOpen,
	}
	if number >= f.next {
		f.next = number + 1
	}
}

// Issue returns a seeded or created issue by number.
func (f *FakeBackend) Issue(number int) (backend.Issue, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	issue, ok := f.issues[number]
	return issue, ok
}

// Create implements backend.Backend.
func (f *FakeBackend) Create(ctx context.Context, title, body string, labels []string) (backend.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.CreateCalls = append(f.CreateCalls, CreateCall{Title: title, Body: body, Labels: labels})
	if f.CreateErr != nil {
		return backend.Issue{}, f.CreateErr
	}

	number := f.next
	f.next++
	issue := backend.Issue{
		ID:     int64(number),
		Number: number,
		Title:  title,
		Body:   body,
		State:  backend.StateOpen,
	}
	f.issues[number] = issue
	return issue, nil
}

// Update implements backend.Backend.
func (f *FakeBackend) Update(ctx context.Context, number int, title, body string, labels []string) (backend.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.UpdateCalls = append(f.UpdateCalls, UpdateCall{Number: number, Title: title, Body: body, Labels: labels})
	if f.UpdateErr != nil {
		return backend.Issue{}, f.UpdateErr
	}

	issue, ok := f.issues[number]
	if !ok {
		return backend.Issue{}, fmt.Errorf("issue #%d not found", number)
	}
	issue.Title = title
	issue.Body = body
	f.issues[number] = issue
	return issue, nil
}

// Get implements backend.Backend.
func (f *FakeBackend) Get(ctx context.Context, number int) (backend.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.GetErr != nil {
		return backend.Issue{}, f.GetErr
	}
	issue, ok := f.issues[number]
	if !ok {
		return backend.Issue{}, fmt.Errorf("issue #%d not found", number)
	}
	return issue, nil
}

// List implements backend.Backend, returning issues ordered by number.
func (f *FakeBackend) List(ctx context.Context) ([]backend.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ListErr != nil {
		return nil, f.ListErr
	}

	numbers := make([]int, 0, len(f.issues))
	for n := range f.issues {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	result := make([]backend.Issue, 0, len(numbers))
	for _, n := range numbers {
		result = append(result, f.issues[n])
	}
	return result, nil
}
