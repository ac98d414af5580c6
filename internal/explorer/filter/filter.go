// Package filter owns the explorer query state and its reducer.
package filter

import (
	"net/url"
	"strconv"
	"strings"
	"sync"

	"neuranest-explorer/pkg/common"
)

// Field names a dimension of the query state.
type Field string

const (
	FieldCategory Field = "category"
	FieldStage    Field = "stage"
	FieldSearch   Field = "search"
	FieldSort     Field = "sort"
	FieldPage     Field = "page"
	FieldPageSize Field = "page_size"
)

const (
	DefaultSort     = "opportunity_score"
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// State is an immutable snapshot of the current query.
type State struct {
	Category string `json:"category"`
	Stage    string `json:"stage"`
	Search   string `json:"search"`
	Sort     string `json:"sort"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

// Default returns the initial state.
func Default() State {
	return State{
		Category: common.FilterAll,
		Stage:    common.FilterAll,
		Sort:     DefaultSort,
		Page:     1,
		PageSize: DefaultPageSize,
	}
}

// Set returns a new state with field set to value. Every field except page
// resets the page to 1. Unknown fields leave the state untouched.
func (s State) Set(field Field, value string) State {
	switch field {
	case FieldPage:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			n = 1
		}
		return s.SetPage(n)
	case FieldCategory:
		s.Category = orAll(value)
	case FieldStage:
		s.Stage = orAll(value)
	case FieldSearch:
		s.Search = value
	case FieldSort:
		s.Sort = strings.TrimSpace(value)
		if s.Sort == "" {
			s.Sort = DefaultSort
		}
	case FieldPageSize:
		s.PageSize = parsePageSize(value)
	default:
		return s
	}
	s.Page = 1
	return s
}

// SetPage clamps n to at least 1.
func (s State) SetPage(n int) State {
	if n < 1 {
		n = 1
	}
	s.Page = n
	return s
}

// Query maps the state to upstream query parameters, omitting "no filter" sentinels.
func (s State) Query() url.Values {
	q := url.Values{}
	if s.Category != "" && s.Category != common.FilterAll {
		q.Set(string(FieldCategory), s.Category)
	}
	if s.Stage != "" && s.Stage != common.FilterAll {
		q.Set(string(FieldStage), s.Stage)
	}
	if search := strings.TrimSpace(s.Search); search != "" {
		q.Set(string(FieldSearch), search)
	}
	if s.Sort != "" {
		q.Set(string(FieldSort), s.Sort)
	}
	q.Set(string(FieldPage), strconv.Itoa(s.Page))
	q.Set(string(FieldPageSize), strconv.Itoa(s.PageSize))
	return q
}

// Key is a stable identity of the query, used for de-duplication.
func (s State) Key() string {
	return s.Query().Encode()
}

// FromValues applies inbound parameters to the default state.
func FromValues(values url.Values) State {
	return Apply(Default(), values)
}

// Apply sets every field present in values on s. Page is applied last so an
// explicit page survives the reset caused by the other fields.
func Apply(s State, values url.Values) State {
	for _, f := range []Field{FieldCategory, FieldStage, FieldSearch, FieldSort, FieldPageSize} {
		if v, ok := values[string(f)]; ok && len(v) > 0 {
			s = s.Set(f, v[0])
		}
	}
	if v := values.Get(string(FieldPage)); v != "" {
		s = s.Set(FieldPage, v)
	}
	return s
}

func orAll(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return common.FilterAll
	}
	return v
}

func parsePageSize(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return DefaultPageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// Listener is notified with the new state after every change.
type Listener func(State)

// Controller holds the current state for one explorer session.
type Controller struct {
	mu        sync.RWMutex
	state     State
	listeners []Listener
}

// NewController starts from Default().
func NewController() *Controller {
	return &Controller{state: Default()}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// OnChange registers a listener invoked after each transition that changes the state.
func (c *Controller) OnChange(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

func (c *Controller) Set(field Field, value string) State {
	return c.update(func(s State) State { return s.Set(field, value) })
}

func (c *Controller) SetPage(n int) State {
	return c.update(func(s State) State { return s.SetPage(n) })
}

// Apply merges inbound parameters into the current state atomically.
func (c *Controller) Apply(values url.Values) State {
	return c.update(func(s State) State { return Apply(s, values) })
}

// Commit merges inbound parameters like Apply and hands the resulting state to
// issue before the next transition can start, so issue observes states in
// transition order. issue must not call back into the controller.
func (c *Controller) Commit(values url.Values, issue func(State)) State {
	c.mu.Lock()
	prev := c.state
	next := Apply(prev, values)
	c.state = next
	issue(next)
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	if next != prev {
		for _, l := range listeners {
			l(next)
		}
	}
	return next
}

// Replace swaps in a whole state, e.g. one built by FromValues.
func (c *Controller) Replace(next State) State {
	return c.update(func(State) State { return next })
}

func (c *Controller) update(fn func(State) State) State {
	c.mu.Lock()
	prev := c.state
	next := fn(prev)
	c.state = next
	listeners := append([]Listener(nil), c.listeners...)
	c.mu.Unlock()

	if next != prev {
		for _, l := range listeners {
			l(next)
		}
	}
	return next
}
