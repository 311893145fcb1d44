package gwt

import (
	"fmt"
	"sync"

	"digital.vasic.gwt/pkg/outcome"
	"digital.vasic.gwt/pkg/prereq"
)

// NoPrerequisites describes a case of a definition without
// Given clauses.
const NoPrerequisites = "(no prerequisites)"

// Case is one concrete combination of Given values together with
// the bound operation, its assertions and, once acted, its
// outcome. Cases share no mutable state with each other.
type Case struct {
	index      int
	prereqs    prereq.Tuple
	when       When
	assertions []*Assertion

	mu      sync.Mutex
	outcome *outcome.Outcome
}

func newCase(
	index int,
	t prereq.Tuple,
	when When,
	factory AssertionFactory,
) (*Case, error) {
	c := &Case{
		index:   index,
		prereqs: t,
		when:    when,
	}
	for i, a := range factory(c) {
		if a == nil {
			return nil, fmt.Errorf("assertion %d is nil", i)
		}
		if a.owner != c {
			return nil, fmt.Errorf(
				"assertion %q is bound to another case",
				a.Description(),
			)
		}
		c.assertions = append(c.assertions, a)
	}
	return c, nil
}

// Index returns the position of the case in the arrangement.
func (c *Case) Index() int { return c.index }

// Prerequisites returns the case's Given values.
func (c *Case) Prerequisites() prereq.Tuple { return c.prereqs }

// Assertions returns the case's assertions in declaration order.
// They are available before Act.
func (c *Case) Assertions() []*Assertion {
	out := make([]*Assertion, len(c.assertions))
	copy(out, c.assertions)
	return out
}

// Describe returns the string form of the prerequisites.
func (c *Case) Describe() string {
	if len(c.prereqs) == 0 {
		return NoPrerequisites
	}
	return c.prereqs.String()
}

// Act invokes the When operation exactly once and records its
// outcome. The operation's own error is never returned; it is
// captured in the outcome. A second call returns a *UsageError.
func (c *Case) Act() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.outcome != nil {
		return usage("act", ErrAlreadyActed)
	}
	o := c.when.invoke(c.prereqs)
	c.outcome = &o
	return nil
}

// Acted reports whether Act has run.
func (c *Case) Acted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outcome != nil
}

// Outcome returns the recorded outcome. The second result is
// false until Act has run.
func (c *Case) Outcome() (outcome.Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcome == nil {
		return outcome.Outcome{}, false
	}
	return *c.outcome, true
}
