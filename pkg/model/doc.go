/*
Package model provides the persistent levels of the component type hierarchy.

Every level composes its ancestor's chain before its own:

	Base (devs) -> Atomic (atomic) -> user models
	Base (devs) -> Atomic (atomic) -> Wrapper (wrapper)

Base carries no fields but still writes its level, so derived levels compose the
same way no matter how deep the hierarchy goes. User models embed Atomic and
extend the chain:

	func (c *Counter) MarshalChain(w *schema.Writer) error {
		if err := c.Atomic.MarshalChain(w); err != nil {
			return err
		}
		w.Level("counter", counterFields{Count: c.Count})
		return nil
	}
*/
package model
