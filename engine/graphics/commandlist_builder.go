package graphics

// commitConfig holds the options applied during CommandList.Commit.
type commitConfig struct {
	presentTrigger bool
}

// CommitOption is a functional option used to configure a command list commit.
type CommitOption func(*commitConfig)

// WithPresentTrigger marks the committed list as the one whose completion
// gates presentation of the frame.
//
// Returns:
//   - CommitOption: a function that sets the present trigger flag
func WithPresentTrigger() CommitOption {
	return func(c *commitConfig) {
		c.presentTrigger = true
	}
}
