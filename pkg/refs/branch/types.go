package branch

// Info describes one line of `git branch --list -v [-r]`.
type Info struct {
	// Name is the branch name without the remote prefix
	// (e.g. "main", "feature/new-feature")
	Name string `json:"name"`

	// Remote is the remote the branch belongs to ("origin"); empty for
	// local branches
	Remote string `json:"remote,omitempty"`

	// Commit is the abbreviated hash the branch points to
	Commit string `json:"commit,omitempty"`

	// Subject is the first line of the tip commit's message
	Subject string `json:"subject,omitempty"`

	// Current indicates the checked out branch
	Current bool `json:"current,omitempty"`

	// Worktree indicates the branch is checked out in another linked
	// worktree
	Worktree bool `json:"worktree,omitempty"`
}

// FullName returns "remote/name" for remote branches and the name otherwise.
func (i Info) FullName() string {
	if i.Remote == "" {
		return i.Name
	}
	return i.Remote + "/" + i.Name
}

// IsRemote reports whether the branch came from a remote listing.
func (i Info) IsRemote() bool {
	return i.Remote != ""
}

// CreateConfig holds configuration for branch creation
type CreateConfig struct {
	// StartPoint is the commit SHA or branch name to start from
	// If empty, uses HEAD
	StartPoint string

	// Checkout switches to the new branch after creation
	Checkout bool

	// Force overwrites the branch if it already exists
	Force bool
}

// CreateOption is a functional option for configuring branch creation
type CreateOption func(*CreateConfig)

// WithStartPoint sets the starting point for the new branch
func WithStartPoint(ref string) CreateOption {
	return func(c *CreateConfig) {
		c.StartPoint = ref
	}
}

// WithCheckout makes the operation checkout the new branch after creation
func WithCheckout() CreateOption {
	return func(c *CreateConfig) {
		c.Checkout = true
	}
}

// WithForceCreate forces creation even if the branch exists
func WithForceCreate() CreateOption {
	return func(c *CreateConfig) {
		c.Force = true
	}
}

// DeleteConfig holds configuration for branch deletion
type DeleteConfig struct {
	// Force deletes the branch even when it is not merged
	Force bool
}

// DeleteOption is a functional option for configuring branch deletion
type DeleteOption func(*DeleteConfig)

// WithForceDelete deletes unmerged branches too
func WithForceDelete() DeleteOption {
	return func(c *DeleteConfig) {
		c.Force = true
	}
}
