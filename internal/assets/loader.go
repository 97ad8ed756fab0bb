package assets

// StyleLoader defines the contract for loading page stylesheets.
// Implementations may load from embedded assets, a directory on disk,
// or any other backing store.
type StyleLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	// Returns ErrInvalidStyleName if the name contains invalid characters.
	LoadStyle(name string) (string, error)
}
