package moveengine

import "errors"

// Exported variables.
var (
	// ErrDeleteAfterCopy marks a source file that was copied but could not be removed.
	// The file still counts as moved.
	ErrDeleteAfterCopy = errors.New("source delete failed after copy")
	// ErrEntry marks a failure confined to one file or subdirectory. The walk continues.
	ErrEntry = errors.New("entry failed")
	// ErrEnumeration marks a directory that could not be listed. It aborts the run.
	ErrEnumeration = errors.New("directory listing failed")
	// ErrInvalidTransition is returned by StatusMachine for a transition it does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrPrecondition means the source or destination has not been selected.
	ErrPrecondition = errors.New("source and destination folders must both be selected")
	// ErrSelectionCancelled is returned by a FolderResolver when the user backs out.
	ErrSelectionCancelled = errors.New("folder selection cancelled")
	// ErrUnsupportedEnvironment is returned by a FolderResolver that cannot serve a location.
	ErrUnsupportedEnvironment = errors.New("folder selection not supported here")
)
