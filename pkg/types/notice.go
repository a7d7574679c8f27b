package types

// NoticeLevel grades a Notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a user-facing status message published by the state container,
// e.g. "folder not found" or the result of a rewrite.
type Notice struct {
	Level   NoticeLevel
	Message string
	Path    string
	Err     error
}

// IsZero reports whether no notice is set.
func (n Notice) IsZero() bool {
	return n.Message == "" && n.Err == nil
}

func (n Notice) String() string {
	msg := n.Message
	if n.Path != "" {
		msg += ": " + n.Path
	}
	if n.Err != nil {
		msg += " (" + n.Err.Error() + ")"
	}
	return msg
}
