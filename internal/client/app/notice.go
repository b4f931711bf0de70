package app

// Variant is the severity of a notice.
type Variant string

const (
	// VariantDefault marks informational notices.
	VariantDefault Variant = "default"
	// VariantDestructive marks failures.
	VariantDestructive Variant = "destructive"
)

// Notice is a user-facing message produced by an App operation.
type Notice struct {
	Title       string
	Description string
	Variant     Variant
}

// Notifier receives notices. Implementations must not call back into the App.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}
