package input

// Command is the logical action a device event maps to
type Command int

const (
	CommandNone Command = iota
	CommandForward
	CommandBackward
)

func (c Command) String() string {
	switch c {
	case CommandForward:
		return "forward"
	case CommandBackward:
		return "backward"
	default:
		return "none"
	}
}

// Binding maps key or button codes to commands. Modifier 0 means none.
type Binding struct {
	Forward  uint16
	Backward uint16
	Modifier uint16
}

// Translator turns a device's event stream into commands. It tracks whether
// the modifier is held, so one Translator serves one device.
type Translator struct {
	binding      Binding
	modifierHeld bool
}

// NewTranslator creates a translator for binding
func NewTranslator(binding Binding) *Translator {
	return &Translator{binding: binding}
}

// Translate returns the command for ev, or CommandNone. Only the
// released-to-pressed transition triggers; autorepeat and release do not.
//
// Modifier+backward is tested before forward so that a binding with equal
// forward and backward codes (Tab / Shift+Tab style) still goes backward.
func (t *Translator) Translate(ev Event) Command {
	if ev.Type != EvKey {
		return CommandNone
	}

	if t.binding.Modifier != 0 && ev.Code == t.binding.Modifier {
		t.modifierHeld = ev.Value != valueRelease
		return CommandNone
	}

	if ev.Value != valuePress {
		return CommandNone
	}

	switch {
	case ev.Code == t.binding.Backward && t.modifierHeld:
		return CommandBackward
	case ev.Code == t.binding.Forward:
		return CommandForward
	case ev.Code == t.binding.Backward:
		return CommandBackward
	}
	return CommandNone
}
