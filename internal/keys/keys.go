// Package keys maps raw key identities to the event kinds the counters understand.
package keys

// Key is a platform-neutral physical key identity.
type Key int

// Known keys. Only the character, whitespace and editing keys matter for
// counting; everything else collapses to a handful of named keys or KeyUnknown.
const (
	KeyUnknown Key = iota

	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9

	KeyComma
	KeyDot
	KeySlash
	KeySemicolon
	KeyQuote
	KeyLeftBracket
	KeyRightBracket
	KeyBackslash
	KeyMinus
	KeyEqual
	KeyBackquote

	KeySpace
	KeyTab
	KeyEnter
	KeyKeypadEnter
	KeyBackspace

	KeyEscape
	KeyDelete
	KeyShift
	KeyControl
	KeyAlt
	KeyMeta
	KeyCapsLock
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

// Kind is the classification of a key press.
type Kind int

// Event kinds.
const (
	Other Kind = iota
	Character
	Space
	Tab
	Enter
	Backspace
)

var kindNames = [...]string{
	Other:     "other",
	Character: "character",
	Space:     "space",
	Tab:       "tab",
	Enter:     "enter",
	Backspace: "backspace",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "other"
	}
	return kindNames[k]
}

// IsWordBoundary reports whether the kind terminates a word.
func (k Kind) IsWordBoundary() bool {
	return k == Space || k == Tab || k == Enter
}

// CountsAsChar reports whether the kind adds to the character count.
func (k Kind) CountsAsChar() bool {
	return k == Character || k.IsWordBoundary()
}

// Classify maps a key to its kind. It is total: unmapped keys are Other.
func Classify(k Key) Kind {
	switch {
	case k >= KeyA && k <= KeyBackquote:
		return Character
	case k == KeySpace:
		return Space
	case k == KeyTab:
		return Tab
	case k == KeyEnter, k == KeyKeypadEnter:
		return Enter
	case k == KeyBackspace:
		return Backspace
	default:
		return Other
	}
}
