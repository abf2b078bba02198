package keys

// macKeycodes maps macOS virtual keycodes (kVK_*) to keys.
var macKeycodes = map[int]Key{
	0:  KeyA,
	1:  KeyS,
	2:  KeyD,
	3:  KeyF,
	4:  KeyH,
	5:  KeyG,
	6:  KeyZ,
	7:  KeyX,
	8:  KeyC,
	9:  KeyV,
	11: KeyB,
	12: KeyQ,
	13: KeyW,
	14: KeyE,
	15: KeyR,
	16: KeyY,
	17: KeyT,
	18: Key1,
	19: Key2,
	20: Key3,
	21: Key4,
	22: Key6,
	23: Key5,
	24: KeyEqual,
	25: Key9,
	26: Key7,
	27: KeyMinus,
	28: Key8,
	29: Key0,
	30: KeyRightBracket,
	31: KeyO,
	32: KeyU,
	33: KeyLeftBracket,
	34: KeyI,
	35: KeyP,
	36: KeyEnter,
	37: KeyL,
	38: KeyJ,
	39: KeyQuote,
	40: KeyK,
	41: KeySemicolon,
	42: KeyBackslash,
	43: KeyComma,
	44: KeySlash,
	45: KeyN,
	46: KeyM,
	47: KeyDot,
	48: KeyTab,
	49: KeySpace,
	50: KeyBackquote,
	51: KeyBackspace,
	53: KeyEscape,
	54: KeyMeta,
	55: KeyMeta,
	56: KeyShift,
	57: KeyCapsLock,
	58: KeyAlt,
	59: KeyControl,
	60: KeyShift,
	61: KeyAlt,
	62: KeyControl,
	76: KeyKeypadEnter,

	115: KeyHome,
	116: KeyPageUp,
	117: KeyDelete,
	119: KeyEnd,
	121: KeyPageDown,
	123: KeyLeft,
	124: KeyRight,
	125: KeyDown,
	126: KeyUp,
}

// evdevCodes maps Linux input event codes (KEY_*) to keys.
var evdevCodes = map[uint16]Key{
	1:  KeyEscape,
	2:  Key1,
	3:  Key2,
	4:  Key3,
	5:  Key4,
	6:  Key5,
	7:  Key6,
	8:  Key7,
	9:  Key8,
	10: Key9,
	11: Key0,
	12: KeyMinus,
	13: KeyEqual,
	14: KeyBackspace,
	15: KeyTab,
	16: KeyQ,
	17: KeyW,
	18: KeyE,
	19: KeyR,
	20: KeyT,
	21: KeyY,
	22: KeyU,
	23: KeyI,
	24: KeyO,
	25: KeyP,
	26: KeyLeftBracket,
	27: KeyRightBracket,
	28: KeyEnter,
	29: KeyControl,
	30: KeyA,
	31: KeyS,
	32: KeyD,
	33: KeyF,
	34: KeyG,
	35: KeyH,
	36: KeyJ,
	37: KeyK,
	38: KeyL,
	39: KeySemicolon,
	40: KeyQuote,
	41: KeyBackquote,
	42: KeyShift,
	43: KeyBackslash,
	44: KeyZ,
	45: KeyX,
	46: KeyC,
	47: KeyV,
	48: KeyB,
	49: KeyN,
	50: KeyM,
	51: KeyComma,
	52: KeyDot,
	53: KeySlash,
	54: KeyShift,
	56: KeyAlt,
	57: KeySpace,
	58: KeyCapsLock,
	96: KeyKeypadEnter,
	97: KeyControl,

	100: KeyAlt,
	102: KeyHome,
	103: KeyUp,
	104: KeyPageUp,
	105: KeyLeft,
	106: KeyRight,
	107: KeyEnd,
	108: KeyDown,
	109: KeyPageDown,
	111: KeyDelete,
	125: KeyMeta,
	126: KeyMeta,
}

// FromMacKeycode maps a macOS virtual keycode to a key.
func FromMacKeycode(code int) Key {
	if k, ok := macKeycodes[code]; ok {
		return k
	}
	return KeyUnknown
}

// FromEvdevCode maps a Linux evdev key code to a key.
func FromEvdevCode(code uint16) Key {
	if k, ok := evdevCodes[code]; ok {
		return k
	}
	return KeyUnknown
}
