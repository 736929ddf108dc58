package ratbag

// ActionKind tags which alternative of the Button.Action tagged union
// is populated.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionButton
	ActionSpecial
	ActionKey
	ActionMacro
)

func (k ActionKind) capability() ButtonActionCapability {
	switch k {
	case ActionNone:
		return ButtonActionCapNone
	case ActionButton:
		return ButtonActionCapButton
	case ActionSpecial:
		return ButtonActionCapSpecial
	case ActionKey:
		return ButtonActionCapKey
	case ActionMacro:
		return ButtonActionCapMacro
	default:
		return 0
	}
}

// Action is the tagged union a Button's behavior is assigned from.
// The Macro field is preserved across assignments to ActionNone,
// ActionButton and ActionSpecial: a client that temporarily assigns a
// numeric-button action and later reverts to macro does not lose the
// macro it had built. An ActionKey assignment is different: it stores
// the key's encoded macro in the same field, replacing the previous
// macro.
type Action struct {
	Kind ActionKind

	ButtonNumber int // valid when Kind == ActionButton
	Special      int // valid when Kind == ActionSpecial; vendor-defined special-function id
	KeyCode      int // valid when Kind == ActionKey

	Macro *Macro // nil until a key or macro action is assigned; holds the encoded key when Kind == ActionKey
}

// Button is one physical or logical button slot within a Profile.
type Button struct {
	profile *Profile

	Index        int
	Action       Action
	Capabilities ButtonActionCapability

	IsDirty bool
}

// Profile returns the Button's owning Profile.
func (b *Button) Profile() *Profile { return b.profile }

func (b *Button) markDirty() {
	b.IsDirty = true
	b.profile.markDirty()
}

func (b *Button) ensureMacro() *Macro {
	if b.Action.Macro == nil {
		b.Action.Macro = &Macro{}
	}
	return b.Action.Macro
}

func (b *Button) checkCapability(kind ActionKind) error {
	if b.Capabilities&kind.capability() == 0 {
		return ErrCapability("button action kind")
	}
	return nil
}

// SetActionNone clears the button to do nothing on press.
func (b *Button) SetActionNone() error {
	if err := b.checkCapability(ActionNone); err != nil {
		return err
	}
	if b.Action.Kind == ActionNone {
		return nil
	}
	b.Action.Kind = ActionNone
	b.markDirty()
	return nil
}

// SetActionButton assigns a numeric mouse-button action.
func (b *Button) SetActionButton(buttonNumber int) error {
	if err := b.checkCapability(ActionButton); err != nil {
		return err
	}
	if b.Action.Kind == ActionButton && b.Action.ButtonNumber == buttonNumber {
		return nil
	}
	b.Action.Kind = ActionButton
	b.Action.ButtonNumber = buttonNumber
	b.markDirty()
	return nil
}

// SetActionSpecial assigns a vendor-defined special function (e.g.
// DPI cycle, profile cycle).
func (b *Button) SetActionSpecial(special int) error {
	if err := b.checkCapability(ActionSpecial); err != nil {
		return err
	}
	if b.Action.Kind == ActionSpecial && b.Action.Special == special {
		return nil
	}
	b.Action.Kind = ActionSpecial
	b.Action.Special = special
	b.markDirty()
	return nil
}

// SetActionKey assigns a single keycode with no modifiers, via the
// macro round-trip encoder so that Action.Macro stays the
// single source of truth the driver writes to hardware.
func (b *Button) SetActionKey(keyCode int) error {
	return b.SetActionKeyWithModifiers(keyCode, 0)
}

// SetActionKeyWithModifiers assigns a key with a held-modifier mask,
// encoding it into the button's macro buffer.
func (b *Button) SetActionKeyWithModifiers(keyCode int, modifiers ModifierMask) error {
	if err := b.checkCapability(ActionKey); err != nil {
		return err
	}
	m := EncodeKeyMacro(keyCode, modifiers)
	if b.Action.Kind == ActionKey && b.Action.KeyCode == keyCode && b.Action.Macro != nil && b.Action.Macro.Equal(m) {
		return nil
	}
	b.Action.Kind = ActionKey
	b.Action.KeyCode = keyCode
	b.Action.Macro = m
	b.markDirty()
	return nil
}

// SetActionMacro assigns a full macro. Events beyond MacroCapacity are
// truncated. Reassigning the same macro is a no-op.
func (b *Button) SetActionMacro(events []MacroEvent) error {
	if err := b.checkCapability(ActionMacro); err != nil {
		return err
	}
	m := NewMacro(events)
	if b.Action.Kind == ActionMacro && b.Action.Macro != nil && b.Action.Macro.Equal(m) {
		return nil
	}
	b.Action.Kind = ActionMacro
	b.Action.Macro = m
	b.markDirty()
	return nil
}
