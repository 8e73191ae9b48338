package board

import "errors"

// ErrInvalidAction is returned when a caller supplies an action that is not
// in the legal set for the current state. Internal search code must never
// produce one; this is strictly a boundary error.
var ErrInvalidAction = errors.New("board: invalid action for current state")

// ErrDecodeRange is returned when an ActionId or NaturalActionId falls
// outside its defined ranges, or when an Action's fields don't address a
// real catalog entry.
var ErrDecodeRange = errors.New("board: action id out of range")

// ErrWrongTurnType is returned when an action's required turn type doesn't
// match the state's current turn type.
var ErrWrongTurnType = errors.New("board: action not legal for current turn type")
