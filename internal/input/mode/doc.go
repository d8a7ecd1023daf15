// Package mode defines the editing modes of the key state machine.
//
// A Mode is a small closed enum:
//   - Normal: navigation, operators and motions
//   - Insert / Replace: text entry
//   - Visual, VisualLine, VisualBlock: selections
//   - Select: selection that is replaced by typed text
//   - OperatorPending: an operator was typed and awaits its motion
//   - Unknown: the zero value, never entered deliberately
//
// Mapping commands address sets of modes by letter (n, v, x, s, o, i);
// ForMapCommand translates a ":map" family prefix into that set.
//
// The Manager tracks the current and previous mode of a single view and
// notifies listeners on every transition. It is not safe for concurrent use;
// each view owns exactly one.
package mode
