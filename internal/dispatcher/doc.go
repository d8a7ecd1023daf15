// Package dispatcher is the boundary between the Vim core and the host.
//
// Every evaluated command leaves the core as exactly one Call: a handler
// name such as "operator.delete" and its arguments. An operator that
// takes a motion receives the motion as a nested Call under the "motion"
// argument, so the host runs both as one edit.
//
//	Dispatch(ctx, Call{
//	    Handler: "operator.delete",
//	    Args: map[string]any{
//	        "count":  1,
//	        "motion": Call{Handler: "cursor.wordForward", Args: map[string]any{"count": 2}},
//	    },
//	})
//
// User-visible feedback goes through a Reporter, which never fails.
//
// Router is a ready-made Dispatcher for hosts that register Go handlers:
// exact names are looked up first, then namespace handlers by the prefix
// before the first dot. Pre hooks may cancel a call, post hooks observe
// the outcome, and handler panics are recovered into ErrPanic.
package dispatcher
