package backend

// callFragment is implemented in call_amd64.s: it transfers control to
// the native code at addr and returns once that code's RET instruction
// runs. The fragment takes no arguments and returns nothing in registers;
// all communication with it happens through the guest state fields
// backend/layout.go baked into it as absolute addresses.
func callFragment(addr uintptr)
