package main

// check panics on errors that cannot happen unless internal state is
// corrupt, like a store key failing to parse back into a coordinate.
func check(e error) {
	if e != nil {
		panic(e)
	}
}
