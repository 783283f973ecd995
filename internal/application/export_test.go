package application

// SetDummyCompare swaps the unknown-email comparison and returns a restore func.
func SetDummyCompare(f func(plain string) bool) func() {
	old := dummyCompare
	dummyCompare = f
	return func() { dummyCompare = old }
}
