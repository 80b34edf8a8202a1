// Package errors provides structured, coded errors for livetree.
//
// Every failure the runtime reports to a caller or a log carries a code
// (e.g. "LT001") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Error Categories
//
//   - reactive: propagation failures (cycles, self reads, disposed observers)
//   - reconcile: tree reconciliation failures (incompatible roots, unresolved nodes)
//   - config: livetree.json loading and validation
//   - descriptor: descriptor document decoding
//
// # Usage
//
//	err := errors.New("LT001").
//	    WithDetail("flush exceeded 100 rounds").
//	    WithSuggestion("Check observers that write to cells they read")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR LT001: Cycle detected during propagation
//	//
//	//   flush exceeded 100 rounds
//	//
//	//   Hint: Check observers that write to cells they read
package errors
